package session

import (
	"context"
	"fmt"
	"time"
)

// Pending is the kind of answer the bot is waiting for after asking a
// clarifying question.
type Pending string

const (
	PendingNone               Pending = "none"
	PendingLocation           Pending = "location"
	PendingDestination        Pending = "destination"
	PendingCountry            Pending = "country"
	PendingAttractionLocation Pending = "attraction_location"
)

// ParsePending converts a stored value back to a Pending. The empty string is
// treated as PendingNone.
func ParsePending(s string) (Pending, error) {
	switch p := Pending(s); p {
	case "", PendingNone:
		return PendingNone, nil
	case PendingLocation, PendingDestination, PendingCountry, PendingAttractionLocation:
		return p, nil
	default:
		return PendingNone, fmt.Errorf("unknown pending kind %q", s)
	}
}

// State is the conversation state kept between two messages of a session.
// At most one clarification is pending at a time.
type State struct {
	Pending   Pending   `json:"pending"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Idle returns the state of a session with nothing pending.
func Idle() State {
	return State{Pending: PendingNone}
}

// Awaiting reports whether the next message answers a clarifying question.
func (s State) Awaiting() bool {
	return s.Pending != "" && s.Pending != PendingNone
}

// Store persists State per session id. Loading an unknown or expired session
// returns Idle() and no error.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Clear(ctx context.Context, sessionID string) error
}
