package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/j0lvera/tripbot/internal/intent"
	"github.com/j0lvera/tripbot/internal/metrics"
	"github.com/j0lvera/tripbot/internal/session"
)

// Reply is what a transport sends back for one message.
type Reply struct {
	SessionID string
	Text      string
	Category  intent.Category

	// Needs is the slot the bot asked for, PendingNone for an answer.
	Needs session.Pending
}

// Service runs messages through the Dispatcher with per-session state. Messages
// of one session are handled one at a time; different sessions run in
// parallel.
type Service struct {
	dispatcher *Dispatcher
	store      session.Store
	locks      *sessionLocks
	logger     zerolog.Logger
}

// NewService creates a Service
func NewService(dispatcher *Dispatcher, store session.Store, logger zerolog.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		store:      store,
		locks:      newSessionLocks(),
		logger:     logger,
	}
}

// Handle answers message for sessionID and persists the state it leaves
// behind. Errors come only from the session store.
func (s *Service) Handle(ctx context.Context, sessionID, message string) (Reply, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	logger := s.logger.With().Str("session_id", sessionID).Logger()

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("unable to load session state")
		return Reply{}, fmt.Errorf("load session: %w", err)
	}

	result, next := s.dispatcher.Handle(ctx, state, message)

	if next.Awaiting() {
		err = s.store.Save(ctx, sessionID, next)
	} else if state.Awaiting() {
		err = s.store.Clear(ctx, sessionID)
	}
	if err != nil {
		logger.Error().Err(err).Msg("unable to save session state")
		return Reply{}, fmt.Errorf("save session: %w", err)
	}

	metrics.ObserveMessage(string(result.Category), result.Kind.String())
	logger.Info().
		Str("category", string(result.Category)).
		Str("result", result.Kind.String()).
		Str("source", result.Source).
		Str("pending", string(next.Pending)).
		Msg("message handled")

	needs := session.PendingNone
	if result.Kind == OutcomeNeedsSlot {
		needs = result.Slot
	}

	return Reply{
		SessionID: sessionID,
		Text:      result.Text,
		Needs:     needs,
		Category:  result.Category,
	}, nil
}

// Reset forgets any pending clarification for sessionID.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("unable to clear session")
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info().Str("session_id", sessionID).Msg("session cleared")
	return nil
}

// sessionLocks hands out one mutex per session id and drops it once nobody
// holds or waits for it.
type sessionLocks struct {
	locks map[string]*sessionLock
	mu    sync.Mutex
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	sl, exists := l.locks[id]
	if !exists {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()

	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}
