package provider

import "fmt"

// TransportError reports a network failure or an unexpected HTTP status.
type TransportError struct {
	Provider string
	Status   int // zero when the request never got a response
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports a well-formed response without the expected data.
type NotFoundError struct {
	Provider string
	Query    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no result for %q", e.Provider, e.Query)
}

// ParseError reports a malformed payload.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
