package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the Gemini API key was never supplied. This is a
	// configuration problem, surfaced immediately without retrying.
	ErrNotConfigured = errors.New("gemini API key is not configured")

	// ErrEmptyCandidates means the endpoint answered but returned zero candidates.
	ErrEmptyCandidates = errors.New("no response from Gemini API")

	// ErrSafetyBlocked means the first candidate was cut off by the provider's
	// safety filters. Retried like any transient failure; retrying an identical
	// prompt rarely changes the safety verdict, so callers may special-case it.
	ErrSafetyBlocked = errors.New("response blocked by safety filters")
)

// TerminalError reports that the completion client exhausted its retry
// budget. It carries the attempt count and the last underlying cause.
type TerminalError struct {
	Attempts int
	Err      error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("failed to get response after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TerminalError) Unwrap() error { return e.Err }
