package model

import "errors"

// Error kinds shared across the crawl, extraction, and summarization layers.
// Callers wrap these with eris and test with errors.Is.
var (
	ErrFetch              = errors.New("fetch failed")
	ErrParse              = errors.New("html parse failed")
	ErrExtraction         = errors.New("extraction failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrTerminal           = errors.New("terminal failure")
	ErrInvalidLinkedInURL = errors.New("invalid linkedin company url")
	ErrNoSources          = errors.New("no website or linkedin profile found")
)

// TerminalError marks a failure that exhausted the single permitted retry,
// or that was never retryable. errors.Is(err, ErrTerminal) reports true and
// the underlying cause stays reachable through Unwrap.
type TerminalError struct {
	Err error
}

// Terminal wraps err as a TerminalError. A nil err stays nil.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

func (e *TerminalError) Error() string {
	return "terminal failure: " + e.Err.Error()
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Is matches ErrTerminal.
func (e *TerminalError) Is(target error) bool {
	return target == ErrTerminal
}
