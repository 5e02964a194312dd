package viewer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocument means a page was requested while no document is open.
	ErrNoDocument = errors.New("no document open")

	// ErrOutOfRange means the requested page number falls outside
	// [1, totalPages] of the open document.
	ErrOutOfRange = errors.New("page out of range")

	// ErrLoadCancelled means an in-flight load was abandoned by Cancel
	// or superseded by a newer open.
	ErrLoadCancelled = errors.New("load cancelled")
)

// ExhaustedError is returned when the loader runs out of retries. It
// carries the last underlying cause; the caller must re-invoke open to
// try again.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("load failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// EngineError is a page fetch that failed inside the rendering engine
// for an in-range page (corrupt page, decode error).
type EngineError struct {
	Page int
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failed on page %d: %v", e.Page, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
