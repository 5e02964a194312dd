package viewer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/docview/docview/internal/engine"
)

// Session owns at most one open document handle. Replacing or closing
// the document releases the previous handle exactly once.
type Session struct {
	mu  sync.Mutex
	doc engine.Document
	log *slog.Logger
}

func NewSession(log *slog.Logger) *Session {
	return &Session{log: log}
}

// SetDocument installs a new handle, releasing the previous one if any.
func (s *Session) SetDocument(doc engine.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		if err := s.doc.Close(); err != nil {
			s.log.Warn("previous document release failed", "error", err)
		}
	}
	s.doc = doc
}

func (s *Session) HasDocument() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc != nil
}

// Page fetches one page by its 1-based number. This call does not cache;
// caching is layered on top by the manager.
func (s *Session) Page(n int) (engine.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	total := s.doc.PageCount()
	if n < 1 || n > total {
		return nil, fmt.Errorf("%w: page %d, document has %d pages", ErrOutOfRange, n, total)
	}
	page, err := s.doc.Page(n)
	if err != nil {
		return nil, &EngineError{Page: n, Err: err}
	}
	return page, nil
}

func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0
	}
	return s.doc.PageCount()
}

// Info returns the open document's metadata, or nil when none is open.
func (s *Session) Info() engine.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Metadata()
}

// Close releases the handle. Closing an empty session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return
	}
	if err := s.doc.Close(); err != nil {
		s.log.Warn("document release failed", "error", err)
	}
	s.doc = nil
}
