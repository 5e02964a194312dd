package viewer

import (
	"errors"
	"testing"
)

func TestSessionPageWithoutDocument(t *testing.T) {
	session := NewSession(testLogger())

	if _, err := session.Page(1); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v, want ErrNoDocument", err)
	}
	if session.HasDocument() {
		t.Error("empty session reports a document")
	}
	if session.TotalPages() != 0 {
		t.Error("empty session reports pages")
	}
	if session.Info() != nil {
		t.Error("empty session reports metadata")
	}
}

func TestSessionPageRange(t *testing.T) {
	session := NewSession(testLogger())
	session.SetDocument(newFakeDocument(10))

	for _, n := range []int{0, -1, 11} {
		if _, err := session.Page(n); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Page(%d): err = %v, want ErrOutOfRange", n, err)
		}
	}
	for _, n := range []int{1, 10} {
		page, err := session.Page(n)
		if err != nil {
			t.Fatalf("Page(%d) failed: %v", n, err)
		}
		if page.Number() != n {
			t.Errorf("Page(%d).Number() = %d", n, page.Number())
		}
	}
}

func TestSessionEngineFailureWrapped(t *testing.T) {
	doc := newFakeDocument(5)
	doc.pageErr[3] = errors.New("corrupt stream")

	session := NewSession(testLogger())
	session.SetDocument(doc)

	_, err := session.Page(3)
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("err = %v, want EngineError", err)
	}
	if engineErr.Page != 3 {
		t.Errorf("engineErr.Page = %d, want 3", engineErr.Page)
	}
}

func TestSessionReplaceReleasesPrevious(t *testing.T) {
	first := newFakeDocument(3)
	second := newFakeDocument(7)

	session := NewSession(testLogger())
	session.SetDocument(first)
	session.SetDocument(second)

	if first.closeCount() != 1 {
		t.Errorf("previous handle closed %d times, want exactly 1", first.closeCount())
	}
	if second.closeCount() != 0 {
		t.Errorf("current handle closed %d times, want 0", second.closeCount())
	}
	if session.TotalPages() != 7 {
		t.Errorf("totalPages = %d, want 7", session.TotalPages())
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	doc := newFakeDocument(3)
	session := NewSession(testLogger())
	session.SetDocument(doc)

	session.Close()
	session.Close()

	if doc.closeCount() != 1 {
		t.Errorf("handle closed %d times, want exactly 1", doc.closeCount())
	}
	if session.HasDocument() {
		t.Error("session still reports a document after close")
	}
}
