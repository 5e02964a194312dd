package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docview/docview/internal/source"
)

func testLocal() *Local {
	fetcher := source.NewFetcher(5*time.Second, 1<<20)
	return NewLocal(fetcher, Options{PageWords: 100})
}

func TestLocalOpenBytes(t *testing.T) {
	doc, err := testLocal().OpenBytes(context.Background(), "notes.txt", []byte("hello world"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()
	if doc.PageCount() != 1 {
		t.Errorf("pageCount = %d, want 1", doc.PageCount())
	}
}

func TestLocalOpenBytesUnsupported(t *testing.T) {
	if _, err := testLocal().OpenBytes(context.Background(), "image.png", nil); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLocalOpenReader(t *testing.T) {
	doc, err := testLocal().OpenReader(context.Background(), "notes.md", strings.NewReader("# Title\n\nBody text.\n"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()
	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.Text(), "Body text.") {
		t.Errorf("page text = %q", page.Text())
	}
}

func TestLocalOpenURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote document body"))
	}))
	defer srv.Close()

	doc, err := testLocal().OpenURL(context.Background(), srv.URL+"/docs/readme.txt")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer doc.Close()

	page, err := doc.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.Text(), "remote document body") {
		t.Errorf("page text = %q", page.Text())
	}
}

func TestLocalOpenURLFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := testLocal().OpenURL(context.Background(), srv.URL+"/missing.txt"); err == nil {
		t.Fatal("expected fetch error")
	}
}
