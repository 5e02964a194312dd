package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Metadata is the opaque key/value metadata of an open document (title,
// author, etc.). Passed through to callers unexamined.
type Metadata map[string]string

// Page is a single rendered page. Immutable once produced; Close releases
// any resources the page holds.
type Page interface {
	Number() int
	Text() string
	Close() error
}

// Document is an open document handle. Page numbers are 1-based.
type Document interface {
	PageCount() int
	Metadata() Metadata
	Page(n int) (Page, error)
	Close() error
}

// Engine renders one document format.
type Engine interface {
	Open(name string, data []byte) (Document, error)
}

// Factory opens documents from the three source forms a viewer deals
// with: a remote locator, an in-memory buffer, or a stream.
type Factory interface {
	OpenURL(ctx context.Context, url string) (Document, error)
	OpenBytes(ctx context.Context, name string, data []byte) (Document, error)
	OpenReader(ctx context.Context, name string, r io.Reader) (Document, error)
}

// Options tune the adapters for formats without native pages.
type Options struct {
	// PageWords is the word budget per synthesized page.
	PageWords int
}

func (o Options) pageWords() int {
	if o.PageWords <= 0 {
		return 300
	}
	return o.PageWords
}

// SupportedExtensions lists file extensions this service can render.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForName returns the engine for a filename.
func ForName(filename string, opts Options) (Engine, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextEngine{Options: opts}, nil
	case ".md", ".markdown":
		return &MarkdownEngine{Options: opts}, nil
	case ".csv":
		return &CSVEngine{}, nil
	case ".html", ".htm":
		return &HTMLEngine{Options: opts}, nil
	case ".pdf":
		return &PDFEngine{}, nil
	case ".docx":
		return &DOCXEngine{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
