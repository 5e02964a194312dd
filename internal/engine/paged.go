package engine

import (
	"fmt"
	"strings"
	"sync"
)

// section is a titled run of text produced by a format adapter before
// pagination.
type section struct {
	title string
	text  string
}

// textPage is the Page implementation shared by every adapter that
// materializes page text eagerly. Release is a no-op: the text is plain
// Go memory.
type textPage struct {
	number int
	text   string
}

func (p *textPage) Number() int  { return p.number }
func (p *textPage) Text() string { return p.text }
func (p *textPage) Close() error { return nil }

// textDocument is the Document implementation for formats without native
// pages: the adapter emits sections, the paginator packs them into pages.
type textDocument struct {
	mu     sync.Mutex
	title  string
	meta   Metadata
	pages  []string
	closed bool
}

func newTextDocument(title string, meta Metadata, pages []string) *textDocument {
	if meta == nil {
		meta = Metadata{}
	}
	if _, ok := meta["title"]; !ok && title != "" {
		meta["title"] = title
	}
	return &textDocument{title: title, meta: meta, pages: pages}
}

func (d *textDocument) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pages)
}

func (d *textDocument) Metadata() Metadata {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.meta
}

func (d *textDocument) Page(n int) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("document is closed")
	}
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range [1, %d]", n, len(d.pages))
	}
	return &textPage{number: n, text: d.pages[n-1]}, nil
}

func (d *textDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.pages = nil
	return nil
}

// paginate packs sections into pages of roughly pageWords words each. A
// section never shares a page with the tail of an oversized predecessor:
// sections longer than the budget are split on word boundaries, shorter
// ones are packed together until the budget is spent. Always returns at
// least one page so an empty document still renders.
func paginate(sections []section, pageWords int) []string {
	var pages []string
	var current strings.Builder
	currentWords := 0

	flush := func() {
		if current.Len() > 0 {
			pages = append(pages, current.String())
			current.Reset()
			currentWords = 0
		}
	}

	appendBlock := func(block string, words int) {
		if currentWords > 0 && currentWords+words > pageWords {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(block)
		currentWords += words
	}

	for _, sec := range sections {
		text := strings.TrimSpace(sec.text)
		block := text
		if sec.title != "" {
			if block == "" {
				block = sec.title
			} else {
				block = sec.title + "\n\n" + block
			}
		}
		if block == "" {
			continue
		}

		words := strings.Fields(block)
		if len(words) <= pageWords {
			appendBlock(block, len(words))
			continue
		}

		// Oversized section: split on word boundaries.
		flush()
		for start := 0; start < len(words); start += pageWords {
			end := start + pageWords
			if end > len(words) {
				end = len(words)
			}
			pages = append(pages, strings.Join(words[start:end], " "))
		}
	}
	flush()

	if len(pages) == 0 {
		pages = []string{""}
	}
	return pages
}
