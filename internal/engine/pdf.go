package engine

import (
	"fmt"
	"os"
	"strings"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFEngine renders PDF files. Pages are native: text is decoded per
// page on demand, which is the latency the page cache exists to hide.
type PDFEngine struct{}

func (e *PDFEngine) Open(name string, data []byte) (Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docview-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &pdfDocument{
		file:    f,
		tmpPath: tmpPath,
		reader:  reader,
		meta:    pdfMetadata(reader, name),
	}
	return doc, nil
}

type pdfDocument struct {
	mu      sync.Mutex
	file    *os.File
	tmpPath string
	reader  *pdflib.Reader
	meta    Metadata
	closed  bool
}

func (d *pdfDocument) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	return d.reader.NumPage()
}

func (d *pdfDocument) Metadata() Metadata { return d.meta }

func (d *pdfDocument) Page(n int) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("document is closed")
	}
	if n < 1 || n > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", n, d.reader.NumPage())
	}

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content", n)
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", n, err)
	}
	return &textPage{number: n, text: text}, nil
}

func (d *pdfDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.file.Close()
	os.Remove(d.tmpPath)
	return err
}

// pdfMetadata pulls standard Info dictionary fields, best-effort.
func pdfMetadata(reader *pdflib.Reader, name string) Metadata {
	meta := Metadata{"title": strings.TrimSuffix(name, ".pdf")}

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	for _, key := range []string{"Title", "Author", "Subject", "Creator", "Producer"} {
		v := info.Key(key)
		if v.Kind() != pdflib.String {
			continue
		}
		if s := strings.TrimSpace(v.Text()); s != "" {
			meta[strings.ToLower(key)] = s
		}
	}
	return meta
}
