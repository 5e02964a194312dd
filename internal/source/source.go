package source

import (
	"fmt"
	"io"
	"net/url"
	"path"
)

// Kind says which form a Ref carries.
type Kind int

const (
	KindURL Kind = iota
	KindBytes
	KindReader
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindBytes:
		return "bytes"
	case KindReader:
		return "reader"
	default:
		return "unknown"
	}
}

// Ref identifies a document to open: a remote locator, an in-memory
// buffer, or a stream. Caller-supplied and never mutated.
type Ref struct {
	kind   Kind
	url    string
	name   string
	data   []byte
	reader io.Reader
}

// FromURL builds a Ref for a remote locator.
func FromURL(rawURL string) Ref {
	return Ref{kind: KindURL, url: rawURL}
}

// FromBytes builds a Ref over an in-memory buffer. The name is used for
// format detection, e.g. "report.pdf".
func FromBytes(name string, data []byte) Ref {
	return Ref{kind: KindBytes, name: name, data: data}
}

// FromReader builds a Ref over a stream. The stream is consumed once,
// when the ref is resolved.
func FromReader(name string, r io.Reader) Ref {
	return Ref{kind: KindReader, name: name, reader: r}
}

func (r Ref) Kind() Kind { return r.kind }

func (r Ref) URL() string { return r.url }

func (r Ref) Bytes() []byte { return r.data }

func (r Ref) Reader() io.Reader { return r.reader }

// Name returns the filename used for format detection. For URL refs it
// is derived from the locator path.
func (r Ref) Name() string {
	if r.kind != KindURL {
		return r.name
	}
	u, err := url.Parse(r.url)
	if err != nil {
		return r.url
	}
	return path.Base(u.Path)
}

func (r Ref) String() string {
	switch r.kind {
	case KindURL:
		return fmt.Sprintf("url:%s", r.url)
	case KindBytes:
		return fmt.Sprintf("bytes:%s (%d bytes)", r.name, len(r.data))
	default:
		return fmt.Sprintf("reader:%s", r.name)
	}
}
