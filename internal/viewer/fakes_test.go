package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/docview/docview/internal/engine"
	"github.com/docview/docview/internal/notify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePage struct {
	mu       sync.Mutex
	number   int
	closed   int
	closeErr error
}

func (p *fakePage) Number() int  { return p.number }
func (p *fakePage) Text() string { return fmt.Sprintf("page %d", p.number) }

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return p.closeErr
}

func (p *fakePage) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakeDocument struct {
	mu       sync.Mutex
	pages    int
	meta     engine.Metadata
	pageErr  map[int]error
	pageGate map[int]chan struct{}
	fetched  []int
	handed   []*fakePage
	closed   int
}

func newFakeDocument(pages int) *fakeDocument {
	return &fakeDocument{
		pages:    pages,
		meta:     engine.Metadata{"title": "fake"},
		pageErr:  make(map[int]error),
		pageGate: make(map[int]chan struct{}),
	}
}

func (d *fakeDocument) PageCount() int            { return d.pages }
func (d *fakeDocument) Metadata() engine.Metadata { return d.meta }

func (d *fakeDocument) Page(n int) (engine.Page, error) {
	d.mu.Lock()
	gate := d.pageGate[n]
	d.mu.Unlock()
	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("page %d out of range [1, %d]", n, d.pages)
	}
	d.fetched = append(d.fetched, n)
	if err := d.pageErr[n]; err != nil {
		return nil, err
	}
	p := &fakePage{number: n}
	d.handed = append(d.handed, p)
	return p, nil
}

func (d *fakeDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

func (d *fakeDocument) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *fakeDocument) handedPages() []*fakePage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*fakePage, len(d.handed))
	copy(out, d.handed)
	return out
}

func (d *fakeDocument) fetchedPages() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, len(d.fetched))
	copy(out, d.fetched)
	return out
}

// fakeFactory fails the first `failures` opens, then hands out documents
// from the make func. A non-nil gate blocks each open until released.
type fakeFactory struct {
	mu       sync.Mutex
	failures int
	calls    int
	make     func() engine.Document
	gates    []chan struct{}
}

var errFactoryDown = errors.New("factory unavailable")

func newFakeFactory(failures, pages int) *fakeFactory {
	return &fakeFactory{
		failures: failures,
		make:     func() engine.Document { return newFakeDocument(pages) },
	}
}

func (f *fakeFactory) open(context.Context) (engine.Document, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	var gate chan struct{}
	if call <= len(f.gates) {
		gate = f.gates[call-1]
	}
	failures := f.failures
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if call <= failures {
		return nil, errFactoryDown
	}
	return f.make(), nil
}

func (f *fakeFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFactory) OpenURL(ctx context.Context, _ string) (engine.Document, error) {
	return f.open(ctx)
}

func (f *fakeFactory) OpenBytes(ctx context.Context, _ string, _ []byte) (engine.Document, error) {
	return f.open(ctx)
}

func (f *fakeFactory) OpenReader(ctx context.Context, _ string, _ io.Reader) (engine.Document, error) {
	return f.open(ctx)
}

type captureSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *captureSink) Publish(e notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *captureSink) byType(t notify.Type) []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notify.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *captureSink) all() []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Event, len(s.events))
	copy(out, s.events)
	return out
}
