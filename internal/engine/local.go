package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/docview/docview/internal/source"
)

// Local is the Factory backed by the in-process format adapters. URL
// sources are fetched through the supplied Fetcher before dispatch.
type Local struct {
	fetcher *source.Fetcher
	opts    Options
}

func NewLocal(fetcher *source.Fetcher, opts Options) *Local {
	return &Local{fetcher: fetcher, opts: opts}
}

func (l *Local) OpenURL(ctx context.Context, rawURL string) (Document, error) {
	data, err := l.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return l.OpenBytes(ctx, source.FromURL(rawURL).Name(), data)
}

func (l *Local) OpenBytes(_ context.Context, name string, data []byte) (Document, error) {
	eng, err := ForName(name, l.opts)
	if err != nil {
		return nil, err
	}
	return eng.Open(name, data)
}

func (l *Local) OpenReader(ctx context.Context, name string, r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return l.OpenBytes(ctx, name, data)
}
