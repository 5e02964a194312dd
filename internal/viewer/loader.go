package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docview/docview/internal/engine"
	"github.com/docview/docview/internal/notify"
	"github.com/docview/docview/internal/source"
)

// Loader resolves a document ref to an open handle through the engine
// factory, retrying transient failures with linear backoff. One load is
// in flight at a time; Cancel abandons it.
type Loader struct {
	factory    engine.Factory
	sink       notify.Sink
	log        *slog.Logger
	maxRetries int
	retryDelay time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewLoader(factory engine.Factory, sink notify.Sink, log *slog.Logger, maxRetries int, retryDelay time.Duration) *Loader {
	return &Loader{
		factory:    factory,
		sink:       sink,
		log:        log,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Load opens the document the ref points at. Each attempt is announced
// with a progress event; each failed attempt with a failure event. After
// maxRetries failures the last cause is surfaced as an ExhaustedError.
func (l *Loader) Load(ctx context.Context, ref source.Ref) (engine.Document, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	loadCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		l.sink.Publish(notify.NewEvent(notify.TypeLoadProgress, map[string]any{
			"ref":          ref.String(),
			"attempt":      attempt,
			"max_attempts": l.maxRetries,
		}))

		doc, err := l.open(loadCtx, ref)
		if l.stale(gen) {
			// The load was abandoned while the factory was resolving;
			// suppress the result instead of mutating session state.
			if err == nil {
				doc.Close()
			}
			return nil, ErrLoadCancelled
		}
		if err == nil {
			return doc, nil
		}

		lastErr = err
		l.log.Warn("load attempt failed", "ref", ref.String(), "attempt", attempt, "error", err)
		l.sink.Publish(notify.NewEvent(notify.TypeLoadFailure, map[string]any{
			"ref":          ref.String(),
			"attempt":      attempt,
			"max_attempts": l.maxRetries,
			"error":        err.Error(),
		}))

		if attempt < l.maxRetries {
			select {
			case <-time.After(l.retryDelay * time.Duration(attempt)):
			case <-loadCtx.Done():
				if l.stale(gen) {
					return nil, ErrLoadCancelled
				}
				return nil, loadCtx.Err()
			}
		}
	}

	return nil, &ExhaustedError{Attempts: l.maxRetries, Err: lastErr}
}

// Cancel marks the in-flight load as abandoned. Best-effort: if the
// factory call cannot be interrupted, its eventual result is discarded.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
	}
}

func (l *Loader) stale(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen != gen
}

func (l *Loader) open(ctx context.Context, ref source.Ref) (engine.Document, error) {
	switch ref.Kind() {
	case source.KindURL:
		return l.factory.OpenURL(ctx, ref.URL())
	case source.KindBytes:
		return l.factory.OpenBytes(ctx, ref.Name(), ref.Bytes())
	case source.KindReader:
		return l.factory.OpenReader(ctx, ref.Name(), ref.Reader())
	default:
		return nil, fmt.Errorf("unknown ref kind: %v", ref.Kind())
	}
}
