package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/docview/docview/internal/config"
	"github.com/docview/docview/internal/engine"
	"github.com/docview/docview/internal/notify"
	"github.com/docview/docview/internal/source"
)

// State is the manager's lifecycle state.
type State int

const (
	StateEmpty State = iota
	StateOpening
	StateReady
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Manager is the facade over loader, session and page cache. One
// document is open at a time; a new open force-closes the previous
// session first. Background preloads are tagged with the session
// generation so results from a superseded session are discarded.
type Manager struct {
	cfg     config.Config
	loader  *Loader
	session *Session
	cache   *PageCache
	sink    notify.Sink
	log     *slog.Logger

	mu         sync.Mutex
	state      State
	generation atomic.Uint64
	preloads   sync.WaitGroup
	inflight   mapset.Set[int]
}

func NewManager(cfg config.Config, factory engine.Factory, sink notify.Sink, log *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		loader:   NewLoader(factory, sink, log, cfg.MaxRetries, cfg.RetryDelay),
		session:  NewSession(log),
		cache:    NewPageCache(cfg.MaxCacheSize, log),
		sink:     sink,
		log:      log,
		inflight: mapset.NewSet[int](),
	}
}

// Open loads the document the ref points at and makes it the current
// session. A document already open, or an open still in flight, is
// closed first; exhaustion of the loader's retries is terminal for this
// call and the caller must retry explicitly.
func (m *Manager) Open(ctx context.Context, ref source.Ref) error {
	m.Close()

	m.mu.Lock()
	gen := m.generation.Add(1)
	m.state = StateOpening
	m.mu.Unlock()

	// Stale pages from a previous document must never leak into a new
	// session.
	m.cache.ClearAll()

	doc, err := m.loader.Load(ctx, ref)
	if err != nil {
		m.mu.Lock()
		if m.generation.Load() == gen && m.state == StateOpening {
			m.state = StateEmpty
		}
		m.mu.Unlock()
		if !errors.Is(err, ErrLoadCancelled) {
			m.sink.Publish(notify.NewEvent(notify.TypeLoadFailure, map[string]any{
				"ref":      ref.String(),
				"attempts": m.cfg.MaxRetries,
				"error":    err.Error(),
				"terminal": true,
			}))
		}
		return err
	}

	m.mu.Lock()
	if m.generation.Load() != gen {
		// Superseded while the factory was resolving.
		m.mu.Unlock()
		doc.Close()
		return ErrLoadCancelled
	}
	m.session.SetDocument(doc)
	m.state = StateReady
	m.mu.Unlock()

	m.sink.Publish(notify.NewEvent(notify.TypeLoadSuccess, map[string]any{
		"ref":         ref.String(),
		"total_pages": doc.PageCount(),
		"metadata":    doc.Metadata(),
	}))
	m.log.Info("document opened", "ref", ref.String(), "total_pages", doc.PageCount())
	return nil
}

// GetPage serves one page: from cache when hot, from the session on a
// miss. Either way a preload window around n is fetched in the
// background; preload failures never surface here.
func (m *Manager) GetPage(ctx context.Context, n int) (engine.Page, error) {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return nil, ErrNoDocument
	}
	gen := m.generation.Load()
	m.mu.Unlock()

	if page := m.cache.Get(n); page != nil {
		m.schedulePreload(n, gen)
		return page, nil
	}

	page, err := m.session.Page(n)
	if err != nil {
		m.sink.Publish(notify.NewEvent(notify.TypePageError, map[string]any{
			"page":  n,
			"error": err.Error(),
		}))
		return nil, err
	}

	// A close or reopen may have cleared the cache while the fetch was in
	// flight; inserting now would strand the page past ClearAll.
	m.mu.Lock()
	if m.state != StateReady || m.generation.Load() != gen {
		m.mu.Unlock()
		page.Close()
		return nil, ErrNoDocument
	}
	m.cache.Add(n, page)
	m.mu.Unlock()

	m.schedulePreload(n, gen)
	return page, nil
}

// schedulePreload fires background fetches for the uncached part of the
// window around center. Each task re-checks the generation before and
// after its fetch so a close or reopen invalidates it.
func (m *Manager) schedulePreload(center int, gen uint64) {
	if m.cfg.PreloadRange <= 0 {
		return
	}
	total := m.session.TotalPages()
	if total == 0 {
		return
	}
	start := center - m.cfg.PreloadRange
	if start < 1 {
		start = 1
	}
	end := center + m.cfg.PreloadRange
	if end > total {
		end = total
	}

	plan := m.cache.PlanPreload(start, end)
	plan.Remove(center)

	targets := make([]int, 0, plan.Cardinality())
	for p := range plan.Iter() {
		// Skip pages another pass is already fetching.
		if m.inflight.Add(p) {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return
	}

	stamp := m.cache.PreloadStamp()
	sem := make(chan struct{}, m.cfg.PreloadWorkers)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady || m.generation.Load() != gen {
		for _, p := range targets {
			m.inflight.Remove(p)
		}
		return
	}
	for _, p := range targets {
		m.preloads.Add(1)
		go func(p int) {
			defer m.preloads.Done()
			defer m.inflight.Remove(p)
			sem <- struct{}{}
			defer func() { <-sem }()

			if m.generation.Load() != gen {
				return
			}
			page, err := m.session.Page(p)
			if err != nil {
				m.log.Warn("preload fetch failed", "page", p, "error", err)
				return
			}
			if m.generation.Load() != gen {
				// Session changed while decoding; discard the result.
				page.Close()
				return
			}
			m.cache.AddPreloaded(p, page, stamp)
		}(p)
	}
}

// Close cancels any in-flight load, waits out background preloads,
// clears the cache and releases the document. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateEmpty {
		m.mu.Unlock()
		return
	}
	m.state = StateClosing
	m.generation.Add(1)
	m.mu.Unlock()

	m.loader.Cancel()
	m.preloads.Wait()
	m.cache.ClearAll()
	m.session.Close()

	m.mu.Lock()
	m.state = StateEmpty
	m.mu.Unlock()
}

// CleanupCache drops cached pages farther than the configured keep
// range from the current reading position.
func (m *Manager) CleanupCache(currentPage int) {
	m.cache.Cleanup(currentPage, m.cfg.KeepRange)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) TotalPages() int { return m.session.TotalPages() }

// DocumentInfo returns the open document's metadata, or nil.
func (m *Manager) DocumentInfo() engine.Metadata { return m.session.Info() }

func (m *Manager) CacheStats() CacheStats { return m.cache.Stats() }

// WaitPreloads blocks until outstanding preload fetches settle.
func (m *Manager) WaitPreloads() { m.preloads.Wait() }
