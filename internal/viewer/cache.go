package viewer

import (
	"log/slog"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/docview/docview/internal/engine"
)

// CacheStats is a point-in-time view of the page cache.
type CacheStats struct {
	Size    int    `json:"size"`
	MaxSize int    `json:"max_size"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	// Pages lists the cached page numbers in ascending order, the
	// range a read can currently hit.
	Pages []int `json:"pages"`
}

type cacheEntry struct {
	page       engine.Page
	lastAccess uint64
}

// PageCache is a bounded page store keyed by page number. Eviction is
// by recency of request: the counter bumps on every explicit get/add,
// while preloaded entries share the stamp of the pass that fetched
// them, so explicit requests always win ties against speculation.
type PageCache struct {
	mu           sync.Mutex
	entries      map[int]*cacheEntry
	maxSize      int
	counter      uint64
	lastExplicit int
	hits         uint64
	misses       uint64
	log          *slog.Logger
}

func NewPageCache(maxSize int, log *slog.Logger) *PageCache {
	if maxSize <= 0 {
		maxSize = 10
	}
	return &PageCache{
		entries: make(map[int]*cacheEntry),
		maxSize: maxSize,
		log:     log,
	}
}

// Get returns the cached page or nil. A hit refreshes the entry's
// recency and records the page as the last explicit request.
func (c *PageCache) Get(n int) engine.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[n]
	if !ok {
		c.misses++
		return nil
	}
	c.hits++
	c.counter++
	entry.lastAccess = c.counter
	c.lastExplicit = n
	return entry.page
}

// Add inserts or overwrites the page for an explicit request, evicting
// the least-recently-requested entries if the cache overflows.
func (c *PageCache) Add(n int, page engine.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	c.lastExplicit = n
	c.insertLocked(n, page, c.counter)
}

// PreloadStamp returns the recency stamp a preload pass should use for
// everything it inserts. Entries sharing a stamp tie on recency, and the
// tie breaks by distance from the last explicit request.
func (c *PageCache) PreloadStamp() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// AddPreloaded inserts a speculatively fetched page. An existing entry
// is kept in preference to the speculative one.
func (c *PageCache) AddPreloaded(n int, page engine.Page, stamp uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[n]; ok {
		c.releaseLocked(n, page)
		return
	}
	c.insertLocked(n, page, stamp)
}

// PlanPreload returns the page numbers in [startPage, endPage] not
// already cached. Pure: no recency updates, no side effects.
func (c *PageCache) PlanPreload(startPage, endPage int) mapset.Set[int] {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan := mapset.NewSet[int]()
	for n := startPage; n <= endPage; n++ {
		if _, ok := c.entries[n]; !ok {
			plan.Add(n)
		}
	}
	return plan
}

// Cleanup drops every cached page farther than keepRange from
// currentPage, regardless of the size bound.
func (c *PageCache) Cleanup(currentPage, keepRange int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for n, entry := range c.entries {
		distance := n - currentPage
		if distance < 0 {
			distance = -distance
		}
		if distance > keepRange {
			c.releaseLocked(n, entry.page)
			delete(c.entries, n)
		}
	}
}

// ClearAll releases every cached page and empties the store.
func (c *PageCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for n, entry := range c.entries {
		c.releaseLocked(n, entry.page)
		delete(c.entries, n)
	}
}

func (c *PageCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	pages := make([]int, 0, len(c.entries))
	for n := range c.entries {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		Pages:   pages,
	}
}

func (c *PageCache) insertLocked(n int, page engine.Page, stamp uint64) {
	if prev, ok := c.entries[n]; ok && prev.page != page {
		c.releaseLocked(n, prev.page)
	}
	c.entries[n] = &cacheEntry{page: page, lastAccess: stamp}
	for len(c.entries) > c.maxSize {
		c.evictLocked()
	}
}

// evictLocked removes the entry with the smallest recency. Ties break
// toward the page number farther from the last explicit request.
func (c *PageCache) evictLocked() {
	victim := -1
	var victimAccess uint64
	victimDistance := -1
	for n, entry := range c.entries {
		distance := n - c.lastExplicit
		if distance < 0 {
			distance = -distance
		}
		switch {
		case victim == -1,
			entry.lastAccess < victimAccess,
			entry.lastAccess == victimAccess && distance > victimDistance:
			victim = n
			victimAccess = entry.lastAccess
			victimDistance = distance
		}
	}
	if victim == -1 {
		return
	}
	c.releaseLocked(victim, c.entries[victim].page)
	delete(c.entries, victim)
}

// releaseLocked closes a page's resources. A failed release is logged
// and otherwise ignored.
func (c *PageCache) releaseLocked(n int, page engine.Page) {
	if page == nil {
		return
	}
	if err := page.Close(); err != nil {
		c.log.Warn("page release failed", "page", n, "error", err)
	}
}
