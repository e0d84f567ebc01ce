// Package cache holds fetched list windows keyed by query state and window
// index. Entries age out after a TTL, and each key carries a generation
// counter so that a response from a superseded request is discarded instead
// of overwriting fresher data.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// DefaultTTL is how long a window stays fresh before a refetch is needed.
const DefaultTTL = 30 * time.Second

// Entry is one cached window of rows plus the matching total count.
type Entry struct {
	Rows       []domain.Application
	TotalCount int64
	FetchedAt  time.Time
}

// Cache is a TTL window cache safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	gens    map[string]uint64
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock substitutes the time source. Tests use this to age entries
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		gens:    make(map[string]uint64),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key combines the query-state key with the window index.
func Key(stateKey string, windowIndex int) string {
	return stateKey + ";win=" + strconv.Itoa(windowIndex)
}

// Get returns the entry for key if present and fresh.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if c.now().Sub(e.FetchedAt) > c.ttl {
		delete(c.entries, key)
		return Entry{}, false
	}
	return e, true
}

// Peek returns the entry for key even when stale, for
// stale-while-revalidate rendering. found reports presence, fresh whether
// the entry is still inside the TTL.
func (c *Cache) Peek(key string) (e Entry, found, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found = c.entries[key]
	if !found {
		return Entry{}, false, false
	}
	return e, true, c.now().Sub(e.FetchedAt) <= c.ttl
}

// Begin registers an in-flight fetch for key and returns a token for
// Commit. Starting a new fetch supersedes any earlier in-flight fetch on
// the same key.
func (c *Cache) Begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	return c.gens[key]
}

// Commit stores a fetched window if the token still matches the key's
// latest generation. A stale token means the fetch was superseded; the
// response is dropped and Commit reports false.
func (c *Cache) Commit(key string, token uint64, rows []domain.Application, totalCount int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key] != token {
		return false
	}
	c.entries[key] = Entry{
		Rows:       rows,
		TotalCount: totalCount,
		FetchedAt:  c.now(),
	}
	return true
}

// Put stores an entry unconditionally, bumping the generation so any
// in-flight fetch for the key is discarded on Commit.
func (c *Cache) Put(key string, rows []domain.Application, totalCount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	c.entries[key] = Entry{
		Rows:       rows,
		TotalCount: totalCount,
		FetchedAt:  c.now(),
	}
}

// Invalidate drops every entry whose key starts with prefix and supersedes
// the matching in-flight fetches. The empty prefix clears the whole cache.
// Mutations call this: any filtered window may have gained or lost rows.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	for key := range c.gens {
		if strings.HasPrefix(key, prefix) {
			c.gens[key]++
		}
	}
}

// Snapshot copies the current entries so a failed optimistic mutation can
// restore them exactly.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := make(map[string]Entry, len(c.entries))
	for key, e := range c.entries {
		rows := make([]domain.Application, len(e.Rows))
		copy(rows, e.Rows)
		e.Rows = rows
		snap[key] = e
	}
	return snap
}

// Restore replaces the cache contents with a snapshot, superseding any
// fetches begun since it was taken.
func (c *Cache) Restore(snap map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry, len(snap))
	for key, e := range snap {
		c.entries[key] = e
	}
	for key := range c.gens {
		c.gens[key]++
	}
}

// Drop removes the given rows from every cached window, decrementing each
// window's total count per removed row. A fresh slice is built per window
// because earlier readers may still hold views into the old one.
func (c *Cache) Drop(ids ...uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		kept := make([]domain.Application, 0, len(e.Rows))
		for _, row := range e.Rows {
			if _, gone := drop[row.ID]; gone {
				e.TotalCount--
				continue
			}
			kept = append(kept, row)
		}
		e.Rows = kept
		c.entries[key] = e
	}
}

// Update applies fn to every cached row in place. Optimistic mutations use
// it to patch rows across all windows before the server confirms.
func (c *Cache) Update(fn func(app *domain.Application)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		for i := range e.Rows {
			fn(&e.Rows[i])
		}
	}
}
