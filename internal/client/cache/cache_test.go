package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(opts ...Option) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(opts...), clock
}

func rows(companies ...string) []domain.Application {
	out := make([]domain.Application, 0, len(companies))
	for _, c := range companies {
		out = append(out, domain.Application{ID: uuid.New(), Company: c})
	}
	return out
}

func TestCache_PutAndGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	c.Put("k", rows("Initech", "Globex"), 42)

	e, ok := c.Get("k")
	require.True(t, ok)
	assert.Len(t, e.Rows, 2)
	assert.EqualValues(t, 42, e.TotalCount)

	_, ok = c.Get("other")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(WithTTL(30 * time.Second))
	c.Put("k", rows("Initech"), 1)

	clock.Advance(29 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "still fresh just under the TTL")

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "expired past the TTL")
}

func TestCache_PeekReturnsStale(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(WithTTL(30 * time.Second))
	c.Put("k", rows("Initech"), 1)
	clock.Advance(time.Minute)

	e, found, fresh := c.Peek("k")
	assert.True(t, found)
	assert.False(t, fresh)
	assert.Len(t, e.Rows, 1, "stale rows still available for rendering")

	_, found, _ = c.Peek("missing")
	assert.False(t, found)
}

func TestCache_CommitDiscardsSupersededFetch(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()

	// Two fetches race on the same key. The one begun first resolves last.
	first := c.Begin("k")
	second := c.Begin("k")

	ok := c.Commit("k", second, rows("Newer"), 1)
	require.True(t, ok)

	ok = c.Commit("k", first, rows("Older"), 1)
	assert.False(t, ok, "superseded response must be dropped")

	e, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "Newer", e.Rows[0].Company)
}

func TestCache_PutSupersedesInFlightFetch(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()

	token := c.Begin("k")
	c.Put("k", rows("Direct"), 1)

	ok := c.Commit("k", token, rows("Fetched"), 1)
	assert.False(t, ok)

	e, _ := c.Get("k")
	assert.Equal(t, "Direct", e.Rows[0].Company)
}

func TestCache_InvalidateEmptyPrefixDropsAllAndSupersedes(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	c.Put("a", rows("Initech"), 1)
	c.Put("b", rows("Globex"), 1)
	token := c.Begin("a")

	c.Invalidate("")

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.False(t, c.Commit("a", token, rows("Late"), 1))
}

func TestCache_InvalidateByPrefix(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	c.Put("sortBy=company;win=0", rows("Initech"), 1)
	c.Put("sortBy=company;win=1", rows("Globex"), 1)
	c.Put("sortBy=status;win=0", rows("Umbrella"), 1)
	token := c.Begin("sortBy=company;win=0")

	c.Invalidate("sortBy=company")

	_, ok := c.Get("sortBy=company;win=0")
	assert.False(t, ok)
	_, ok = c.Get("sortBy=company;win=1")
	assert.False(t, ok)

	// Other query shapes survive, and the superseded fetch stays dead.
	e, ok := c.Get("sortBy=status;win=0")
	require.True(t, ok)
	assert.Equal(t, "Umbrella", e.Rows[0].Company)
	assert.False(t, c.Commit("sortBy=company;win=0", token, rows("Late"), 1))
}

func TestCache_SnapshotRestore(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	c.Put("k", rows("Initech"), 1)

	snap := c.Snapshot()

	// Mutate optimistically, then roll back.
	c.Update(func(app *domain.Application) { app.Company = "Changed" })
	c.Put("extra", rows("Globex"), 1)

	c.Restore(snap)

	e, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "Initech", e.Rows[0].Company, "snapshot rows are isolated from later updates")
	_, ok = c.Get("extra")
	assert.False(t, ok, "entries added after the snapshot are gone")
}

func TestCache_RestoreSupersedesInFlight(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	c.Put("k", rows("Initech"), 1)
	snap := c.Snapshot()

	token := c.Begin("k")
	c.Restore(snap)

	assert.False(t, c.Commit("k", token, rows("Late"), 1))
}

func TestCache_UpdateAppliesToAllEntries(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	target := uuid.New()
	c.Put("a", []domain.Application{{ID: target, Status: domain.StatusApplied}}, 1)
	c.Put("b", []domain.Application{{ID: uuid.New(), Status: domain.StatusApplied}}, 1)

	c.Update(func(app *domain.Application) {
		if app.ID == target {
			app.Status = domain.StatusOffer
		}
	})

	a, _ := c.Get("a")
	b, _ := c.Get("b")
	assert.Equal(t, domain.StatusOffer, a.Rows[0].Status)
	assert.Equal(t, domain.StatusApplied, b.Rows[0].Status)
}

func TestCache_DropRemovesRowsAndAdjustsTotals(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	shared := domain.Application{ID: uuid.New(), Company: "Initech"}
	c.Put("a", []domain.Application{shared, {ID: uuid.New(), Company: "Globex"}}, 12)
	c.Put("b", []domain.Application{shared}, 5)

	c.Drop(shared.ID)

	a, _ := c.Get("a")
	assert.Len(t, a.Rows, 1)
	assert.Equal(t, "Globex", a.Rows[0].Company)
	assert.EqualValues(t, 11, a.TotalCount)

	b, _ := c.Get("b")
	assert.Empty(t, b.Rows)
	assert.EqualValues(t, 4, b.TotalCount)
}

func TestCache_DropLeavesEarlierReadersIntact(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	a := domain.Application{ID: uuid.New(), Company: "Initech"}
	b := domain.Application{ID: uuid.New(), Company: "Globex"}
	d := domain.Application{ID: uuid.New(), Company: "Hooli"}
	c.Put("k", []domain.Application{a, b, d}, 3)

	before, ok := c.Get("k")
	require.True(t, ok)

	c.Drop(a.ID)

	// The slice handed out before the drop still reads the old rows.
	require.Len(t, before.Rows, 3)
	assert.Equal(t, "Initech", before.Rows[0].Company)
	assert.Equal(t, "Globex", before.Rows[1].Company)
	assert.Equal(t, "Hooli", before.Rows[2].Company)

	after, ok := c.Get("k")
	require.True(t, ok)
	assert.Len(t, after.Rows, 2)
}

func TestCache_DropThenRestore(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache()
	row := domain.Application{ID: uuid.New(), Company: "Initech"}
	c.Put("k", []domain.Application{row}, 1)

	snap := c.Snapshot()
	c.Drop(row.ID)
	c.Restore(snap)

	e, ok := c.Get("k")
	require.True(t, ok)
	require.Len(t, e.Rows, 1)
	assert.Equal(t, "Initech", e.Rows[0].Company)
}

func TestKey_IncludesWindowIndex(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, Key("state", 0), Key("state", 1))
	assert.Equal(t, Key("state", 2), Key("state", 2))
}
