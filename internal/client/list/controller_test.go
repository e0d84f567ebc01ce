package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdex/jobtrack-backend/internal/client/api"
	"github.com/appdex/jobtrack-backend/internal/client/cache"
	"github.com/appdex/jobtrack-backend/internal/client/querystate"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

// ============================================================================
// Mocks
// ============================================================================

type mockFetcher struct {
	FetchWindowFunc func(ctx context.Context, state querystate.QueryState, windowIndex int) (*api.WindowResult, error)
	calls           atomic.Int64
}

func (m *mockFetcher) FetchWindow(ctx context.Context, state querystate.QueryState, windowIndex int) (*api.WindowResult, error) {
	m.calls.Add(1)
	return m.FetchWindowFunc(ctx, state, windowIndex)
}

// ============================================================================
// Helpers
// ============================================================================

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(fetch *mockFetcher) (*Controller, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := cache.New(cache.WithClock(clock.Now), cache.WithTTL(30*time.Second))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewController(fetch, c, logger), clock
}

// serverRows builds a full window of 50 rows, company-0 through company-49.
func serverRows(n int) []domain.Application {
	rows := make([]domain.Application, n)
	for i := range rows {
		rows[i] = domain.Application{ID: uuid.New(), Company: "company-" + string(rune('0'+i%10))}
	}
	return rows
}

// ============================================================================
// Load
// ============================================================================

func TestController_Load_FetchesAndSlices(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, state querystate.QueryState, windowIndex int) (*api.WindowResult, error) {
			assert.Equal(t, 0, windowIndex)
			return &api.WindowResult{Rows: serverRows(50), TotalCount: 123}, nil
		},
	}
	ctrl, _ := newTestController(fetch)

	state := querystate.Default() // page 1, size 10

	page, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	assert.Len(t, page.Rows, 10)
	assert.EqualValues(t, 123, page.TotalCount)
	assert.Equal(t, 13, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.False(t, page.Stale)
}

func TestController_Load_OversizedPageSizeClampedConsistently(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, state querystate.QueryState, _ int) (*api.WindowResult, error) {
			// The fetch sees the clamped size, so the window it requests
			// matches what the slicer will cut.
			assert.Equal(t, 20, state.PageSize)
			return &api.WindowResult{Rows: serverRows(100), TotalCount: 100}, nil
		},
	}
	ctrl, _ := newTestController(fetch)

	state := querystate.Default()
	state.PageSize = 30

	for p := 1; p <= 5; p++ {
		state.Page = p
		page, err := ctrl.Load(context.Background(), state)
		require.NoError(t, err)
		assert.Len(t, page.Rows, 20, "page %d", p)
		assert.Equal(t, 5, page.TotalPages)
	}
	assert.EqualValues(t, 1, fetch.calls.Load())
}

func TestController_Load_SecondPageServedFromCache(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, _ querystate.QueryState, _ int) (*api.WindowResult, error) {
			return &api.WindowResult{Rows: serverRows(50), TotalCount: 123}, nil
		},
	}
	ctrl, _ := newTestController(fetch)

	state := querystate.Default()
	_, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	// Pages 2 through 5 live in the same window; no second fetch.
	for p := 2; p <= 5; p++ {
		state.Page = p
		page, err := ctrl.Load(context.Background(), state)
		require.NoError(t, err)
		assert.Len(t, page.Rows, 10)
	}
	assert.EqualValues(t, 1, fetch.calls.Load())

	// Page 6 crosses into the next window.
	state.Page = 6
	_, err = ctrl.Load(context.Background(), state)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fetch.calls.Load())
}

func TestController_Load_PartialFinalPage(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, _ querystate.QueryState, windowIndex int) (*api.WindowResult, error) {
			assert.Equal(t, 0, windowIndex)
			return &api.WindowResult{Rows: serverRows(47), TotalCount: 47}, nil
		},
	}
	ctrl, _ := newTestController(fetch)

	state := querystate.Default()
	state.Page = 5

	page, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	assert.Len(t, page.Rows, 7, "final page carries the remainder")
	assert.Equal(t, 5, page.TotalPages)
}

func TestController_Load_DifferentFiltersFetchSeparately(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, _ querystate.QueryState, _ int) (*api.WindowResult, error) {
			return &api.WindowResult{Rows: serverRows(10), TotalCount: 10}, nil
		},
	}
	ctrl, _ := newTestController(fetch)

	a := querystate.Default()
	_, err := ctrl.Load(context.Background(), a)
	require.NoError(t, err)

	b := querystate.Default()
	b.SortDir = domain.SortAsc
	_, err = ctrl.Load(context.Background(), b)
	require.NoError(t, err)

	assert.EqualValues(t, 2, fetch.calls.Load(), "a sort direction change addresses a different window")
}

func TestController_Load_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, _ querystate.QueryState, _ int) (*api.WindowResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	ctrl, _ := newTestController(fetch)

	_, err := ctrl.Load(context.Background(), querystate.Default())
	assert.ErrorContains(t, err, "connection refused")
}

func TestController_Load_StaleWindowServedWhileRevalidating(t *testing.T) {
	t.Parallel()

	fetched := make(chan struct{})
	var fetchedOnce sync.Once
	fetch := &mockFetcher{}
	fetch.FetchWindowFunc = func(_ context.Context, _ querystate.QueryState, _ int) (*api.WindowResult, error) {
		if fetch.calls.Load() > 1 {
			defer fetchedOnce.Do(func() { close(fetched) })
			return &api.WindowResult{Rows: serverRows(20), TotalCount: 20}, nil
		}
		return &api.WindowResult{Rows: serverRows(10), TotalCount: 10}, nil
	}
	ctrl, clock := newTestController(fetch)

	state := querystate.Default()
	_, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	clock.Advance(time.Minute)

	// The stale window renders immediately; the refetch runs behind it.
	page, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, page.Stale)
	assert.EqualValues(t, 10, page.TotalCount)

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("background revalidation never ran")
	}

	// Once revalidated, the fresh rows are served.
	require.Eventually(t, func() bool {
		page, err := ctrl.Load(context.Background(), state)
		return err == nil && !page.Stale && page.TotalCount == 20
	}, 2*time.Second, 10*time.Millisecond)
}

// ============================================================================
// Refresh
// ============================================================================

func TestController_Refresh_BypassesFreshCache(t *testing.T) {
	t.Parallel()

	fetch := &mockFetcher{
		FetchWindowFunc: func(_ context.Context, _ querystate.QueryState, _ int) (*api.WindowResult, error) {
			return &api.WindowResult{Rows: serverRows(10), TotalCount: 10}, nil
		},
	}
	ctrl, _ := newTestController(fetch)

	state := querystate.Default()
	_, err := ctrl.Load(context.Background(), state)
	require.NoError(t, err)

	_, err = ctrl.Refresh(context.Background(), state)
	require.NoError(t, err)

	assert.EqualValues(t, 2, fetch.calls.Load())
}
