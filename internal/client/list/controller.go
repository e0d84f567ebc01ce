// Package list drives the paginated application view. Pages are served from
// the window cache when possible; a stale window is rendered immediately
// while a background refetch revalidates it, and concurrent loads of the
// same window share one request.
package list

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/appdex/jobtrack-backend/internal/client/api"
	"github.com/appdex/jobtrack-backend/internal/client/cache"
	"github.com/appdex/jobtrack-backend/internal/client/querystate"
	"github.com/appdex/jobtrack-backend/internal/client/window"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

// fetcher fetches one window of rows from the server.
type fetcher interface {
	FetchWindow(ctx context.Context, state querystate.QueryState, windowIndex int) (*api.WindowResult, error)
}

// Page is one rendered page of the listing.
type Page struct {
	Rows       []domain.Application
	TotalCount int64
	TotalPages int
	Page       int

	// Stale marks a page rendered from an expired cache entry while a
	// background revalidation is in flight.
	Stale bool
}

// Controller loads pages through the cache.
type Controller struct {
	log   *slog.Logger
	fetch fetcher
	cache *cache.Cache
	group singleflight.Group
}

func NewController(fetch fetcher, c *cache.Cache, logger *slog.Logger) *Controller {
	return &Controller{
		log:   logger.With("component", "list"),
		fetch: fetch,
		cache: c,
	}
}

// Load returns the page addressed by state. A fresh cached window is
// sliced directly; a stale one is returned marked Stale with a
// revalidation running in the background; a missing one is fetched
// synchronously.
func (c *Controller) Load(ctx context.Context, state querystate.QueryState) (*Page, error) {
	state = clampPageSize(state)
	idx := window.Index(state.Page, window.PagesPerWindow)
	key := cache.Key(state.Key(), idx)

	entry, found, fresh := c.cache.Peek(key)
	if found && fresh {
		return c.page(state, entry, false), nil
	}

	if found {
		// Serve the stale window now, revalidate behind the render. The
		// fetch must outlive the caller's render deadline.
		bg := context.WithoutCancel(ctx)
		go func() {
			if _, err := c.revalidate(bg, state, idx, key); err != nil {
				c.log.Warn("background revalidation failed", "error", err)
			}
		}()
		return c.page(state, entry, true), nil
	}

	entry, err := c.revalidate(ctx, state, idx, key)
	if err != nil {
		return nil, err
	}
	return c.page(state, entry, false), nil
}

// Refresh forces a synchronous refetch of the window covering state.Page.
func (c *Controller) Refresh(ctx context.Context, state querystate.QueryState) (*Page, error) {
	state = clampPageSize(state)
	idx := window.Index(state.Page, window.PagesPerWindow)
	key := cache.Key(state.Key(), idx)

	entry, err := c.revalidate(ctx, state, idx, key)
	if err != nil {
		return nil, err
	}
	return c.page(state, entry, false), nil
}

// revalidate fetches the window and commits it unless the fetch was
// superseded meanwhile. Concurrent revalidations of one key collapse into
// a single request.
func (c *Controller) revalidate(ctx context.Context, state querystate.QueryState, idx int, key string) (cache.Entry, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		token := c.cache.Begin(key)

		result, err := c.fetch.FetchWindow(ctx, state, idx)
		if err != nil {
			return cache.Entry{}, err
		}

		if !c.cache.Commit(key, token, result.Rows, result.TotalCount) {
			c.log.Debug("superseded fetch discarded", "key", key)
		}
		return cache.Entry{Rows: result.Rows, TotalCount: result.TotalCount}, nil
	})
	if err != nil {
		return cache.Entry{}, err
	}
	return v.(cache.Entry), nil
}

// clampPageSize keeps the page size inside what one window fetch can carry,
// so the slicer and the fetch agree on page boundaries.
func clampPageSize(state querystate.QueryState) querystate.QueryState {
	if state.PageSize < 1 {
		state.PageSize = querystate.DefaultPageSize
	}
	if state.PageSize > window.MaxPageSize {
		state.PageSize = window.MaxPageSize
	}
	return state
}

func (c *Controller) page(state querystate.QueryState, entry cache.Entry, stale bool) *Page {
	return &Page{
		Rows:       window.Slice(entry.Rows, state.Page, state.PageSize, window.PagesPerWindow),
		TotalCount: entry.TotalCount,
		TotalPages: window.TotalPages(int(entry.TotalCount), state.PageSize),
		Page:       state.Page,
		Stale:      stale,
	}
}
