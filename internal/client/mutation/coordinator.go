// Package mutation coordinates client-side writes against the window cache.
// Cheap, likely-to-succeed changes apply optimistically: the cached rows are
// patched before the server answers, and a rejection restores the exact
// pre-mutation snapshot. Bulk and structural changes wait for the server
// and then invalidate the affected windows.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/appdex/jobtrack-backend/internal/client/api"
	"github.com/appdex/jobtrack-backend/internal/client/cache"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

// deleteConcurrency bounds the fan-out of a bulk delete.
const deleteConcurrency = 4

// apiClient is the slice of the HTTP client the coordinator needs.
type apiClient interface {
	CreateApplication(ctx context.Context, form api.ApplicationForm) (*domain.Application, error)
	UpdateApplication(ctx context.Context, id uuid.UUID, form api.ApplicationForm) (*domain.Application, error)
	PatchApplication(ctx context.Context, id uuid.UUID, patch api.Patch) (*domain.Application, error)
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status domain.ApplicationStatus) (int64, error)
	DeleteApplication(ctx context.Context, id uuid.UUID) error
}

// Coordinator owns the write path of the client.
type Coordinator struct {
	log   *slog.Logger
	api   apiClient
	cache *cache.Cache

	// lastState holds the final phase of the most recent attempt, for
	// status display.
	lastState State
}

func NewCoordinator(apiClient apiClient, c *cache.Cache, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		log:   logger.With("component", "mutation"),
		api:   apiClient,
		cache: c,
	}
}

// LastState reports how the most recent mutation attempt ended.
func (c *Coordinator) LastState() State { return c.lastState }

// PatchStatus optimistically moves one application to a new status. The
// cached row changes immediately; a server rejection restores every cached
// window to its exact pre-mutation state.
func (c *Coordinator) PatchStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) (*domain.Application, error) {
	return c.patchOptimistic(ctx, id, api.Patch{}.SetStatus(status), func(app *domain.Application) {
		app.Status = status
	})
}

// PatchNotes optimistically replaces one application's notes.
func (c *Coordinator) PatchNotes(ctx context.Context, id uuid.UUID, notes *string) (*domain.Application, error) {
	return c.patchOptimistic(ctx, id, api.Patch{}.SetNotes(notes), func(app *domain.Application) {
		app.Notes = notes
	})
}

// PatchRounds optimistically records completed interview rounds.
func (c *Coordinator) PatchRounds(ctx context.Context, id uuid.UUID, done int) (*domain.Application, error) {
	return c.patchOptimistic(ctx, id, api.Patch{}.SetRoundsDone(done), func(app *domain.Application) {
		app.InterviewRoundsDone = done
	})
}

func (c *Coordinator) patchOptimistic(ctx context.Context, id uuid.UUID, patch api.Patch, apply func(*domain.Application)) (*domain.Application, error) {
	var m machine
	snapshot := c.cache.Snapshot()

	m.apply()
	c.cache.Update(func(app *domain.Application) {
		if app.ID == id {
			apply(app)
		}
	})

	confirmed, err := c.api.PatchApplication(ctx, id, patch)
	if err != nil {
		m.rollback()
		c.cache.Restore(snapshot)
		c.finish(m, "patch", err)
		return nil, fmt.Errorf("patch application: %w", err)
	}

	m.commit()
	// Replace the optimistic guess with the server's authoritative row.
	c.cache.Update(func(app *domain.Application) {
		if app.ID == id {
			*app = *confirmed
		}
	})
	c.finish(m, "patch", nil)
	return confirmed, nil
}

// BulkStatus moves every selected application to status in one request,
// waiting for the server before touching local state. Success invalidates
// the cached windows so the next load resyncs; failure leaves the cache
// untouched. The server silently skips ids the caller does not own, so
// updated may be smaller than len(ids).
func (c *Coordinator) BulkStatus(ctx context.Context, ids []uuid.UUID, status domain.ApplicationStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var m machine
	m.apply()

	updated, err := c.api.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		m.rollback()
		c.finish(m, "bulk_status", err)
		return 0, fmt.Errorf("bulk status update: %w", err)
	}

	m.commit()
	if updated < int64(len(ids)) {
		c.log.Warn("bulk status partially applied",
			"requested", len(ids), "updated", updated)
	}
	c.cache.Invalidate("")
	c.finish(m, "bulk_status", nil)
	return updated, nil
}

// BulkDelete deletes the selected applications server-side with bounded
// concurrency and waits for every call before declaring success. Deletes
// are not undoable: on a partial failure the rows already gone are dropped
// from the cached windows and a single bulk error is returned.
func (c *Coordinator) BulkDelete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	var m machine
	m.apply()

	var (
		mu      sync.Mutex
		deleted []uuid.UUID
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := c.api.DeleteApplication(ctx, id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.rollback()
		c.cache.Drop(deleted...)
		c.finish(m, "bulk_delete", err)
		return fmt.Errorf("bulk delete: %w", err)
	}

	m.commit()
	c.cache.Invalidate("")
	c.finish(m, "bulk_delete", nil)
	return nil
}

// Create waits for the server before touching local state. A new row can
// surface in any filtered window, so the whole cache is invalidated.
func (c *Coordinator) Create(ctx context.Context, form api.ApplicationForm) (*domain.Application, error) {
	app, err := c.api.CreateApplication(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	c.cache.Invalidate("")
	return app, nil
}

// Update replaces every field of one application pessimistically. A full
// update can move the row across filters and sort positions, so the whole
// cache is invalidated.
func (c *Coordinator) Update(ctx context.Context, id uuid.UUID, form api.ApplicationForm) (*domain.Application, error) {
	app, err := c.api.UpdateApplication(ctx, id, form)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	c.cache.Invalidate("")
	return app, nil
}

// Delete removes one application.
func (c *Coordinator) Delete(ctx context.Context, id uuid.UUID) error {
	return c.BulkDelete(ctx, []uuid.UUID{id})
}

func (c *Coordinator) finish(m machine, op string, err error) {
	c.lastState = m.state
	if err != nil {
		c.log.Warn("mutation rolled back", "op", op, "error", err)
		return
	}
	c.log.Debug("mutation committed", "op", op)
}
