// Package tag implements the Tag repository using PostgreSQL.
// Tags are owner-scoped, unique per (user_id, name), and linked to
// applications via the application_tags join table.
package tag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/appdex/jobtrack-backend/internal/adapter/postgres"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

// Repo provides tag persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tag repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// List returns all tags for a user ordered by name.
// Returns an empty slice (not nil) when the user has none.
func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx,
		`SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// GetByName returns the owner's tag with the given name.
// Returns domain.ErrNotFound when absent.
func (r *Repo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var t domain.Tag
	err := querier.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 AND name = $2`,
		userID, name,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "tag", uuid.Nil)
	}

	return &t, nil
}

// GetByIDs returns the owner's tags among the given ids. Ids that do not
// exist or belong to another user are simply absent from the result.
func (r *Repo) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx,
		`SELECT id, user_id, name, created_at FROM tags
		 WHERE user_id = $1 AND id = ANY($2::uuid[]) ORDER BY name`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("get tags by ids: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// FindOrCreate returns the owner's tag with the given name, creating it on
// first use. A concurrent create racing on the (user_id, name) unique
// constraint falls back to the lookup.
func (r *Repo) FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	existing, err := r.GetByName(ctx, userID, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	t := domain.Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err = querier.Exec(ctx,
		`INSERT INTO tags (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.UserID, t.Name, t.CreatedAt)
	if err != nil {
		mapped := postgres.MapError(err, "tag", t.ID)
		if errors.Is(mapped, domain.ErrAlreadyExists) {
			return r.GetByName(ctx, userID, name)
		}
		return nil, mapped
	}

	return &t, nil
}

// Delete removes a tag; join rows detach via ON DELETE CASCADE, applications
// themselves are untouched. Returns domain.ErrNotFound if the tag does not
// exist and domain.ErrForbidden if it belongs to another user.
func (r *Repo) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var ownerID uuid.UUID
	err := querier.QueryRow(ctx, `SELECT user_id FROM tags WHERE id = $1`, tagID).Scan(&ownerID)
	if err != nil {
		return postgres.MapError(err, "tag", tagID)
	}
	if ownerID != userID {
		return fmt.Errorf("tag %s: %w", tagID, domain.ErrForbidden)
	}

	if _, err := querier.Exec(ctx, `DELETE FROM tags WHERE id = $1`, tagID); err != nil {
		return postgres.MapError(err, "tag", tagID)
	}

	return nil
}

// Count returns the number of tags the user owns.
func (r *Repo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx,
		`SELECT count(*) FROM tags WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}

	return count, nil
}

func scanTags(rows pgx.Rows) ([]domain.Tag, error) {
	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []domain.Tag{}
	}

	return tags, nil
}
