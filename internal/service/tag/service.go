// Package tag implements tag management: listing, idempotent creation,
// and deletion of the caller's label set.
package tag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/config"
	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

type tagRepo interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	Delete(ctx context.Context, userID, tagID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// Service implements the tag business logic.
type Service struct {
	log  *slog.Logger
	tags tagRepo
	cfg  config.TrackerConfig
}

// NewService creates a new tag service.
func NewService(logger *slog.Logger, tags tagRepo, cfg config.TrackerConfig) *Service {
	return &Service{
		log:  logger.With("service", "tag"),
		tags: tags,
		cfg:  cfg,
	}
}

// List returns the caller's tags ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Tag, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	tags, err := s.tags.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

// Create finds or creates a tag by name. Creating a name that already exists
// returns the existing tag rather than an error, so the client can send the
// same name twice without special-casing.
func (s *Service) Create(ctx context.Context, name string) (*domain.Tag, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if err := domain.ValidateTagName(name); err != nil {
		return nil, err
	}

	// Re-creating an existing name is always allowed; the limit only gates
	// genuinely new tags.
	if existing, err := s.tags.GetByName(ctx, userID, name); err == nil {
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup tag: %w", err)
	}

	if max := s.cfg.MaxTagsPerUser; max > 0 {
		count, err := s.tags.Count(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count tags: %w", err)
		}
		if count >= max {
			return nil, domain.NewValidationError("name", fmt.Sprintf("tag limit of %d reached", max))
		}
	}

	tag, err := s.tags.FindOrCreate(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.log.InfoContext(ctx, "tag ensured", "user_id", userID, "tag", tag.Name)

	return tag, nil
}

// Delete removes a tag. Links to applications go with it; the applications
// themselves are untouched.
func (s *Service) Delete(ctx context.Context, tagID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.tags.Delete(ctx, userID, tagID); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	s.log.InfoContext(ctx, "tag deleted", "user_id", userID, "tag_id", tagID)
	return nil
}
