// Package application implements the application-tracking business logic:
// filtered listing, CRUD, partial patches, and bulk mutations.
package application

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/config"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type appRepo interface {
	Find(ctx context.Context, userID uuid.UUID, f domain.ApplicationFilter) ([]domain.Application, int, error)
	ListAll(ctx context.Context, userID uuid.UUID, activity domain.Activity) ([]domain.Application, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) ([]domain.StatusCount, error)
	GetByID(ctx context.Context, userID, appID uuid.UUID) (*domain.Application, error)
	Create(ctx context.Context, app *domain.Application) (*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) (*domain.Application, error)
	BulkUpdateStatus(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, status domain.ApplicationStatus) (int64, error)
	Delete(ctx context.Context, userID, appID uuid.UUID) error
}

type tagRepo interface {
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]domain.Tag, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the application business logic.
type Service struct {
	log  *slog.Logger
	apps appRepo
	tags tagRepo
	tx   txManager
	cfg  config.TrackerConfig
}

// NewService creates a new application service.
func NewService(logger *slog.Logger, apps appRepo, tags tagRepo, tx txManager, cfg config.TrackerConfig) *Service {
	return &Service{
		log:  logger.With("service", "application"),
		apps: apps,
		tags: tags,
		tx:   tx,
		cfg:  cfg,
	}
}

// resolveTags maps the requested tag ids onto the owner's existing tags.
// Ids that do not exist or belong to another user are silently dropped.
func (s *Service) resolveTags(ctx context.Context, userID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error) {
	if tagIDs == nil {
		return nil, nil
	}
	return s.tags.GetByIDs(ctx, userID, tagIDs)
}
