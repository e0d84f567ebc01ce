package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

// List returns one page of the caller's applications matching the input
// filter, plus the total match count. Malformed pagination and sort values
// degrade to defaults rather than erroring.
func (s *Service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	filter := domain.ApplicationFilter{
		Statuses:  input.Statuses,
		Modes:     input.Modes,
		TagNames:  input.TagNames,
		DateFrom:  input.DateFrom,
		DateTo:    input.DateTo,
		Search:    input.Search,
		SalaryMin: input.SalaryMin,
		SalaryMax: input.SalaryMax,
		SortBy:    input.SortBy,
		SortDir:   input.SortDir,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	filter.Normalize()
	if s.cfg.MaxPageSize > 0 && filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	items, total, err := s.apps.Find(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	return &ListResult{Items: items, Total: total}, nil
}

// ListAll returns the caller's full unpaginated list for board and export
// views, capped at the configured export maximum. An unknown activity value
// maps to "all".
func (s *Service) ListAll(ctx context.Context, activity domain.Activity) ([]domain.Application, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if !activity.IsValid() {
		activity = domain.ActivityAll
	}

	items, err := s.apps.ListAll(ctx, userID, activity)
	if err != nil {
		return nil, fmt.Errorf("list all applications: %w", err)
	}
	if s.cfg.ExportMaxEntries > 0 && len(items) > s.cfg.ExportMaxEntries {
		items = items[:s.cfg.ExportMaxEntries]
	}

	return items, nil
}

// Stats returns the caller's application counts grouped by status.
func (s *Service) Stats(ctx context.Context) ([]domain.StatusCount, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	counts, err := s.apps.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("application stats: %w", err)
	}

	return counts, nil
}

// Get returns a single application by id.
func (s *Service) Get(ctx context.Context, appID uuid.UUID) (*domain.Application, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	return s.apps.GetByID(ctx, userID, appID)
}
