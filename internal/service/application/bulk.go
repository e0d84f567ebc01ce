package application

import (
	"context"
	"fmt"

	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

// BulkStatus moves every owned application in input.ApplicationIDs to
// input.Status. IDs the caller does not own are skipped without error.
func (s *Service) BulkStatus(ctx context.Context, input BulkStatusInput) (*BulkStatusResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ids := dedupeIDs(input.ApplicationIDs)
	if max := s.cfg.MaxBulkBatchSize; max > 0 && len(ids) > max {
		return nil, domain.NewValidationError("applicationIds", fmt.Sprintf("at most %d ids per request", max))
	}

	var updated int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.apps.BulkUpdateStatus(ctx, userID, ids, input.Status)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bulk update status: %w", err)
	}

	s.log.InfoContext(ctx, "bulk status update",
		"user_id", userID,
		"status", input.Status,
		"requested", len(ids),
		"updated", updated,
	)

	return &BulkStatusResult{Updated: updated}, nil
}
