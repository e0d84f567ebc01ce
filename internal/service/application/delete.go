package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.apps.Delete(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	s.log.InfoContext(ctx, "application deleted", "user_id", userID, "application_id", id)
	return nil
}
