package application

import (
	"context"
	"fmt"

	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

// Create validates the input, resolves tag ids to the caller's tags,
// computes the effective salary, and persists the new application.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Application, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, userID, input.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	app := &domain.Application{
		UserID:               userID,
		Company:              input.Company,
		Position:             input.Position,
		Status:               input.Status,
		Mode:                 input.Mode,
		DateApplied:          input.DateApplied,
		SalaryExact:          input.SalaryExact,
		SalaryMin:            input.SalaryMin,
		SalaryMax:            input.SalaryMax,
		Source:               input.Source,
		Notes:                input.Notes,
		TailoredResume:       input.TailoredResume,
		TailoredCoverLetter:  input.TailoredCoverLetter,
		InterviewRoundsDone:  input.InterviewRoundsDone,
		InterviewRoundsTotal: input.InterviewRoundsTotal,
		Tags:                 tags,
	}
	app.RecomputeEffectiveSalary()

	var created *domain.Application
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.apps.Create(ctx, app)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.log.InfoContext(ctx, "application created", "application_id", created.ID)

	return created, nil
}
