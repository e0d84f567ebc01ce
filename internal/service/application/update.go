package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

// Update replaces every mutable field of an application (full edit-form
// save). Existence and ownership are checked before any write.
func (s *Service) Update(ctx context.Context, appID uuid.UUID, input CreateInput) (*domain.Application, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, userID, input.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	app.Company = input.Company
	app.Position = input.Position
	app.Status = input.Status
	app.Mode = input.Mode
	app.DateApplied = input.DateApplied
	app.SalaryExact = input.SalaryExact
	app.SalaryMin = input.SalaryMin
	app.SalaryMax = input.SalaryMax
	app.Source = input.Source
	app.Notes = input.Notes
	app.TailoredResume = input.TailoredResume
	app.TailoredCoverLetter = input.TailoredCoverLetter
	app.InterviewRoundsDone = input.InterviewRoundsDone
	app.InterviewRoundsTotal = input.InterviewRoundsTotal
	app.Tags = tags
	app.RecomputeEffectiveSalary()

	var updated *domain.Application
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.apps.Update(ctx, app)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	return updated, nil
}

// Patch applies a partial update: absent fields keep their current values
// rather than being nulled. The effective salary is recomputed only when a
// salary field is part of the patch.
func (s *Service) Patch(ctx context.Context, appID uuid.UUID, input PatchInput) (*domain.Application, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	if input.Company != nil {
		app.Company = *input.Company
	}
	if input.Position != nil {
		app.Position = *input.Position
	}
	if input.Status != nil {
		app.Status = *input.Status
	}
	if input.Mode != nil {
		app.Mode = *input.Mode
	}
	if input.DateApplied != nil {
		app.DateApplied = *input.DateApplied
	}
	if input.SalarySet {
		app.SalaryExact = input.SalaryExact
		app.SalaryMin = input.SalaryMin
		app.SalaryMax = input.SalaryMax
		app.RecomputeEffectiveSalary()
	}
	if input.Source != nil {
		app.Source = input.Source
	}
	if input.Notes != nil {
		app.Notes = input.Notes
	}
	if input.TailoredResume != nil {
		app.TailoredResume = *input.TailoredResume
	}
	if input.TailoredCoverLetter != nil {
		app.TailoredCoverLetter = *input.TailoredCoverLetter
	}
	if input.InterviewRoundsDone != nil {
		app.InterviewRoundsDone = *input.InterviewRoundsDone
	}
	if input.InterviewRoundsTotal != nil {
		app.InterviewRoundsTotal = input.InterviewRoundsTotal
	}

	currentTags := app.Tags
	if input.TagIDs != nil {
		tags, err := s.resolveTags(ctx, userID, input.TagIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve tags: %w", err)
		}
		app.Tags = tags
	} else {
		// nil Tags tells the repo to leave the links untouched.
		app.Tags = nil
	}

	var updated *domain.Application
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.apps.Update(ctx, app)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("patch application: %w", err)
	}

	if updated.Tags == nil {
		updated.Tags = currentTags
	}

	return updated, nil
}
