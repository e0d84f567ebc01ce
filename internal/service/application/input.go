package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// ListInput carries filtering/sorting/pagination parameters for List.
// Zero values mean "use defaults"; the service normalizes and clamps.
type ListInput struct {
	Statuses  []domain.ApplicationStatus
	Modes     []domain.WorkMode
	TagNames  []string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SalaryMin *int
	SalaryMax *int
	SortBy    string
	SortDir   string
	Page      int
	PageSize  int
}

// CreateInput carries the fields of a new application.
type CreateInput struct {
	Company     string
	Position    string
	Status      domain.ApplicationStatus
	Mode        domain.WorkMode
	DateApplied time.Time

	SalaryExact *int
	SalaryMin   *int
	SalaryMax   *int

	Source *string
	Notes  *string

	TailoredResume      bool
	TailoredCoverLetter bool

	InterviewRoundsDone  int
	InterviewRoundsTotal *int

	TagIDs []uuid.UUID
}

// Validate checks enum membership, required fields, and the salary rules:
// an exact salary excludes a range, and min must not exceed max. A lone
// salaryMax (or salaryMin) is accepted.
func (in CreateInput) Validate() error {
	var errs []domain.FieldError

	if in.Company == "" {
		errs = append(errs, domain.FieldError{Field: "company", Message: "must not be empty"})
	}
	if in.Position == "" {
		errs = append(errs, domain.FieldError{Field: "position", Message: "must not be empty"})
	}
	if !in.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if !in.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "unknown mode"})
	}
	if in.DateApplied.IsZero() {
		errs = append(errs, domain.FieldError{Field: "dateApplied", Message: "is required"})
	}

	errs = append(errs, validateSalary(in.SalaryExact, in.SalaryMin, in.SalaryMax)...)

	if in.InterviewRoundsDone < 0 {
		errs = append(errs, domain.FieldError{Field: "interviewRoundsDone", Message: "must not be negative"})
	}
	if in.InterviewRoundsTotal != nil && *in.InterviewRoundsTotal < 0 {
		errs = append(errs, domain.FieldError{Field: "interviewRoundsTotal", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// PatchInput carries a partial update: nil pointers mean "leave unchanged".
// The three salary pointers are applied together when any of them is set, so
// a patch can move between exact and range representations atomically.
type PatchInput struct {
	Company     *string
	Position    *string
	Status      *domain.ApplicationStatus
	Mode        *domain.WorkMode
	DateApplied *time.Time

	SalarySet   bool
	SalaryExact *int
	SalaryMin   *int
	SalaryMax   *int

	Source *string
	Notes  *string

	TailoredResume      *bool
	TailoredCoverLetter *bool

	InterviewRoundsDone  *int
	InterviewRoundsTotal *int

	// TagIDs replaces the tag set when non-nil.
	TagIDs []uuid.UUID
}

// Validate checks the fields that are present.
func (in PatchInput) Validate() error {
	var errs []domain.FieldError

	if in.Company != nil && *in.Company == "" {
		errs = append(errs, domain.FieldError{Field: "company", Message: "must not be empty"})
	}
	if in.Position != nil && *in.Position == "" {
		errs = append(errs, domain.FieldError{Field: "position", Message: "must not be empty"})
	}
	if in.Status != nil && !in.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}
	if in.Mode != nil && !in.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Message: "unknown mode"})
	}
	if in.DateApplied != nil && in.DateApplied.IsZero() {
		errs = append(errs, domain.FieldError{Field: "dateApplied", Message: "must be a valid date"})
	}

	if in.SalarySet {
		errs = append(errs, validateSalary(in.SalaryExact, in.SalaryMin, in.SalaryMax)...)
	}

	if in.InterviewRoundsDone != nil && *in.InterviewRoundsDone < 0 {
		errs = append(errs, domain.FieldError{Field: "interviewRoundsDone", Message: "must not be negative"})
	}
	if in.InterviewRoundsTotal != nil && *in.InterviewRoundsTotal < 0 {
		errs = append(errs, domain.FieldError{Field: "interviewRoundsTotal", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// BulkStatusInput carries a bulk status update request.
type BulkStatusInput struct {
	ApplicationIDs []uuid.UUID
	Status         domain.ApplicationStatus
}

// Validate requires a non-empty id list and a valid target status.
func (in BulkStatusInput) Validate() error {
	var errs []domain.FieldError

	if len(in.ApplicationIDs) == 0 {
		errs = append(errs, domain.FieldError{Field: "applicationIds", Message: "must not be empty"})
	}
	if !in.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// validateSalary enforces mutual exclusivity of exact vs range and the
// min<=max ordering.
func validateSalary(exact, min, max *int) []domain.FieldError {
	var errs []domain.FieldError

	if exact != nil && (min != nil || max != nil) {
		errs = append(errs, domain.FieldError{
			Field:   "salaryExact",
			Message: "cannot be combined with salaryMin/salaryMax",
		})
	}
	if min != nil && max != nil && *min > *max {
		errs = append(errs, domain.FieldError{
			Field:   "salaryMin",
			Message: "must not exceed salaryMax",
		})
	}
	for _, f := range []struct {
		name string
		v    *int
	}{{"salaryExact", exact}, {"salaryMin", min}, {"salaryMax", max}} {
		if f.v != nil && *f.v < 0 {
			errs = append(errs, domain.FieldError{Field: f.name, Message: "must not be negative"})
		}
	}

	return errs
}

// dedupeIDs removes duplicate ids preserving first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
