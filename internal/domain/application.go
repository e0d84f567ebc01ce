package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is one tracked job application, exclusively owned by one user.
type Application struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Company  string
	Position string
	Status   ApplicationStatus
	Mode     WorkMode

	// DateApplied is always set (date precision, stored UTC midnight).
	DateApplied time.Time

	// Salary is either an exact value or a min/max range, never both.
	SalaryExact *int
	SalaryMin   *int
	SalaryMax   *int
	// EffectiveSalary is derived from the three fields above and recomputed
	// whenever any of them changes. See EffectiveSalary.
	EffectiveSalary *int

	Source *string
	Notes  *string

	TailoredResume      bool
	TailoredCoverLetter bool

	InterviewRoundsDone  int
	InterviewRoundsTotal *int

	Tags []Tag

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveSalary derives the single comparable salary figure:
// the exact value if set, the midpoint when both bounds are set,
// whichever bound is present otherwise, or nil.
func EffectiveSalary(exact, min, max *int) *int {
	switch {
	case exact != nil:
		v := *exact
		return &v
	case min != nil && max != nil:
		v := (*min + *max) / 2
		return &v
	case min != nil:
		v := *min
		return &v
	case max != nil:
		v := *max
		return &v
	}
	return nil
}

// RecomputeEffectiveSalary refreshes the derived field from the salary fields.
func (a *Application) RecomputeEffectiveSalary() {
	a.EffectiveSalary = EffectiveSalary(a.SalaryExact, a.SalaryMin, a.SalaryMax)
}

// IsArchived reports whether the application sits in a terminal stage.
func (a *Application) IsArchived() bool {
	switch a.Status {
	case StatusRejected, StatusGhosted, StatusWithdrawn:
		return true
	}
	return false
}

// StatusCount is one bucket of the per-status aggregate.
type StatusCount struct {
	Status ApplicationStatus
	Count  int
}
