package domain

import "time"

// Sortable application columns. SortColumn values travel on the wire in the
// sortBy query parameter and map to SQL columns in the postgres adapter.
const (
	SortByCompany         = "company"
	SortByPosition        = "position"
	SortByStatus          = "status"
	SortByDateApplied     = "dateApplied"
	SortByEffectiveSalary = "effectiveSalary"
	SortByCreatedAt       = "createdAt"
	SortByUpdatedAt       = "updatedAt"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ApplicationFilter carries every parameter that shapes a paginated
// application listing. All predicate fields are AND-ed together; empty
// slices and nil pointers mean "no constraint".
type ApplicationFilter struct {
	Statuses []ApplicationStatus
	Modes    []WorkMode
	TagNames []string

	// DateFrom/DateTo bound date_applied inclusively.
	DateFrom *time.Time
	DateTo   *time.Time

	// Search matches company, position, source and notes case-insensitively
	// as OR-ed substring conditions.
	Search string

	// SalaryMin/SalaryMax bound effective_salary inclusively.
	SalaryMin *int
	SalaryMax *int

	// SortBy is one of the SortBy* constants; SortDir is "asc" or "desc".
	SortBy  string
	SortDir string

	// Page is 1-based. PageSize is clamped server-side.
	Page     int
	PageSize int
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize applies defaults and clamps pagination and sort parameters so a
// malformed request degrades to a safe query instead of an error.
func (f *ApplicationFilter) Normalize() {
	switch f.SortBy {
	case SortByCompany, SortByPosition, SortByStatus, SortByDateApplied,
		SortByEffectiveSalary, SortByCreatedAt, SortByUpdatedAt:
	default:
		f.SortBy = SortByDateApplied
	}

	switch f.SortDir {
	case SortAsc, SortDesc:
	default:
		f.SortDir = SortDesc
	}

	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset returns the row offset implied by Page and PageSize.
func (f *ApplicationFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
