package application

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// sortColumn maps wire-level sort names onto SQL columns. The filter is
// normalized before it reaches the repo, so unknown values cannot occur, but
// the default case keeps the mapping total.
func sortColumn(sortBy string) string {
	switch sortBy {
	case domain.SortByCompany:
		return "a.company"
	case domain.SortByPosition:
		return "a.position"
	case domain.SortByStatus:
		return "a.status"
	case domain.SortByEffectiveSalary:
		return "a.effective_salary"
	case domain.SortByCreatedAt:
		return "a.created_at"
	case domain.SortByUpdatedAt:
		return "a.updated_at"
	default:
		return "a.date_applied"
	}
}

// predicate builds the AND-composed WHERE clause shared by the page query
// and the COUNT query. Every listing is owner-scoped; all other conditions
// are added only when the filter carries them.
func predicate(userID any, f domain.ApplicationFilter) sq.And {
	and := sq.And{sq.Eq{"a.user_id": userID}}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		and = append(and, sq.Eq{"a.status": statuses})
	}

	if len(f.Modes) > 0 {
		modes := make([]string, len(f.Modes))
		for i, m := range f.Modes {
			modes[i] = string(m)
		}
		and = append(and, sq.Eq{"a.mode": modes})
	}

	if f.DateFrom != nil {
		and = append(and, sq.GtOrEq{"a.date_applied": *f.DateFrom})
	}
	if f.DateTo != nil {
		and = append(and, sq.LtOrEq{"a.date_applied": *f.DateTo})
	}

	if f.SalaryMin != nil {
		and = append(and, sq.GtOrEq{"a.effective_salary": *f.SalaryMin})
	}
	if f.SalaryMax != nil {
		and = append(and, sq.LtOrEq{"a.effective_salary": *f.SalaryMax})
	}

	if len(f.TagNames) > 0 {
		and = append(and, sq.Expr(
			`EXISTS (
				SELECT 1 FROM application_tags at
				JOIN tags t ON t.id = at.tag_id
				WHERE at.application_id = a.id AND t.name = ANY(?)
			)`, f.TagNames))
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		and = append(and, sq.Or{
			sq.ILike{"a.company": pattern},
			sq.ILike{"a.position": pattern},
			sq.ILike{"a.source": pattern},
			sq.ILike{"a.notes": pattern},
		})
	}

	return and
}
