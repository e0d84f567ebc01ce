// Package selection tracks multi-select state over application ids. The
// selection is independent of pagination: rows stay selected while the user
// navigates between pages, and only an explicit Clear or a completed bulk
// action empties it.
package selection

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// PageState summarizes how the current page relates to the selection.
type PageState int

const (
	PageNone PageState = iota
	PageSome
	PageAll
)

// Tracker is a set of selected application ids. It is not safe for
// concurrent use; the client loop owns it.
type Tracker struct {
	ids mapset.Set[uuid.UUID]
}

func NewTracker() *Tracker {
	return &Tracker{ids: mapset.NewThreadUnsafeSet[uuid.UUID]()}
}

// Toggle flips the selection state of one id and reports whether it is
// selected afterwards.
func (t *Tracker) Toggle(id uuid.UUID) bool {
	if t.ids.Contains(id) {
		t.ids.Remove(id)
		return false
	}
	t.ids.Add(id)
	return true
}

func (t *Tracker) IsSelected(id uuid.UUID) bool { return t.ids.Contains(id) }

func (t *Tracker) Count() int { return t.ids.Cardinality() }

// Selected returns the selected ids in unspecified order.
func (t *Tracker) Selected() []uuid.UUID { return t.ids.ToSlice() }

func (t *Tracker) Clear() { t.ids.Clear() }

// SelectPage adds every row on the page to the selection.
func (t *Tracker) SelectPage(rows []domain.Application) {
	for _, app := range rows {
		t.ids.Add(app.ID)
	}
}

// DeselectPage removes every row on the page from the selection. Rows
// selected on other pages stay selected.
func (t *Tracker) DeselectPage(rows []domain.Application) {
	for _, app := range rows {
		t.ids.Remove(app.ID)
	}
}

// PageStateOf reports whether all, some, or none of the page's rows are
// selected. An empty page is PageNone.
func (t *Tracker) PageStateOf(rows []domain.Application) PageState {
	if len(rows) == 0 {
		return PageNone
	}
	selected := 0
	for _, app := range rows {
		if t.ids.Contains(app.ID) {
			selected++
		}
	}
	switch selected {
	case 0:
		return PageNone
	case len(rows):
		return PageAll
	default:
		return PageSome
	}
}

// TogglePage selects the whole page unless it is already fully selected,
// in which case it deselects it. This is the header-checkbox behavior.
func (t *Tracker) TogglePage(rows []domain.Application) {
	if t.PageStateOf(rows) == PageAll {
		t.DeselectPage(rows)
		return
	}
	t.SelectPage(rows)
}

// Prune drops selected ids that are no longer present in the given rows.
// Callers use it after a refetch when rows may have been deleted.
func (t *Tracker) Prune(known []domain.Application) {
	keep := mapset.NewThreadUnsafeSetWithSize[uuid.UUID](len(known))
	for _, app := range known {
		keep.Add(app.ID)
	}
	t.ids = t.ids.Intersect(keep)
}
