// Package querystate encodes the list query shape to and from URL values,
// keeping filter, sort, and pagination state shareable as a link. Decoding
// is tolerant: malformed values degrade to defaults instead of erroring.
package querystate

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

// Defaults applied when a field is absent or malformed.
const (
	DefaultSortBy   = domain.SortByDateApplied
	DefaultSortDir  = domain.SortDesc
	DefaultPage     = 1
	DefaultPageSize = 10
)

const dateLayout = "2006-01-02"

// QueryState is the full client-side query shape: filters, sort, and
// pagination. Two value-equal states address the same cached window.
type QueryState struct {
	Statuses  []domain.ApplicationStatus
	Modes     []domain.WorkMode
	TagNames  []string
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SalaryMin *int
	SalaryMax *int

	SortBy  string
	SortDir string

	Page     int
	PageSize int
}

// Default returns the empty-filter state with default sort and pagination.
func Default() QueryState {
	return QueryState{
		SortBy:   DefaultSortBy,
		SortDir:  DefaultSortDir,
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// Encode writes the state to URL values using repeated keys for the set
// filters. Fields holding their default are omitted so URLs stay short.
func (s QueryState) Encode() url.Values {
	v := url.Values{}

	for _, st := range s.Statuses {
		v.Add("statuses", st.String())
	}
	for _, m := range s.Modes {
		v.Add("modes", m.String())
	}
	for _, tn := range s.TagNames {
		v.Add("tagNames", tn)
	}
	if s.DateFrom != nil {
		v.Set("dateFrom", s.DateFrom.Format(dateLayout))
	}
	if s.DateTo != nil {
		v.Set("dateTo", s.DateTo.Format(dateLayout))
	}
	if s.Search != "" {
		v.Set("q", s.Search)
	}
	if s.SalaryMin != nil {
		v.Set("salaryMin", strconv.Itoa(*s.SalaryMin))
	}
	if s.SalaryMax != nil {
		v.Set("salaryMax", strconv.Itoa(*s.SalaryMax))
	}
	if s.SortBy != "" && s.SortBy != DefaultSortBy {
		v.Set("sortBy", s.SortBy)
	}
	if s.SortDir != "" && s.SortDir != DefaultSortDir {
		v.Set("sortDir", s.SortDir)
	}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 && s.PageSize != DefaultPageSize {
		v.Set("itemsPerPage", strconv.Itoa(s.PageSize))
	}

	return v
}

// Decode reads a state from URL values. Unknown enum members, unparseable
// dates, and malformed numbers are dropped; absent sort and pagination
// fields take defaults.
func Decode(v url.Values) QueryState {
	s := Default()

	for _, raw := range v["statuses"] {
		if st := domain.ApplicationStatus(raw); st.IsValid() {
			s.Statuses = append(s.Statuses, st)
		}
	}
	for _, raw := range v["modes"] {
		if m := domain.WorkMode(raw); m.IsValid() {
			s.Modes = append(s.Modes, m)
		}
	}
	s.TagNames = v["tagNames"]

	if t, err := time.Parse(dateLayout, v.Get("dateFrom")); err == nil {
		s.DateFrom = &t
	}
	if t, err := time.Parse(dateLayout, v.Get("dateTo")); err == nil {
		s.DateTo = &t
	}
	s.Search = v.Get("q")
	if n, err := strconv.Atoi(v.Get("salaryMin")); err == nil {
		s.SalaryMin = &n
	}
	if n, err := strconv.Atoi(v.Get("salaryMax")); err == nil {
		s.SalaryMax = &n
	}

	switch v.Get("sortBy") {
	case domain.SortByCompany, domain.SortByPosition, domain.SortByStatus,
		domain.SortByDateApplied, domain.SortByEffectiveSalary,
		domain.SortByCreatedAt, domain.SortByUpdatedAt:
		s.SortBy = v.Get("sortBy")
	}
	switch v.Get("sortDir") {
	case domain.SortAsc, domain.SortDesc:
		s.SortDir = v.Get("sortDir")
	}

	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		s.Page = n
	}
	if n, err := strconv.Atoi(v.Get("itemsPerPage")); err == nil && n >= 1 {
		s.PageSize = n
	}

	return s
}

// Key returns the canonical cache-key string for the state. Set-valued
// filters are sorted so that order-insensitive equal states share a key.
// The page number is excluded: all pages of one window share the entry,
// keyed by window index instead (appended by the cache caller).
func (s QueryState) Key() string {
	var b strings.Builder

	writeSet := func(name string, vals []string) {
		sorted := make([]string, len(vals))
		copy(sorted, vals)
		sort.Strings(sorted)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(sorted, ","))
		b.WriteByte(';')
	}

	statuses := make([]string, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		statuses = append(statuses, st.String())
	}
	modes := make([]string, 0, len(s.Modes))
	for _, m := range s.Modes {
		modes = append(modes, m.String())
	}

	writeSet("statuses", statuses)
	writeSet("modes", modes)
	writeSet("tags", s.TagNames)

	b.WriteString("from=")
	if s.DateFrom != nil {
		b.WriteString(s.DateFrom.Format(dateLayout))
	}
	b.WriteString(";to=")
	if s.DateTo != nil {
		b.WriteString(s.DateTo.Format(dateLayout))
	}
	b.WriteString(";q=")
	b.WriteString(s.Search)
	b.WriteString(";salMin=")
	if s.SalaryMin != nil {
		b.WriteString(strconv.Itoa(*s.SalaryMin))
	}
	b.WriteString(";salMax=")
	if s.SalaryMax != nil {
		b.WriteString(strconv.Itoa(*s.SalaryMax))
	}
	b.WriteString(";sort=")
	b.WriteString(s.SortBy)
	b.WriteByte(':')
	b.WriteString(s.SortDir)
	b.WriteString(";size=")
	b.WriteString(strconv.Itoa(s.PageSize))

	return b.String()
}
