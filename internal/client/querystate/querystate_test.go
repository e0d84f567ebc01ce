package querystate

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdex/jobtrack-backend/internal/domain"
)

func ptrInt(n int) *int { return &n }

func ptrDate(s string) *time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	s := QueryState{
		Statuses:  []domain.ApplicationStatus{domain.StatusApplied, domain.StatusOffer},
		Modes:     []domain.WorkMode{domain.ModeRemote},
		TagNames:  []string{"golang", "backend"},
		DateFrom:  ptrDate("2026-01-01"),
		DateTo:    ptrDate("2026-06-30"),
		Search:    "platform",
		SalaryMin: ptrInt(90000),
		SalaryMax: ptrInt(180000),
		SortBy:    domain.SortByCompany,
		SortDir:   domain.SortAsc,
		Page:      3,
		PageSize:  25,
	}

	got := Decode(s.Encode())
	assert.Equal(t, s, got)
}

func TestEncodeDecode_RoundTripThroughRawQuery(t *testing.T) {
	t.Parallel()

	s := Default()
	s.Search = "search & rescue"
	s.TagNames = []string{"c++", "remote ok"}

	// Serialize to an actual query string and back, covering URL escaping.
	parsed, err := url.ParseQuery(s.Encode().Encode())
	require.NoError(t, err)

	assert.Equal(t, s, Decode(parsed))
}

func TestEncode_DefaultsOmitted(t *testing.T) {
	t.Parallel()

	v := Default().Encode()
	assert.Empty(t, v, "default state encodes to an empty query")
}

func TestDecode_Defaults(t *testing.T) {
	t.Parallel()

	s := Decode(url.Values{})

	assert.Equal(t, domain.SortByDateApplied, s.SortBy)
	assert.Equal(t, domain.SortDesc, s.SortDir)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 10, s.PageSize)
	assert.Empty(t, s.Statuses)
	assert.Nil(t, s.DateFrom)
}

func TestDecode_MalformedValuesDegrade(t *testing.T) {
	t.Parallel()

	v := url.Values{
		"statuses":     {"Applied", "NotAStatus"},
		"modes":        {"Underwater"},
		"dateFrom":     {"yesterday"},
		"salaryMin":    {"lots"},
		"sortBy":       {"'; DROP TABLE applications;--"},
		"sortDir":      {"sideways"},
		"page":         {"-2"},
		"itemsPerPage": {"zero"},
	}

	s := Decode(v)

	assert.Equal(t, []domain.ApplicationStatus{domain.StatusApplied}, s.Statuses)
	assert.Empty(t, s.Modes)
	assert.Nil(t, s.DateFrom)
	assert.Nil(t, s.SalaryMin)
	assert.Equal(t, domain.SortByDateApplied, s.SortBy)
	assert.Equal(t, domain.SortDesc, s.SortDir)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 10, s.PageSize)
}

func TestKey_OrderInsensitiveForSets(t *testing.T) {
	t.Parallel()

	a := Default()
	a.Statuses = []domain.ApplicationStatus{domain.StatusApplied, domain.StatusOffer}
	a.TagNames = []string{"golang", "backend"}

	b := Default()
	b.Statuses = []domain.ApplicationStatus{domain.StatusOffer, domain.StatusApplied}
	b.TagNames = []string{"backend", "golang"}

	assert.Equal(t, a.Key(), b.Key())
}

func TestKey_SortDirDistinguishes(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	b.SortDir = domain.SortAsc

	assert.NotEqual(t, a.Key(), b.Key())
}

func TestKey_PageExcluded(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	b.Page = 4

	// Pages within one window share a cache entry.
	assert.Equal(t, a.Key(), b.Key())
}

func TestKey_FiltersDistinguish(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	b.Search = "initech"

	c := Default()
	c.SalaryMin = ptrInt(0)

	assert.NotEqual(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key(), "a set zero bound differs from an unset one")
}
