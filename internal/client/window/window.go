// Package window implements the page-window math used by the list client:
// windows cover several consecutive pages fetched in one request and sliced
// locally per page.
package window

import "github.com/appdex/jobtrack-backend/internal/domain"

// PagesPerWindow is how many pages one fetched window covers.
const PagesPerWindow = 5

// MaxPageSize is the largest client page size whose full window still fits
// the server's per-request row cap. Larger requests would come back
// truncated and break the page arithmetic.
const MaxPageSize = domain.MaxPageSize / PagesPerWindow

// Index returns the zero-based window index containing the given 1-based
// page.
func Index(page, pagesPerWindow int) int {
	if page < 1 {
		page = 1
	}
	if pagesPerWindow < 1 {
		pagesPerWindow = 1
	}
	return (page - 1) / pagesPerWindow
}

// Slice returns the rows of one page out of a window. Pages past the end of
// a partial window yield an empty slice, not an error.
func Slice(rows []domain.Application, page, pageSize, pagesPerWindow int) []domain.Application {
	if page < 1 || pageSize < 1 || pagesPerWindow < 1 {
		return []domain.Application{}
	}

	indexInWindow := (page - 1) % pagesPerWindow
	start := indexInWindow * pageSize
	if start >= len(rows) {
		return []domain.Application{}
	}

	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// TotalPages computes the page count for a total row count, minimum 1.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalCount <= 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}
