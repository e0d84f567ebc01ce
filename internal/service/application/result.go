package application

import "github.com/appdex/jobtrack-backend/internal/domain"

// ListResult is one page of applications plus the total count over the same
// filter, which the client needs to compute total pages.
type ListResult struct {
	Items []domain.Application
	Total int
}

// BulkStatusResult reports how many rows a bulk status update touched.
// Requested ids not owned by the caller are excluded, not errors.
type BulkStatusResult struct {
	Updated int64
}
