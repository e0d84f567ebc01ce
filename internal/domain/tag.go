package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Tag is a user-defined label attached to applications (M2M).
// Names are unique per owner; tags are created on first use and never renamed.
type Tag struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
}

const maxTagNameLen = 40

var tagNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 .+#/-]*$`)

// ValidateTagName checks the restricted tag character set and length.
func ValidateTagName(name string) error {
	if name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if len(name) > maxTagNameLen {
		return NewValidationError("name", "must be at most 40 characters")
	}
	if !tagNameRe.MatchString(name) {
		return NewValidationError("name", "contains invalid characters")
	}
	return nil
}
