package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns applications and tags.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
