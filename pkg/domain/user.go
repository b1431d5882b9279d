package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the slice of the identity record the gate's session backend
// needs for token claims.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
