package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionRecord is the stored server-side session backing a refresh
// token. The refresh token itself is opaque and stored hashed.
type SessionRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt *time.Time
	RevokedAt  *time.Time
}

// IsValid reports whether the session can still be refreshed.
func (s *SessionRecord) IsValid() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}

// TokenPair is the result of issuing or refreshing a session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	ExpiresAt    time.Time
}
