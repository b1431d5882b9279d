package domain

import "github.com/google/uuid"

// Session is the per-request authenticated identity. It is derived from
// cookies on every request and never persisted by the gate.
type Session struct {
	UserID        uuid.UUID
	Email         string
	Authenticated bool
}

// Anonymous is the session used for any request whose cookies could not
// be resolved to an identity.
var Anonymous = Session{}
