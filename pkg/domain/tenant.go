package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gym represents a tenant organization.
type Gym struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// RoleAssignment is one role row for a user within their gym. The data
// model is expected to hold at most one active row per user per gym; the
// gate does not enforce that.
type RoleAssignment struct {
	Role   RoleName
	Active bool
}

// TenantProfile is a user's gym association plus their role rows, as
// fetched in a single query. It lives for one request only and is never
// cached across requests.
type TenantProfile struct {
	GymID       *uuid.UUID
	Assignments []RoleAssignment
}

// EffectiveTenantState is the reduction of a TenantProfile that the
// routing gate actually consumes.
//
// HasGym holds when the gym link is present and at least one role row is
// active. Inactive marks a user whose gym link survived but whose role
// rows were all deactivated.
type EffectiveTenantState struct {
	HasGym     bool
	ActiveRole *RoleName
	Inactive   bool
}

// Reduce computes the effective tenant state from a profile. The first
// active role row wins when several are active.
func (p TenantProfile) Reduce() EffectiveTenantState {
	var state EffectiveTenantState
	if p.GymID == nil {
		return state
	}
	for i := range p.Assignments {
		if p.Assignments[i].Active {
			role := p.Assignments[i].Role
			state.HasGym = true
			state.ActiveRole = &role
			return state
		}
	}
	state.Inactive = true
	return state
}

// IsMember reports whether the active role is the member role.
func (s EffectiveTenantState) IsMember() bool {
	return s.ActiveRole != nil && *s.ActiveRole == RoleMember
}
