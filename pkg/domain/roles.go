package domain

// RoleName identifies a user's role within a gym.
type RoleName string

const (
	RoleMember  RoleName = "member"
	RoleTrainer RoleName = "trainer"
	RoleStaff   RoleName = "staff"
	RoleManager RoleName = "manager"
	RoleOwner   RoleName = "owner"
)

// roleLevels defines the total order over role names. Higher wins.
var roleLevels = map[RoleName]int{
	RoleMember:  1,
	RoleTrainer: 2,
	RoleStaff:   3,
	RoleManager: 4,
	RoleOwner:   5,
}

// Level returns the role's position in the role order, or 0 for an
// unknown role.
func (r RoleName) Level() int {
	return roleLevels[r]
}

// IsValid reports whether the role name is one of the known roles.
func (r RoleName) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// CanAssign reports whether a holder of this role may grant the other
// role. A role can only assign roles strictly below its own level.
// The routing gate never calls this; it is shared with the
// permission-check layer so both sides agree on the ordering.
func (r RoleName) CanAssign(other RoleName) bool {
	return r.Level() > other.Level() && other.IsValid()
}
