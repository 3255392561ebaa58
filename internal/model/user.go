package model

// Role names stored in the user_roles.role column.
const (
	RoleDiner      = "diner"
	RoleFranchisee = "franchisee"
	RoleAdmin      = "admin"
)

// RoleAssignment attaches a role to a user.  ObjectID scopes a
// franchisee role to one franchise; it is zero for diner and admin
// assignments.  A user may hold any number of assignments at once.
type RoleAssignment struct {
	Role     string `json:"role"`
	ObjectID uint64 `json:"objectId,omitempty"`
}

// User mirrors a row of the `users` table together with its resolved
// role assignments.  The password hash stays repository-internal and
// is never serialized into a response payload.
type User struct {
	ID    uint64           `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Roles []RoleAssignment `json:"roles"`

	PasswordHash string `json:"-"`
}

// HasRole reports whether the user holds the named role, regardless of
// object scope.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
