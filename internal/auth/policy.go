package auth

import "github.com/sliceworks/pizza-backend/internal/model"

// CanActOnUser permits a user to act on their own account, and admins
// to act on anyone.
func CanActOnUser(actor *model.User, targetID uint64) bool {
	return actor.ID == targetID || actor.HasRole(model.RoleAdmin)
}

// CanAdminFranchise permits global admins and the franchise's own
// admins.  The franchise must have been enriched: the check reads the
// resolved admin list and is meaningless against a bare row.
func CanAdminFranchise(actor *model.User, f *model.Franchise) bool {
	if actor.HasRole(model.RoleAdmin) {
		return true
	}
	for _, a := range f.Admins {
		if a.ID == actor.ID {
			return true
		}
	}
	return false
}
