// Package repository contains the data-access layer, separated from the
// HTTP handlers.  Every repository is a thin struct over *sql.DB; the
// sentinel errors below let handlers translate failures into status
// codes with errors.Is without inspecting driver errors.
package repository

import "errors"

// ErrInvalidCredentials is returned when an email does not exist or the
// submitted password does not match the stored hash.  The two cases are
// deliberately indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrUnknownUser is returned when an email submitted as a franchise
// admin does not resolve to an existing user.  The offending email is
// wrapped alongside it.
var ErrUnknownUser = errors.New("unknown user")

// ErrMenuItemNotFound is returned when an order references a menu item
// that does not exist.  The whole order fails; no partial order is
// written.
var ErrMenuItemNotFound = errors.New("menu item not found")

// ErrFranchiseNotFound is returned when a franchise id does not resolve
// to a row.
var ErrFranchiseNotFound = errors.New("franchise not found")

// ErrStoreNotFound is returned when deleting a store that does not
// exist under the given franchise.
var ErrStoreNotFound = errors.New("store not found")
