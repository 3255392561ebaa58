package model

// FranchiseAdmin is the sanitized view of a user holding a franchisee
// role for a franchise.  Only identity fields are exposed.
type FranchiseAdmin struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Franchise mirrors a row of the `franchises` table.  Admins and
// Stores are populated by the repository's enrichment queries; an
// unenriched franchise carries nil slices and must not be used for
// authorization checks.
type Franchise struct {
	ID     uint64           `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins,omitempty"`
	Stores []Store          `json:"stores"`
}

// Store mirrors a row of the `stores` table.  TotalRevenue is derived:
// the sum of order-item prices over every order placed at the store,
// zero when no orders exist.
type Store struct {
	ID           uint64  `json:"id"`
	FranchiseID  uint64  `json:"-"`
	Name         string  `json:"name"`
	TotalRevenue float64 `json:"totalRevenue"`
}
