package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sliceworks/pizza-backend/internal/model"
)

// FranchiseRepo persists franchises and their stores, and resolves the
// admin lists derived from franchisee role assignments.
type FranchiseRepo struct{ DB *sql.DB }

func NewFranchiseRepo(db *sql.DB) *FranchiseRepo { return &FranchiseRepo{DB: db} }

// List returns one page of franchises matching the name filter plus a
// flag telling whether further pages exist (detected by fetching one
// extra row).  Admin callers get full enrichment per franchise; other
// callers only get the store id/name lists, which bounds query cost.
func (r *FranchiseRepo) List(ctx context.Context, page, pageSize int, nameFilter string, fullDetail bool) ([]*model.Franchise, bool, error) {
	filter := likePattern(nameFilter)
	offset := (page - 1) * pageSize

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name FROM franchises WHERE name LIKE ? ORDER BY name LIMIT ? OFFSET ?",
		filter, pageSize+1, offset)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	franchises := make([]*model.Franchise, 0)
	for rows.Next() {
		f := new(model.Franchise)
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, false, err
		}
		franchises = append(franchises, f)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	more := len(franchises) > pageSize
	if more {
		franchises = franchises[:pageSize]
	}

	for _, f := range franchises {
		if fullDetail {
			if err := r.Enrich(ctx, f); err != nil {
				return nil, false, err
			}
		} else {
			if f.Stores, err = r.storeNames(ctx, f.ID); err != nil {
				return nil, false, err
			}
		}
	}
	return franchises, more, nil
}

// ListForUser returns the franchises where the user holds a franchisee
// role, each fully enriched.  No role rows short-circuits to an empty
// result without touching the franchises table.
func (r *FranchiseRepo) ListForUser(ctx context.Context, userID uint64) ([]*model.Franchise, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT object_id FROM user_roles WHERE user_id=? AND role=?",
		userID, model.RoleFranchisee)
	if err != nil {
		return nil, err
	}
	var ids []any
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	franchises := make([]*model.Franchise, 0)
	if len(ids) == 0 {
		return franchises, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	frows, err := r.DB.QueryContext(ctx,
		"SELECT id, name FROM franchises WHERE id IN ("+placeholders+") ORDER BY id", ids...)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		f := new(model.Franchise)
		if err := frows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		franchises = append(franchises, f)
	}
	if err := frows.Err(); err != nil {
		return nil, err
	}

	for _, f := range franchises {
		if err := r.Enrich(ctx, f); err != nil {
			return nil, err
		}
	}
	return franchises, nil
}

// Get fetches one franchise by id, fully enriched.
func (r *FranchiseRepo) Get(ctx context.Context, id uint64) (*model.Franchise, error) {
	f := new(model.Franchise)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name FROM franchises WHERE id=? LIMIT 1", id).Scan(&f.ID, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFranchiseNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.Enrich(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Enrich populates the franchise in place with its resolved admins and
// its stores annotated with a revenue rollup.  The outer join keeps
// stores with no orders, which report zero revenue.
func (r *FranchiseRepo) Enrich(ctx context.Context, f *model.Franchise) error {
	arows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.name, u.email
		 FROM user_roles ur JOIN users u ON u.id = ur.user_id
		 WHERE ur.role=? AND ur.object_id=?
		 ORDER BY u.id`,
		model.RoleFranchisee, f.ID)
	if err != nil {
		return err
	}
	defer arows.Close()

	f.Admins = make([]model.FranchiseAdmin, 0)
	for arows.Next() {
		var a model.FranchiseAdmin
		if err := arows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return err
		}
		f.Admins = append(f.Admins, a)
	}
	if err := arows.Err(); err != nil {
		return err
	}

	srows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.franchise_id, s.name, IFNULL(SUM(oi.price), 0)
		 FROM stores s
		 LEFT JOIN diner_orders o ON o.store_id = s.id
		 LEFT JOIN order_items oi ON oi.order_id = o.id
		 WHERE s.franchise_id=?
		 GROUP BY s.id, s.franchise_id, s.name
		 ORDER BY s.id`,
		f.ID)
	if err != nil {
		return err
	}
	defer srows.Close()

	f.Stores = make([]model.Store, 0)
	for srows.Next() {
		var s model.Store
		if err := srows.Scan(&s.ID, &s.FranchiseID, &s.Name, &s.TotalRevenue); err != nil {
			return err
		}
		f.Stores = append(f.Stores, s)
	}
	return srows.Err()
}

// Create resolves every admin email to an existing user before writing
// anything, so a bad email can never leave a partial franchise behind.
// Each resolved admin gets a franchisee role scoped to the new id.
func (r *FranchiseRepo) Create(ctx context.Context, name string, adminEmails []string) (*model.Franchise, error) {
	admins := make([]model.FranchiseAdmin, 0, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		var a model.FranchiseAdmin
		err := r.DB.QueryRowContext(ctx,
			"SELECT id, name, email FROM users WHERE email=? LIMIT 1",
			email).Scan(&a.ID, &a.Name, &a.Email)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUser, email)
		}
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO franchises (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, a := range admins {
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role, object_id) VALUES (?,?,?)",
			a.ID, model.RoleFranchisee, id); err != nil {
			return nil, err
		}
	}

	return &model.Franchise{
		ID:     uint64(id),
		Name:   name,
		Admins: admins,
		Stores: make([]model.Store, 0),
	}, nil
}

// Delete cascades in one transaction: stores, franchisee role rows
// scoped to the franchise, then the franchise row.  Any failure rolls
// back all three.
func (r *FranchiseRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM stores WHERE franchise_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM user_roles WHERE role=? AND object_id=?",
		model.RoleFranchisee, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM franchises WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateStore inserts one store under the franchise.
func (r *FranchiseRepo) CreateStore(ctx context.Context, franchiseID uint64, name string) (*model.Store, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stores (franchise_id, name) VALUES (?,?)", franchiseID, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Store{ID: uint64(id), FranchiseID: franchiseID, Name: name}, nil
}

// DeleteStore removes one store; no cascade beyond the row itself.
func (r *FranchiseRepo) DeleteStore(ctx context.Context, franchiseID, storeID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM stores WHERE id=? AND franchise_id=?", storeID, franchiseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStoreNotFound
	}
	return nil
}

// storeNames is the cheap, role-limited store listing: id and name
// only, no revenue rollup.
func (r *FranchiseRepo) storeNames(ctx context.Context, franchiseID uint64) ([]model.Store, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, franchise_id, name FROM stores WHERE franchise_id=? ORDER BY id",
		franchiseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]model.Store, 0)
	for rows.Next() {
		var s model.Store
		if err := rows.Scan(&s.ID, &s.FranchiseID, &s.Name); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
