package repository

import (
	"context"
	"database/sql"

	"github.com/sliceworks/pizza-backend/internal/model"
)

// MenuRepo persists menu items.  Items are append-only: orders snapshot
// description and price, so nothing ever updates or deletes a row.
type MenuRepo struct{ DB *sql.DB }

func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{DB: db} }

// Add inserts one menu item and populates its generated id.
func (r *MenuRepo) Add(ctx context.Context, item *model.MenuItem) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO menu_items (title, description, image, price) VALUES (?,?,?,?)",
		item.Title, item.Description, item.Image, item.Price)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

// List returns the full menu ordered by id.
func (r *MenuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, title, description, image, price FROM menu_items ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Image, &m.Price); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
