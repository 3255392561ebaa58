package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sliceworks/pizza-backend/internal/model"
)

// OrderRepo persists diner orders and their item rows.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// ListForDiner returns one page of the diner's orders, oldest first,
// each with its item rows nested.  A page past the end yields an empty
// slice, not an error.
func (r *OrderRepo) ListForDiner(ctx context.Context, dinerID uint64, page, pageSize int) ([]model.Order, error) {
	offset := (page - 1) * pageSize
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, diner_id, franchise_id, store_id, date
		 FROM diner_orders WHERE diner_id=? ORDER BY id LIMIT ? OFFSET ?`,
		dinerID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.DinerID, &o.FranchiseID, &o.StoreID, &o.Date); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Item fan-out: one fetch per order, attached by index so parent
	// association can never misalign.
	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// Place writes the order row and all item rows in one transaction.
// Every referenced menu item must exist; a miss fails the whole order
// with ErrMenuItemNotFound and the rollback leaves nothing observable.
func (r *OrderRepo) Place(ctx context.Context, dinerID uint64, draft *model.Order) (*model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	// Rollback is a no-op once the transaction committed.
	defer func() { _ = tx.Rollback() }()

	order := model.Order{
		DinerID:     dinerID,
		FranchiseID: draft.FranchiseID,
		StoreID:     draft.StoreID,
		Date:        time.Now().UTC().Truncate(time.Second),
		Items:       make([]model.OrderItem, 0, len(draft.Items)),
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO diner_orders (diner_id, franchise_id, store_id, date) VALUES (?,?,?,?)",
		order.DinerID, order.FranchiseID, order.StoreID, order.Date)
	if err != nil {
		return nil, err
	}
	oid, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	order.ID = uint64(oid)

	for _, item := range draft.Items {
		// Resolve the canonical menu id before the insert; description
		// and price are snapshots of the submitted draft.
		var menuID uint64
		err = tx.QueryRowContext(ctx,
			"SELECT id FROM menu_items WHERE id=? LIMIT 1", item.MenuID).Scan(&menuID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		if err != nil {
			return nil, err
		}

		ires, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, menu_id, description, price) VALUES (?,?,?,?)",
			order.ID, menuID, item.Description, item.Price)
		if err != nil {
			return nil, err
		}
		iid, err := ires.LastInsertId()
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, model.OrderItem{
			ID:          uint64(iid),
			OrderID:     order.ID,
			MenuID:      menuID,
			Description: item.Description,
			Price:       item.Price,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, menu_id, description, price FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
