package model

import "time"

// MenuItem mirrors a row of the `menu_items` table.  Menu items are
// immutable once created; orders copy title and price at order time.
type MenuItem struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

// OrderItem mirrors a row of the `order_items` table.  Description and
// Price are snapshots taken when the order was placed, decoupled from
// any later menu change.
type OrderItem struct {
	ID          uint64  `json:"id"`
	OrderID     uint64  `json:"-"`
	MenuID      uint64  `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Order mirrors a row of the `diner_orders` table with its item rows
// nested.  Orders are created atomically with their items and never
// mutated afterwards.
type Order struct {
	ID          uint64      `json:"id"`
	DinerID     uint64      `json:"-"`
	FranchiseID uint64      `json:"franchiseId"`
	StoreID     uint64      `json:"storeId"`
	Date        time.Time   `json:"date"`
	Items       []OrderItem `json:"items"`
}
