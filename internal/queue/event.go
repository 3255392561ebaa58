// Package queue defines the domain events published to the message
// broker and the publisher that delivers them.
package queue

// OrderPlacedEvent is published after an order is successfully
// persisted.  It carries enough for downstream consumers (receipts,
// analytics) without another database read.
type OrderPlacedEvent struct {
	OrderID     uint64  `json:"order_id"`
	DinerID     uint64  `json:"diner_id"`
	FranchiseID uint64  `json:"franchise_id"`
	StoreID     uint64  `json:"store_id"`
	ItemCount   int     `json:"item_count"`
	Total       float64 `json:"total"`
	PlacedAt    string  `json:"placed_at"`
}
