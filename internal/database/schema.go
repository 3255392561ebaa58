package database

import (
	"context"
	"database/sql"
)

// schema lists every table the service needs.  Statements are
// idempotent so startup against an already-provisioned database is a
// no-op.  Deliberately no migration tooling: the demo schema is fixed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id INT NOT NULL,
		role VARCHAR(32) NOT NULL,
		object_id INT NOT NULL DEFAULT 0,
		INDEX idx_user_roles_user (user_id),
		INDEX idx_user_roles_object (role, object_id)
	)`,
	`CREATE TABLE IF NOT EXISTS auth_tokens (
		token_signature VARCHAR(512) PRIMARY KEY,
		user_id INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description VARCHAR(255) NOT NULL,
		image VARCHAR(1024) NOT NULL,
		price DECIMAL(10,4) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS franchises (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id INT AUTO_INCREMENT PRIMARY KEY,
		franchise_id INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		INDEX idx_stores_franchise (franchise_id)
	)`,
	`CREATE TABLE IF NOT EXISTS diner_orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		diner_id INT NOT NULL,
		franchise_id INT NOT NULL,
		store_id INT NOT NULL,
		date DATETIME NOT NULL,
		INDEX idx_diner_orders_diner (diner_id),
		INDEX idx_diner_orders_store (store_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		menu_id INT NOT NULL,
		description VARCHAR(255) NOT NULL,
		price DECIMAL(10,4) NOT NULL,
		INDEX idx_order_items_order (order_id)
	)`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
