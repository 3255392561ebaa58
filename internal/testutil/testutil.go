// Package testutil bootstraps an in-memory SQLite database mirroring
// the production schema, so repository and auth tests run hermetically.
// SQLite and MySQL share the `?` placeholder style and every construct
// the queries rely on (LIKE, LIMIT/OFFSET, LEFT JOIN, IFNULL, REPLACE).
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE user_roles (
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		object_id INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE auth_tokens (
		token_signature TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL
	)`,
	`CREATE TABLE menu_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		image TEXT NOT NULL,
		price REAL NOT NULL
	)`,
	`CREATE TABLE franchises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE stores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		franchise_id INTEGER NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE diner_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		diner_id INTEGER NOT NULL,
		franchise_id INTEGER NOT NULL,
		store_id INTEGER NOT NULL,
		date DATETIME NOT NULL
	)`,
	`CREATE TABLE order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		menu_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		price REAL NOT NULL
	)`,
}

// OpenDB opens a fresh in-memory SQLite database named after the test
// and applies the schema.  The handle is closed via t.Cleanup.  The
// shared cache keeps all pooled connections on the same database.
func OpenDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
