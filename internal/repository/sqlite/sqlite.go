// Package sqlite implements the repository interfaces over SQLite.
//
// modernc.org/sqlite is a pure-Go translation of the SQLite sources, so
// there is no CGo and no C toolchain in the build. The database is a
// single file (or ":memory:" in tests).
//
// The uniqueness invariants of the user collection live HERE, as indexes,
// not in application code: two concurrent registrations for the same email
// or two concurrent first-time OAuth callbacks for the same identity race
// at the INSERT, and the loser gets a constraint error instead of creating
// a second record. Check-then-insert in the service layer alone could not
// give that guarantee.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql at init time.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces as methods.
type DB struct {
	conn *sql.DB
}

// New opens the database, configures it, and runs migrations.
//
// dbPath is a file path, or ":memory:" for an in-memory database that
// vanishes on Close (used in tests).
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// database/sql hands ":memory:" a fresh, empty database per pooled
	// connection. Pinning the pool to one connection keeps tests on a
	// single shared database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path fails here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight; the default
	// journal mode locks the whole file.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	// Local accounts have provider = ''. The email uniqueness index is
	// partial on purpose: it guards local registration, while a federated
	// account is allowed to share an email with a local one — the
	// federation path deliberately does not reconcile that collision and
	// creates a separate record.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			is_admin      INTEGER NOT NULL DEFAULT 0,
			provider      TEXT NOT NULL DEFAULT '',
			provider_id   TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_local_email
			ON users(email) WHERE provider = '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_federated_identity
			ON users(provider, provider_id) WHERE provider != '';
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       REAL NOT NULL DEFAULT 0,
			image_url   TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			stock       INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
	`)
	if err != nil {
		return fmt.Errorf("creating products table: %w", err)
	}

	// One row per (user, product); quantity accumulates on repeat adds.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cart_items (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			product_id TEXT NOT NULL REFERENCES products(id),
			quantity   INTEGER NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, product_id)
		);
		CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating cart_items table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id),
			total_price      REAL NOT NULL,
			shipping_address TEXT NOT NULL,
			status           TEXT NOT NULL DEFAULT 'Pending',
			payment_status   TEXT NOT NULL DEFAULT 'Unpaid',
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id   TEXT NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			quantity   INTEGER NOT NULL,
			PRIMARY KEY (order_id, product_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating orders tables: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// touching the given column reference (e.g. "users.email"). The driver exposes
// the failing columns only in the message text.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
