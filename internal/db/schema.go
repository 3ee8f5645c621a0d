package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'operator' CHECK (role IN ('admin', 'manager', 'operator')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS products (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    brand         TEXT,
    status        TEXT NOT NULL DEFAULT 'Available'
                  CHECK (status IN ('Available', 'Checked Out', 'In Use', 'Maintenance', 'Repair', 'Lost', 'Disposed')),
    quantity      INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
    condition     TEXT NOT NULL DEFAULT 'Good',
    serial_number TEXT,
    qr_payload    TEXT,
    image         BLOB,
    image_mime    TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE INDEX IF NOT EXISTS idx_products_serial ON products(serial_number);

CREATE TABLE IF NOT EXISTS transactions (
    id               INTEGER PRIMARY KEY,
    transaction_type TEXT NOT NULL,
    reference_no     TEXT NOT NULL UNIQUE,
    first_person     TEXT NOT NULL,
    second_person    TEXT,
    location         TEXT NOT NULL,
    notes            TEXT,
    status           TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'pending', 'closed')),
    transaction_date DATETIME NOT NULL,
    created_by       INTEGER REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transaction_items (
    id               INTEGER PRIMARY KEY,
    transaction_id   INTEGER NOT NULL REFERENCES transactions(id),
    product_id       TEXT NOT NULL REFERENCES products(id),
    quantity         INTEGER NOT NULL CHECK (quantity > 0),
    condition_before TEXT NOT NULL,
    condition_after  TEXT,
    status           TEXT NOT NULL DEFAULT 'processed' CHECK (status IN ('processed', 'pending')),
    notes            TEXT,
    UNIQUE (transaction_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_transaction_items_product ON transaction_items(product_id);

CREATE TABLE IF NOT EXISTS holdings (
    product_id TEXT NOT NULL REFERENCES products(id),
    holder     TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (product_id, holder)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
