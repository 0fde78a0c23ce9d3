package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Orders keep items, address and payment details as jsonb documents; the
// unique index on order_number is what makes order numbers collision-free.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  UUID PRIMARY KEY,
		email               TEXT NOT NULL UNIQUE,
		password_hash       TEXT NOT NULL,
		name                TEXT NOT NULL,
		role                TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
		phone               TEXT NOT NULL DEFAULT '',
		subscription_status TEXT NOT NULL DEFAULT 'free' CHECK (subscription_status IN ('free', 'premium')),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id             UUID PRIMARY KEY,
		name           TEXT NOT NULL,
		name_en        TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		price          BIGINT NOT NULL CHECK (price >= 0),
		sale_price     BIGINT,
		images         TEXT[] NOT NULL DEFAULT '{}',
		category       TEXT NOT NULL,
		tags           TEXT[] NOT NULL DEFAULT '{}',
		stock          INTEGER NOT NULL DEFAULT 0,
		weight         INTEGER NOT NULL DEFAULT 0,
		origin         TEXT NOT NULL DEFAULT '',
		is_organic     BOOLEAN NOT NULL DEFAULT FALSE,
		is_featured    BOOLEAN NOT NULL DEFAULT FALSE,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               UUID PRIMARY KEY,
		order_number     TEXT NOT NULL,
		user_id          UUID NOT NULL,
		items            JSONB NOT NULL,
		subtotal         BIGINT NOT NULL,
		shipping_cost    BIGINT NOT NULL,
		discount         BIGINT NOT NULL DEFAULT 0,
		total            BIGINT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'confirmed', 'processing', 'shipped', 'delivered', 'cancelled')),
		payment_status   TEXT NOT NULL DEFAULT 'pending'
			CHECK (payment_status IN ('pending', 'paid', 'failed', 'refunded')),
		payment_method   TEXT NOT NULL CHECK (payment_method IN ('qpay', 'khanbank', 'card', 'cash')),
		payment_details  JSONB,
		shipping_address JSONB NOT NULL,
		notes            TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_key ON orders (order_number)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS payment_callbacks (
		provider    TEXT NOT NULL,
		invoice_id  TEXT NOT NULL,
		payment_id  TEXT NOT NULL,
		order_id    UUID NOT NULL,
		received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (provider, invoice_id, payment_id)
	)`,
}

// EnsureSchema applies the required database schema. Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not apply schema: %w", err)
		}
	}
	return nil
}
