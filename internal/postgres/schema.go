package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the storefront tables that the order and statistics code touches.
// Statements are idempotent so it can run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS users (
    id         BIGSERIAL PRIMARY KEY,
    phone      VARCHAR(15) UNIQUE,
    email      VARCHAR(254) UNIQUE,
    first_name VARCHAR(30),
    last_name  VARCHAR(30)
);

CREATE TABLE IF NOT EXISTS flowers (
    id         BIGSERIAL PRIMARY KEY,
    name       VARCHAR(250) NOT NULL DEFAULT '',
    price      NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
    cashback   INT NOT NULL DEFAULT 10,
    quantity   INT NOT NULL DEFAULT 0,
    in_stock   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE TABLE IF NOT EXISTS type_recipients (
    id BIGSERIAL PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS type_recipient_translations (
    recipient_id  BIGINT NOT NULL REFERENCES type_recipients(id) ON DELETE CASCADE,
    language_code VARCHAR(15) NOT NULL,
    title         VARCHAR(250),
    PRIMARY KEY (recipient_id, language_code)
);

CREATE TABLE IF NOT EXISTS status_delivers (
    id BIGSERIAL PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS status_deliver_translations (
    status_id     BIGINT NOT NULL REFERENCES status_delivers(id) ON DELETE CASCADE,
    language_code VARCHAR(15) NOT NULL,
    title         VARCHAR(250),
    PRIMARY KEY (status_id, language_code)
);

CREATE TABLE IF NOT EXISTS orders (
    id                BIGSERIAL PRIMARY KEY,
    author_id         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    recipient_id      BIGINT CONSTRAINT orders_recipient_id_fkey REFERENCES type_recipients(id),
    status_deliver_id BIGINT CONSTRAINT orders_status_deliver_id_fkey REFERENCES status_delivers(id),
    full_name         VARCHAR(250) NOT NULL DEFAULT '',
    address           VARCHAR(250) NOT NULL DEFAULT '',
    flat              VARCHAR(250) NOT NULL DEFAULT '',
    comment           TEXT NOT NULL DEFAULT '',
    comment2          TEXT NOT NULL DEFAULT '',
    is_call           BOOLEAN NOT NULL DEFAULT FALSE,
    is_promo_code     BOOLEAN NOT NULL DEFAULT FALSE,
    total             NUMERIC(12,2) NOT NULL DEFAULT 0,
    cashback          NUMERIC(12,2) NOT NULL DEFAULT 0,
    deliver_price     NUMERIC(12,2) NOT NULL DEFAULT 0,
    currency          CHAR(3) NOT NULL,
    created_at        DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE TABLE IF NOT EXISTS order_items (
    id         BIGSERIAL PRIMARY KEY,
    order_id   BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    flower_id  BIGINT NOT NULL REFERENCES flowers(id) ON DELETE CASCADE,
    quantity   INT NOT NULL CHECK (quantity > 0),
    created_at DATE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_created_at ON order_items(created_at);
CREATE INDEX IF NOT EXISTS idx_order_items_flower_id ON order_items(flower_id);
`
