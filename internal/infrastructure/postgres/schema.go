package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	sku     TEXT PRIMARY KEY,
	version INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS batches (
	id                 BIGSERIAL PRIMARY KEY,
	reference          TEXT UNIQUE NOT NULL,
	sku                TEXT NOT NULL REFERENCES products (sku),
	purchased_quantity INTEGER NOT NULL,
	eta                DATE
);

CREATE TABLE IF NOT EXISTS allocations (
	id              BIGSERIAL PRIMARY KEY,
	batch_reference TEXT NOT NULL REFERENCES batches (reference),
	order_id        TEXT NOT NULL,
	sku             TEXT NOT NULL,
	qty             INTEGER NOT NULL,
	UNIQUE (batch_reference, order_id, sku)
);

CREATE TABLE IF NOT EXISTS allocations_view (
	order_id        TEXT NOT NULL,
	sku             TEXT NOT NULL,
	batch_reference TEXT NOT NULL,
	PRIMARY KEY (order_id, sku)
);
`

// EnsureSchema crea las tablas si no existen. Se ejecuta al arrancar.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("crear esquema: %w", err)
	}
	return nil
}
