package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
)

var _ allocation.AllocationView = (*AllocationViewRepo)(nil)

// AllocationViewRepo modelo de lectura de asignaciones sobre PostgreSQL
// (tabla desnormalizada allocations_view, mantenida por los handlers de
// Allocated y Deallocated).
type AllocationViewRepo struct {
	q Querier
}

// NewAllocationView construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationView(q Querier) *AllocationViewRepo {
	return &AllocationViewRepo{q: q}
}

// Add inserta o reemplaza la asignación de (orderid, sku).
func (r *AllocationViewRepo) Add(ctx context.Context, entry allocation.AllocationEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO allocations_view (order_id, sku, batch_reference)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, sku)
		DO UPDATE SET batch_reference = EXCLUDED.batch_reference`,
		entry.OrderID, entry.SKU, entry.BatchRef,
	)
	if err != nil {
		return fmt.Errorf("upsert allocations_view: %w", err)
	}
	return nil
}

// Remove elimina la asignación de (orderid, sku).
func (r *AllocationViewRepo) Remove(ctx context.Context, orderID, sku string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM allocations_view WHERE order_id = $1 AND sku = $2`,
		orderID, sku,
	)
	if err != nil {
		return fmt.Errorf("delete allocations_view: %w", err)
	}
	return nil
}

// ByOrderID lista las asignaciones de un pedido.
func (r *AllocationViewRepo) ByOrderID(ctx context.Context, orderID string) ([]allocation.AllocationEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT order_id, sku, batch_reference
		FROM allocations_view WHERE order_id = $1
		ORDER BY sku`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query allocations_view: %w", err)
	}
	defer rows.Close()

	var out []allocation.AllocationEntry
	for rows.Next() {
		var e allocation.AllocationEntry
		if err := rows.Scan(&e.OrderID, &e.SKU, &e.BatchRef); err != nil {
			return nil, fmt.Errorf("scan allocations_view: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query allocations_view: %w", err)
	}
	return out, nil
}
