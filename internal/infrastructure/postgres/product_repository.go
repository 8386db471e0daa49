package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Asignacion-api/internal/domain"
	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL, atada a la
// transacción de la sesión. Lleva registro de los agregados vistos para que el
// Unit of Work los persista en el commit y drene sus mensajes.
type ProductRepo struct {
	q      Querier
	staged map[string]*entity.Product
	loaded map[string]int // versión leída, para el check optimista
	order  []string
}

// NewProductRepository construye el adaptador. Pasar la tx de la sesión (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{
		q:      q,
		staged: make(map[string]*entity.Product),
		loaded: make(map[string]int),
	}
}

// Add registra un agregado nuevo e inserta su fila en products.
func (r *ProductRepo) Add(ctx context.Context, product *entity.Product) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO products (sku, version) VALUES ($1, $2)`,
		product.SKU, product.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, product.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	r.stage(product, product.Version)
	return nil
}

// Get devuelve el agregado del sku, o nil si no existe. Bloquea la fila del
// producto (SELECT FOR UPDATE) para serializar sesiones concurrentes sobre el
// mismo agregado.
func (r *ProductRepo) Get(ctx context.Context, sku string) (*entity.Product, error) {
	if p, ok := r.staged[sku]; ok {
		return p, nil
	}

	var version int
	err := r.q.QueryRow(ctx,
		`SELECT version FROM products WHERE sku = $1 FOR UPDATE`, sku,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	batches, err := r.loadBatches(ctx, sku)
	if err != nil {
		return nil, err
	}

	p := entity.LoadProduct(sku, version, batches)
	r.stage(p, version)
	return p, nil
}

// GetByBatchRef devuelve el agregado dueño del lote referenciado, o nil.
func (r *ProductRepo) GetByBatchRef(ctx context.Context, ref string) (*entity.Product, error) {
	for _, p := range r.staged {
		if p.BatchByRef(ref) != nil {
			return p, nil
		}
	}

	var sku string
	err := r.q.QueryRow(ctx,
		`SELECT sku FROM batches WHERE reference = $1`, ref,
	).Scan(&sku)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by batch ref: %w", err)
	}
	return r.Get(ctx, sku)
}

func (r *ProductRepo) loadBatches(ctx context.Context, sku string) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, `
		SELECT reference, purchased_quantity, eta
		FROM batches WHERE sku = $1 ORDER BY id`, sku)
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}
	defer rows.Close()

	type batchRow struct {
		ref string
		qty int
		eta *time.Time
	}
	var batchRows []batchRow
	for rows.Next() {
		var b batchRow
		if err := rows.Scan(&b.ref, &b.qty, &b.eta); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batchRows = append(batchRows, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}

	lines, err := r.loadAllocations(ctx, sku)
	if err != nil {
		return nil, err
	}

	batches := make([]*entity.Batch, 0, len(batchRows))
	for _, b := range batchRows {
		batches = append(batches, entity.LoadBatch(b.ref, sku, b.qty, b.eta, lines[b.ref]))
	}
	return batches, nil
}

func (r *ProductRepo) loadAllocations(ctx context.Context, sku string) (map[string][]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.batch_reference, a.order_id, a.sku, a.qty
		FROM allocations a
		JOIN batches b ON b.reference = a.batch_reference
		WHERE b.sku = $1
		ORDER BY a.id`, sku)
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.OrderLine)
	for rows.Next() {
		var ref string
		var line entity.OrderLine
		if err := rows.Scan(&ref, &line.OrderID, &line.SKU, &line.Qty); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out[ref] = append(out[ref], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	return out, nil
}

// persistSeen escribe el estado de todos los agregados de la sesión antes del
// commit de la tx: versión con check optimista, upsert de lotes y reemplazo
// de asignaciones.
func (r *ProductRepo) persistSeen(ctx context.Context) error {
	for _, sku := range r.order {
		if err := r.persist(ctx, r.staged[sku], r.loaded[sku]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductRepo) persist(ctx context.Context, p *entity.Product, oldVersion int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET version = $2 WHERE sku = $1 AND version = $3`,
		p.SKU, p.Version, oldVersion,
	)
	if err != nil {
		return fmt.Errorf("update product version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: versión obsoleta del agregado %s", domain.ErrConflict, p.SKU)
	}

	for _, b := range p.Batches() {
		_, err := r.q.Exec(ctx, `
			INSERT INTO batches (reference, sku, purchased_quantity, eta)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (reference)
			DO UPDATE SET purchased_quantity = EXCLUDED.purchased_quantity`,
			b.Reference, b.SKU, b.PurchasedQuantity(), b.ETA,
		)
		if err != nil {
			return fmt.Errorf("upsert batch %s: %w", b.Reference, err)
		}
	}

	_, err = r.q.Exec(ctx, `
		DELETE FROM allocations
		WHERE batch_reference IN (SELECT reference FROM batches WHERE sku = $1)`,
		p.SKU,
	)
	if err != nil {
		return fmt.Errorf("clear allocations: %w", err)
	}
	for _, b := range p.Batches() {
		for _, line := range b.Allocations() {
			_, err := r.q.Exec(ctx, `
				INSERT INTO allocations (batch_reference, order_id, sku, qty)
				VALUES ($1, $2, $3, $4)`,
				b.Reference, line.OrderID, line.SKU, line.Qty,
			)
			if err != nil {
				return fmt.Errorf("insert allocation: %w", err)
			}
		}
	}
	return nil
}

// seenProducts agregados tocados por la sesión, en orden de aparición.
func (r *ProductRepo) seenProducts() []*entity.Product {
	out := make([]*entity.Product, 0, len(r.order))
	for _, sku := range r.order {
		out = append(out, r.staged[sku])
	}
	return out
}

func (r *ProductRepo) stage(p *entity.Product, loadedVersion int) {
	r.staged[p.SKU] = p
	r.loaded[p.SKU] = loadedVersion
	r.order = append(r.order, p.SKU)
}
