package entity

import "time"

// Batch es una entidad: un lote de stock identificado por su referencia.
// ETA nil significa stock ya en bodega; con fecha, embarque en tránsito.
// Las asignaciones se guardan en orden de inserción con semántica de conjunto.
type Batch struct {
	Reference string
	SKU       string
	ETA       *time.Time

	purchasedQty int
	allocations  []OrderLine
}

// NewBatch construye un lote sin asignaciones.
func NewBatch(ref, sku string, qty int, eta *time.Time) *Batch {
	return &Batch{Reference: ref, SKU: sku, ETA: eta, purchasedQty: qty}
}

// LoadBatch rehidrata un lote desde un adaptador de persistencia,
// con sus asignaciones ya existentes.
func LoadBatch(ref, sku string, qty int, eta *time.Time, allocations []OrderLine) *Batch {
	b := NewBatch(ref, sku, qty, eta)
	b.allocations = append(b.allocations, allocations...)
	return b
}

// PurchasedQuantity cantidad comprada del lote.
func (b *Batch) PurchasedQuantity() int { return b.purchasedQty }

// AllocatedQuantity suma de las cantidades de las líneas asignadas.
func (b *Batch) AllocatedQuantity() int {
	total := 0
	for _, line := range b.allocations {
		total += line.Qty
	}
	return total
}

// AvailableQuantity cantidad disponible. Invariante: nunca negativa
// tras cada operación del agregado.
func (b *Batch) AvailableQuantity() int {
	return b.purchasedQty - b.AllocatedQuantity()
}

// CanAllocate indica si la línea cabe en este lote (mismo sku y cantidad disponible).
func (b *Batch) CanAllocate(line OrderLine) bool {
	return b.SKU == line.SKU && b.AvailableQuantity() >= line.Qty
}

// Allocate asigna la línea al lote. Idempotente: asignar dos veces la misma
// línea no descuenta doble.
func (b *Batch) Allocate(line OrderLine) {
	if !b.CanAllocate(line) {
		return
	}
	for _, l := range b.allocations {
		if l == line {
			return
		}
	}
	b.allocations = append(b.allocations, line)
}

// Deallocate libera la línea si estaba asignada; si no, no hace nada.
func (b *Batch) Deallocate(line OrderLine) {
	for i, l := range b.allocations {
		if l == line {
			b.allocations = append(b.allocations[:i], b.allocations[i+1:]...)
			return
		}
	}
}

// Allocations devuelve una copia de las líneas asignadas, en orden de inserción.
func (b *Batch) Allocations() []OrderLine {
	out := make([]OrderLine, len(b.allocations))
	copy(out, b.allocations)
	return out
}

// clone copia profunda del lote (para sesiones en memoria).
func (b *Batch) clone() *Batch {
	c := &Batch{Reference: b.Reference, SKU: b.SKU, purchasedQty: b.purchasedQty}
	if b.ETA != nil {
		eta := *b.ETA
		c.ETA = &eta
	}
	c.allocations = append(c.allocations, b.allocations...)
	return c
}
