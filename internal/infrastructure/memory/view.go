package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
)

var _ allocation.AllocationView = (*AllocationView)(nil)

// AllocationView modelo de lectura en memoria (pruebas y modo desarrollo).
type AllocationView struct {
	mu      sync.RWMutex
	entries []allocation.AllocationEntry
}

// NewAllocationView crea el modelo de lectura vacío.
func NewAllocationView() *AllocationView {
	return &AllocationView{}
}

// Add inserta o reemplaza la asignación de (orderid, sku).
func (v *AllocationView) Add(_ context.Context, entry allocation.AllocationEntry) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, e := range v.entries {
		if e.OrderID == entry.OrderID && e.SKU == entry.SKU {
			v.entries[i] = entry
			return nil
		}
	}
	v.entries = append(v.entries, entry)
	return nil
}

// Remove elimina la asignación de (orderid, sku) si existe.
func (v *AllocationView) Remove(_ context.Context, orderID, sku string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, e := range v.entries {
		if e.OrderID == orderID && e.SKU == sku {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// ByOrderID lista las asignaciones de un pedido.
func (v *AllocationView) ByOrderID(_ context.Context, orderID string) ([]allocation.AllocationEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []allocation.AllocationEntry
	for _, e := range v.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}
