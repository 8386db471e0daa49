package repository

import (
	"context"

	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia del agregado Product (DIP).
// Solo entrega la raíz del agregado: los lotes no son recuperables por separado.
type ProductRepository interface {
	// Add registra un agregado nuevo en la sesión.
	Add(ctx context.Context, product *entity.Product) error
	// Get devuelve el agregado del sku, o nil si no existe.
	Get(ctx context.Context, sku string) (*entity.Product, error)
	// GetByBatchRef devuelve el agregado dueño del lote referenciado, o nil.
	// Necesario para ChangeBatchQuantity, que solo conoce la referencia del lote.
	GetByBatchRef(ctx context.Context, ref string) (*entity.Product, error)
}
