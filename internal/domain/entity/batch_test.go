package entity_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestBatch_AllocateReduceDisponible(t *testing.T) {
	b := entity.NewBatch("batch-001", "SMALL-TABLE", 20, nil)
	b.Allocate(entity.OrderLine{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 2})

	assert.Equal(t, 18, b.AvailableQuantity())
	assert.Equal(t, 2, b.AllocatedQuantity())
}

func TestBatch_AllocateEsIdempotente(t *testing.T) {
	b := entity.NewBatch("batch-001", "BLUE-VASE", 10, nil)
	line := entity.OrderLine{OrderID: "order-001", SKU: "BLUE-VASE", Qty: 2}

	b.Allocate(line)
	b.Allocate(line)

	// Asignar dos veces la misma línea no descuenta doble.
	assert.Equal(t, 8, b.AvailableQuantity())
	assert.Len(t, b.Allocations(), 1)
}

func TestBatch_CanAllocate(t *testing.T) {
	b := entity.NewBatch("batch-001", "BLUE-CUSHION", 2, nil)

	assert.True(t, b.CanAllocate(entity.OrderLine{OrderID: "o1", SKU: "BLUE-CUSHION", Qty: 2}))
	assert.False(t, b.CanAllocate(entity.OrderLine{OrderID: "o1", SKU: "BLUE-CUSHION", Qty: 3}),
		"no debe aceptar una línea mayor que lo disponible")
	assert.False(t, b.CanAllocate(entity.OrderLine{OrderID: "o1", SKU: "RED-CUSHION", Qty: 1}),
		"no debe aceptar una línea de otro sku")
}

func TestBatch_DeallocateLineaNoAsignadaNoHaceNada(t *testing.T) {
	b := entity.NewBatch("batch-001", "WOBBLY-CHAIR", 10, date("2025-01-01"))
	b.Deallocate(entity.OrderLine{OrderID: "order-001", SKU: "WOBBLY-CHAIR", Qty: 3})

	assert.Equal(t, 10, b.AvailableQuantity())
}

func TestBatch_AllocationsDevuelveCopia(t *testing.T) {
	b := entity.NewBatch("batch-001", "LAMP", 10, nil)
	b.Allocate(entity.OrderLine{OrderID: "o1", SKU: "LAMP", Qty: 1})

	lines := b.Allocations()
	lines[0] = entity.OrderLine{OrderID: "other", SKU: "LAMP", Qty: 9}

	assert.Equal(t, 9, b.AvailableQuantity(), "mutar la copia no debe tocar el lote")
}
