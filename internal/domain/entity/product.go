package entity

import (
	"sort"

	"github.com/jhoicas/Asignacion-api/internal/domain"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
)

// Product es la raíz del agregado: el único objeto que un repositorio entrega.
// Posee todos los lotes de su SKU; ningún Batch se muta por fuera del Product.
// Version es el token de concurrencia optimista para la capa de persistencia;
// se incrementa en cada operación que cambia estado.
type Product struct {
	SKU     string
	Version int

	batches  []*Batch
	messages []message.Message
}

// NewProduct construye un agregado nuevo (versión 0).
func NewProduct(sku string, batches ...*Batch) *Product {
	return &Product{SKU: sku, batches: batches}
}

// LoadProduct rehidrata un agregado desde un adaptador de persistencia
// sin tocar la versión ni generar mensajes.
func LoadProduct(sku string, version int, batches []*Batch) *Product {
	return &Product{SKU: sku, Version: version, batches: batches}
}

// Batches devuelve los lotes del agregado (el slice es una copia; los lotes no).
func (p *Product) Batches() []*Batch {
	out := make([]*Batch, len(p.batches))
	copy(out, p.batches)
	return out
}

// BatchByRef busca un lote por referencia; nil si no existe.
func (p *Product) BatchByRef(ref string) *Batch {
	for _, b := range p.batches {
		if b.Reference == ref {
			return b
		}
	}
	return nil
}

// AddBatch agrega un lote al agregado. Referencias duplicadas son ErrDuplicate.
func (p *Product) AddBatch(b *Batch) error {
	if b.SKU != p.SKU {
		return domain.ErrInvalidInput
	}
	if p.BatchByRef(b.Reference) != nil {
		return domain.ErrDuplicate
	}
	p.batches = append(p.batches, b)
	p.Version++
	return nil
}

// Allocate asigna la línea al mejor lote según la preferencia:
// lotes en bodega (ETA nil) antes que embarques; entre embarques, ETA
// ascendente; empates por orden de inserción (orden estable).
//
// Si ningún lote puede satisfacer la línea, registra el evento OutOfStock y
// devuelve ErrOutOfStock: es un resultado de negocio, no una operación fallida.
func (p *Product) Allocate(line OrderLine) (string, error) {
	if line.Qty <= 0 {
		return "", domain.ErrInvalidInput
	}
	for _, b := range p.sortedBatches() {
		if !b.CanAllocate(line) {
			continue
		}
		b.Allocate(line)
		p.Version++
		p.raise(message.Allocated{
			OrderID:  line.OrderID,
			SKU:      line.SKU,
			Qty:      line.Qty,
			BatchRef: b.Reference,
		})
		return b.Reference, nil
	}
	p.raise(message.OutOfStock{SKU: line.SKU})
	return "", domain.ErrOutOfStock
}

// ChangeBatchQuantity actualiza la cantidad comprada del lote referenciado.
// Si la cantidad disponible quedara negativa, libera líneas una a una hasta
// restablecer el invariante, emitiendo Deallocated por cada una.
//
// Orden de liberación (determinista): primero la línea de mayor cantidad;
// empates por orden de inserción de la asignación.
func (p *Product) ChangeBatchQuantity(ref string, qty int) error {
	if qty < 0 {
		return domain.ErrInvalidInput
	}
	b := p.BatchByRef(ref)
	if b == nil {
		return domain.ErrUnknownBatch
	}
	b.purchasedQty = qty
	for b.AvailableQuantity() < 0 {
		line := largestAllocation(b)
		b.Deallocate(line)
		p.raise(message.Deallocated{
			OrderID: line.OrderID,
			SKU:     line.SKU,
			Qty:     line.Qty,
		})
	}
	p.Version++
	return nil
}

// PullMessages drena el buffer de mensajes pendientes del agregado.
// Lo llama el Unit of Work después de cada commit.
func (p *Product) PullMessages() []message.Message {
	out := p.messages
	p.messages = nil
	return out
}

// Clone copia profunda del agregado (sesiones del adaptador en memoria).
func (p *Product) Clone() *Product {
	c := &Product{SKU: p.SKU, Version: p.Version}
	for _, b := range p.batches {
		c.batches = append(c.batches, b.clone())
	}
	c.messages = append(c.messages, p.messages...)
	return c
}

func (p *Product) raise(m message.Message) {
	p.messages = append(p.messages, m)
}

// sortedBatches devuelve los lotes en orden de preferencia de asignación
// sin alterar el orden de inserción del agregado.
func (p *Product) sortedBatches() []*Batch {
	out := p.Batches()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ETA == nil:
			return b.ETA != nil
		case b.ETA == nil:
			return false
		default:
			return a.ETA.Before(*b.ETA)
		}
	})
	return out
}

// largestAllocation elige la línea a liberar: mayor cantidad primero,
// empates por orden de inserción.
func largestAllocation(b *Batch) OrderLine {
	lines := b.Allocations()
	best := lines[0]
	for _, l := range lines[1:] {
		if l.Qty > best.Qty {
			best = l
		}
	}
	return best
}
