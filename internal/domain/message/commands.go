package message

import "time"

// Nombres de comandos (tags para el registro de handlers del bus).
const (
	AllocateName            = "Allocate"
	CreateBatchName         = "CreateBatch"
	ChangeBatchQuantityName = "ChangeBatchQuantity"
)

// Allocate pide asignar una línea de pedido a algún lote del SKU.
type Allocate struct {
	OrderID string `json:"orderid"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

func (Allocate) Name() string { return AllocateName }
func (Allocate) isCommand()   {}

// CreateBatch registra un lote nuevo. ETA nil = stock en bodega;
// con fecha = embarque en tránsito.
type CreateBatch struct {
	Ref string     `json:"ref"`
	SKU string     `json:"sku"`
	Qty int        `json:"qty"`
	ETA *time.Time `json:"eta,omitempty"`
}

func (CreateBatch) Name() string { return CreateBatchName }
func (CreateBatch) isCommand()   {}

// ChangeBatchQuantity cambia la cantidad comprada de un lote existente.
type ChangeBatchQuantity struct {
	Ref string `json:"batchref"`
	Qty int    `json:"qty"`
}

func (ChangeBatchQuantity) Name() string { return ChangeBatchQuantityName }
func (ChangeBatchQuantity) isCommand()   {}
