package message

// Nombres de eventos.
const (
	AllocatedName   = "Allocated"
	DeallocatedName = "Deallocated"
	OutOfStockName  = "OutOfStock"
)

// Allocated se emite cuando una línea quedó asignada a un lote concreto.
type Allocated struct {
	OrderID  string `json:"orderid"`
	SKU      string `json:"sku"`
	Qty      int    `json:"qty"`
	BatchRef string `json:"batchref"`
}

func (Allocated) Name() string { return AllocatedName }
func (Allocated) isEvent()     {}

// Deallocated se emite por cada línea liberada al encoger un lote.
type Deallocated struct {
	OrderID string `json:"orderid"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

func (Deallocated) Name() string { return DeallocatedName }
func (Deallocated) isEvent()     {}

// OutOfStock se emite cuando ningún lote del SKU puede satisfacer una línea.
// Es un resultado de negocio, no una falla de la operación.
type OutOfStock struct {
	SKU string `json:"sku"`
}

func (OutOfStock) Name() string { return OutOfStockName }
func (OutOfStock) isEvent()     {}
