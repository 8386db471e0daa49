package dto

// AddBatchRequest body para POST /api/batches. ETA en formato YYYY-MM-DD;
// null o ausente = stock ya en bodega.
type AddBatchRequest struct {
	Ref string  `json:"ref"`
	SKU string  `json:"sku"`
	Qty int     `json:"qty"`
	ETA *string `json:"eta"`
}

// AllocateRequest body para POST /api/allocations.
type AllocateRequest struct {
	OrderID string `json:"orderid"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

// AllocateResponse respuesta cuando la línea quedó asignada.
type AllocateResponse struct {
	BatchRef string `json:"batchref"`
}

// AllocationViewDTO una asignación del modelo de lectura de un pedido.
type AllocationViewDTO struct {
	SKU      string `json:"sku"`
	BatchRef string `json:"batchref"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
