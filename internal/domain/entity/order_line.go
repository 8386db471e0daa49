package entity

// OrderLine es un objeto de valor: una línea de pedido queda identificada por
// sus datos. Dos líneas con el mismo orderid, sku y qty son la misma línea,
// por eso el struct es comparable y se usa por valor.
type OrderLine struct {
	OrderID string
	SKU     string
	Qty     int
}
