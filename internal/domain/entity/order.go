package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusCompleted único estado de orden que cuenta para ventas.
const OrderStatusCompleted = "completed"

// Order orden de venta (fuente externa, solo lectura).
type Order struct {
	ID          string
	OrderNo     string
	OrderDate   time.Time
	Status      string
	Total       decimal.Decimal
	ShippingFee decimal.Decimal
}

// IsCompleted indica si la orden cuenta para ventas.
func (o Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// OrderItem línea de una orden.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}
