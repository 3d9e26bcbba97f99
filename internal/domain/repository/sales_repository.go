package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderTotals agregados de las órdenes completadas de una ventana.
//
// Los agregados de líneas (Item*, ProductCost) solo incluyen productos del catálogo. Las líneas
// de productos desconocidos se cuentan aparte en UnknownLines / UnknownAmount.
type OrderTotals struct {
	Orders        int
	Sales         decimal.Decimal // Σ order.total
	ShippingFee   decimal.Decimal // Σ order.shipping_fee
	ItemQuantity  decimal.Decimal // Σ item.quantity
	ItemAmount    decimal.Decimal // Σ item.total
	ProductCost   decimal.Decimal // Σ item.quantity × product.cost
	UnknownLines  int
	UnknownAmount decimal.Decimal // Σ item.total de líneas sin producto en el catálogo
}

// AttributedSales ventas de las órdenes sin el importe de las líneas sin producto conocido,
// cuyo costo no se puede calcular.
func (t OrderTotals) AttributedSales() decimal.Decimal {
	return t.Sales.Sub(t.UnknownAmount)
}

// ProductSales ventas de un producto en una ventana.
type ProductSales struct {
	ProductID string
	Orders    int // órdenes distintas
	Quantity  decimal.Decimal
	Amount    decimal.Decimal
}

// CategorySales ventas de una categoría en una ventana.
type CategorySales struct {
	Category    string
	Orders      int // órdenes distintas que contienen la categoría
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	ProductCost decimal.Decimal // Σ item.quantity × product.cost
}

// SalesRepository consultas de solo lectura sobre órdenes completadas.
// Las ventanas son cerradas: from y to se incluyen.
type SalesRepository interface {
	OrderTotals(ctx context.Context, from, to time.Time) (OrderTotals, error)
	SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductSales, error)
	SalesByCategory(ctx context.Context, from, to time.Time) ([]CategorySales, error)
}
