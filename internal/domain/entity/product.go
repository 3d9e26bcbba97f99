package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto en el catálogo.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un SKU del catálogo (fuente externa, solo lectura para el ledger).
// Stock es la existencia actual; AlertThreshold es el umbral de alerta de reposición.
type Product struct {
	ID             string
	SKU            string
	Name           string
	Category       string
	Cost           decimal.Decimal // costo unitario de catálogo
	Price          decimal.Decimal // precio de venta
	Stock          decimal.Decimal
	AlertThreshold decimal.Decimal
	Status         string // active, inactive
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive indica si el producto participa en los análisis de rotación y rentabilidad.
func (p Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// InventoryValue devuelve stock × costo.
func (p Product) InventoryValue() decimal.Decimal {
	return p.Stock.Mul(p.Cost)
}
