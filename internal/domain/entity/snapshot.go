package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

// Scope alcance de un snapshot de análisis.
type Scope string

const (
	ScopeOverall  Scope = "overall"
	ScopeProduct  Scope = "product"
	ScopeCategory Scope = "category"
)

// OverallKey clave del snapshot general.
const OverallKey = "*"

// Valid indica si s es un alcance conocido.
func (s Scope) Valid() bool {
	switch s {
	case ScopeOverall, ScopeProduct, ScopeCategory:
		return true
	}
	return false
}

// Estados de stock de un producto.
const (
	StockStatusStockout  = "stockout"
	StockStatusOverstock = "overstock"
	StockStatusNormal    = "normal"
)

// SnapshotKey identifica de forma única un snapshot: (alcance, clave, fecha, granularidad).
type SnapshotKey struct {
	Scope       Scope
	ScopeKey    string
	Date        time.Time
	Granularity period.Granularity
}

// TurnoverSnapshot métricas de rotación de inventario para un alcance y ventana.
type TurnoverSnapshot struct {
	SnapshotKey
	PeriodStart       time.Time
	PeriodEnd         time.Time
	TotalProducts     int
	ActiveProducts    int
	InactiveProducts  int
	StockoutProducts  int
	OverstockProducts int
	TotalQuantity     decimal.Decimal
	TotalValue        decimal.Decimal
	AverageStock      decimal.Decimal
	SalesQuantity     decimal.Decimal
	SalesAmount       decimal.Decimal
	TurnoverRate      decimal.Decimal
	TurnoverDays      decimal.Decimal
	HealthyStockRatio decimal.Decimal
	StockoutRatio     decimal.Decimal
	OverstockRatio    decimal.Decimal
	StockStatus       string // solo alcance product
}

// ProfitSnapshot métricas de rentabilidad para un alcance y ventana.
type ProfitSnapshot struct {
	SnapshotKey
	PeriodStart           time.Time
	PeriodEnd             time.Time
	TotalProducts         int
	TotalOrders           int
	SalesQuantity         decimal.Decimal
	SalesAmount           decimal.Decimal
	UnitCost              decimal.Decimal // solo alcance product
	ProductCost           decimal.Decimal
	ShippingCost          decimal.Decimal
	OperationCost         decimal.Decimal
	OtherCost             decimal.Decimal
	TotalCost             decimal.Decimal
	GrossProfit           decimal.Decimal
	NetProfit             decimal.Decimal
	GrossProfitRate       decimal.Decimal
	NetProfitRate         decimal.Decimal
	AverageOrderValue     decimal.Decimal // solo alcance category
	AverageProfitPerOrder decimal.Decimal // solo alcance category
}
