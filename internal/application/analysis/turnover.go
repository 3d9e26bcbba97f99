package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// stockTotals acumula health, cantidad y valor de un conjunto de productos.
type stockTotals struct {
	health   inventory.StockHealth
	quantity decimal.Decimal
	value    decimal.Decimal
}

func sumStock(products []entity.Product) stockTotals {
	t := stockTotals{quantity: decimal.Zero, value: decimal.Zero}
	for _, p := range products {
		t.health.Add(p.Stock, p.AlertThreshold)
		t.quantity = t.quantity.Add(p.Stock)
		t.value = t.value.Add(p.InventoryValue())
	}
	return t
}

func (t stockTotals) fill(s *entity.TurnoverSnapshot) {
	s.TotalProducts = t.health.Total
	s.ActiveProducts = t.health.Active
	s.InactiveProducts = t.health.Inactive()
	s.StockoutProducts = t.health.Stockout
	s.OverstockProducts = t.health.Overstock
	s.TotalQuantity = t.quantity
	s.TotalValue = t.value
	s.HealthyStockRatio = t.health.HealthyRatio()
	s.StockoutRatio = t.health.StockoutRatio()
	s.OverstockRatio = t.health.OverstockRatio()
}

func newTurnover(scope entity.Scope, key string, b period.Bucket, date time.Time) entity.TurnoverSnapshot {
	return entity.TurnoverSnapshot{
		SnapshotKey: entity.SnapshotKey{Scope: scope, ScopeKey: key, Date: date, Granularity: b.Granularity},
		PeriodStart: b.Start,
		PeriodEnd:   b.End,
	}
}

// BuildOverallTurnover snapshot general sobre los productos activos. La rotación es monetaria:
// Σ total de líneas vendidas / valor del inventario.
func BuildOverallTurnover(date time.Time, b period.Bucket, active []entity.Product, totals repository.OrderTotals) entity.TurnoverSnapshot {
	s := newTurnover(entity.ScopeOverall, entity.OverallKey, b, date)
	st := sumStock(active)
	st.fill(&s)
	s.AverageStock = st.quantity
	s.SalesQuantity = totals.ItemQuantity
	s.SalesAmount = totals.ItemAmount
	s.TurnoverRate, s.TurnoverDays = inventory.Turnover(s.SalesAmount, s.TotalValue, b.Days())
	return s
}

// BuildProductTurnover snapshot de un producto. El stock promedio es el stock actual y la
// rotación se mide en unidades: cantidad vendida / stock.
func BuildProductTurnover(date time.Time, b period.Bucket, p entity.Product, sales repository.ProductSales) entity.TurnoverSnapshot {
	s := newTurnover(entity.ScopeProduct, p.ID, b, date)
	sumStock([]entity.Product{p}).fill(&s)
	s.AverageStock = p.Stock
	s.SalesQuantity = zeroIfUnset(sales.Quantity)
	s.SalesAmount = zeroIfUnset(sales.Amount)
	s.TurnoverRate, s.TurnoverDays = inventory.Turnover(s.SalesQuantity, s.AverageStock, b.Days())
	s.StockStatus = inventory.StockStatus(p.Stock, p.AlertThreshold)
	return s
}

// BuildCategoryTurnover snapshot de una categoría sobre sus productos activos. Rotación monetaria
// como en el alcance general.
func BuildCategoryTurnover(date time.Time, b period.Bucket, category string, active []entity.Product, sales repository.CategorySales) entity.TurnoverSnapshot {
	s := newTurnover(entity.ScopeCategory, category, b, date)
	st := sumStock(active)
	st.fill(&s)
	s.AverageStock = st.quantity
	s.SalesQuantity = zeroIfUnset(sales.Quantity)
	s.SalesAmount = zeroIfUnset(sales.Amount)
	s.TurnoverRate, s.TurnoverDays = inventory.Turnover(s.SalesAmount, s.TotalValue, b.Days())
	return s
}

// zeroIfUnset normaliza el valor cero de decimal.Decimal (sin ventas en el período).
func zeroIfUnset(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}
