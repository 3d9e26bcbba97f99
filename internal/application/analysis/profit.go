package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func newProfit(scope entity.Scope, key string, b period.Bucket, date time.Time) entity.ProfitSnapshot {
	return entity.ProfitSnapshot{
		SnapshotKey:           entity.SnapshotKey{Scope: scope, ScopeKey: key, Date: date, Granularity: b.Granularity},
		PeriodStart:           b.Start,
		PeriodEnd:             b.End,
		UnitCost:              decimal.Zero,
		OperationCost:         decimal.Zero,
		OtherCost:             decimal.Zero,
		AverageOrderValue:     decimal.Zero,
		AverageProfitPerOrder: decimal.Zero,
	}
}

// applyProfitRates márgenes bruto y neto sobre ventas, 0 si no hubo ventas.
func applyProfitRates(s *entity.ProfitSnapshot) {
	s.GrossProfitRate = inventory.Percentage(s.GrossProfit, s.SalesAmount)
	s.NetProfitRate = inventory.Percentage(s.NetProfit, s.SalesAmount)
}

// BuildOverallProfit snapshot general: ventas = Σ total de órdenes menos las líneas sin producto
// en el catálogo; costos de envío reales de las órdenes más costos fijos de operación y otros
// por orden.
func BuildOverallProfit(date time.Time, b period.Bucket, activeProducts int, totals repository.OrderTotals, costs inventory.CostModel) entity.ProfitSnapshot {
	s := newProfit(entity.ScopeOverall, entity.OverallKey, b, date)
	s.TotalProducts = activeProducts
	s.TotalOrders = totals.Orders
	s.SalesQuantity = zeroIfUnset(totals.ItemQuantity)
	s.SalesAmount = zeroIfUnset(totals.AttributedSales())
	s.ProductCost = zeroIfUnset(totals.ProductCost)
	s.ShippingCost = zeroIfUnset(totals.ShippingFee)
	s.OperationCost = costs.OperationFor(totals.Orders)
	s.OtherCost = costs.OtherFor(totals.Orders)
	s.TotalCost = s.ProductCost.Add(s.ShippingCost).Add(s.OperationCost).Add(s.OtherCost)
	s.GrossProfit = s.SalesAmount.Sub(s.ProductCost)
	s.NetProfit = s.SalesAmount.Sub(s.TotalCost)
	applyProfitRates(&s)
	return s
}

// BuildProductProfit snapshot de un producto: costo de catálogo × unidades y envío por unidad.
func BuildProductProfit(date time.Time, b period.Bucket, p entity.Product, sales repository.ProductSales, costs inventory.CostModel) entity.ProfitSnapshot {
	s := newProfit(entity.ScopeProduct, p.ID, b, date)
	qty := zeroIfUnset(sales.Quantity)
	s.TotalProducts = 1
	s.TotalOrders = sales.Orders
	s.SalesQuantity = qty
	s.SalesAmount = zeroIfUnset(sales.Amount)
	s.UnitCost = p.Cost
	s.ProductCost = p.Cost.Mul(qty)
	s.ShippingCost = costs.ShippingFor(qty)
	s.TotalCost = s.ProductCost.Add(s.ShippingCost)
	s.GrossProfit = s.SalesAmount.Sub(s.ProductCost)
	s.NetProfit = s.GrossProfit.Sub(s.ShippingCost)
	applyProfitRates(&s)
	return s
}

// BuildCategoryProfit snapshot de una categoría: envío por unidad y operación por orden distinta.
func BuildCategoryProfit(date time.Time, b period.Bucket, category string, activeProducts int, sales repository.CategorySales, costs inventory.CostModel) entity.ProfitSnapshot {
	s := newProfit(entity.ScopeCategory, category, b, date)
	qty := zeroIfUnset(sales.Quantity)
	s.TotalProducts = activeProducts
	s.TotalOrders = sales.Orders
	s.SalesQuantity = qty
	s.SalesAmount = zeroIfUnset(sales.Amount)
	s.ProductCost = zeroIfUnset(sales.ProductCost)
	s.ShippingCost = costs.ShippingFor(qty)
	s.OperationCost = costs.OperationFor(sales.Orders)
	s.TotalCost = s.ProductCost.Add(s.ShippingCost).Add(s.OperationCost)
	s.GrossProfit = s.SalesAmount.Sub(s.ProductCost)
	s.NetProfit = s.GrossProfit.Sub(s.ShippingCost).Sub(s.OperationCost)
	applyProfitRates(&s)
	s.AverageOrderValue = inventory.Average(s.SalesAmount, sales.Orders)
	s.AverageProfitPerOrder = inventory.Average(s.NetProfit, sales.Orders)
	return s
}
