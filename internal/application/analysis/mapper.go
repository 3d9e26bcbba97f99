package analysis

import (
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

// ToTurnoverDTO convierte un snapshot de rotación a su forma de API.
func ToTurnoverDTO(s entity.TurnoverSnapshot) dto.TurnoverSnapshotDTO {
	return dto.TurnoverSnapshotDTO{
		Scope:             string(s.Scope),
		ScopeKey:          s.ScopeKey,
		Date:              s.Date.Format(period.DateLayout),
		Granularity:       string(s.Granularity),
		PeriodStart:       s.PeriodStart.Format(period.DateLayout),
		PeriodEnd:         s.PeriodEnd.Format(period.DateLayout),
		TotalProducts:     s.TotalProducts,
		ActiveProducts:    s.ActiveProducts,
		InactiveProducts:  s.InactiveProducts,
		StockoutProducts:  s.StockoutProducts,
		OverstockProducts: s.OverstockProducts,
		TotalQuantity:     s.TotalQuantity,
		TotalValue:        s.TotalValue,
		AverageStock:      s.AverageStock,
		SalesQuantity:     s.SalesQuantity,
		SalesAmount:       s.SalesAmount,
		TurnoverRate:      s.TurnoverRate,
		TurnoverDays:      s.TurnoverDays,
		HealthyStockRatio: s.HealthyStockRatio,
		StockoutRatio:     s.StockoutRatio,
		OverstockRatio:    s.OverstockRatio,
		StockStatus:       s.StockStatus,
	}
}

// ToProfitDTO convierte un snapshot de rentabilidad a su forma de API.
func ToProfitDTO(s entity.ProfitSnapshot) dto.ProfitSnapshotDTO {
	return dto.ProfitSnapshotDTO{
		Scope:                 string(s.Scope),
		ScopeKey:              s.ScopeKey,
		Date:                  s.Date.Format(period.DateLayout),
		Granularity:           string(s.Granularity),
		PeriodStart:           s.PeriodStart.Format(period.DateLayout),
		PeriodEnd:             s.PeriodEnd.Format(period.DateLayout),
		TotalProducts:         s.TotalProducts,
		TotalOrders:           s.TotalOrders,
		SalesQuantity:         s.SalesQuantity,
		SalesAmount:           s.SalesAmount,
		UnitCost:              s.UnitCost,
		ProductCost:           s.ProductCost,
		ShippingCost:          s.ShippingCost,
		OperationCost:         s.OperationCost,
		OtherCost:             s.OtherCost,
		TotalCost:             s.TotalCost,
		GrossProfit:           s.GrossProfit,
		NetProfit:             s.NetProfit,
		GrossProfitRate:       s.GrossProfitRate,
		NetProfitRate:         s.NetProfitRate,
		AverageOrderValue:     s.AverageOrderValue,
		AverageProfitPerOrder: s.AverageProfitPerOrder,
	}
}
