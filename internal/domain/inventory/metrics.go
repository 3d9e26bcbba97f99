package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DaysPerYear base de anualización de las tasas de rotación.
const DaysPerYear = 365

// RatePlaces decimales con que se redondean tasas, porcentajes y promedios.
const RatePlaces = 4

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(DaysPerYear)
	two         = decimal.NewFromInt(2)
)

// SafeDiv divide num/den y devuelve 0 cuando den es 0.
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// Turnover tasa de rotación anualizada y días de inventario de un período:
//
//	rate = (ventas / base) × (365 / días del período)
//	days = 365 / rate = base × días del período / ventas
//
// Ambos se calculan sobre el valor exacto y se redondean al final, de modo que una tasa
// menor a la precisión guardada conserva sus días. Devuelve 0 y 0 si no hubo ventas, si la
// base no es positiva o si el período no tiene días.
func Turnover(sales, base decimal.Decimal, periodDays int) (rate, days decimal.Decimal) {
	if !sales.IsPositive() || !base.IsPositive() || periodDays <= 0 {
		return decimal.Zero, decimal.Zero
	}
	exposure := base.Mul(decimal.NewFromInt(int64(periodDays)))
	rate = sales.Mul(daysPerYear).Div(exposure)
	days = exposure.Div(sales)
	return rate.Round(RatePlaces), days.Round(RatePlaces)
}

// Percentage part / total × 100, 0 cuando total es 0.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(RatePlaces)
}

// CountRatio porcentaje entero n / total × 100, 0 cuando total es 0.
func CountRatio(n, total int) decimal.Decimal {
	return Percentage(decimal.NewFromInt(int64(n)), decimal.NewFromInt(int64(total)))
}

// Average num / den redondeado, 0 cuando den es 0.
func Average(num decimal.Decimal, den int) decimal.Decimal {
	return SafeDiv(num, decimal.NewFromInt(int64(den))).Round(RatePlaces)
}

// IsStockout stock igual a cero.
func IsStockout(stock decimal.Decimal) bool {
	return stock.IsZero()
}

// IsOverstock stock mayor al doble del umbral de alerta.
func IsOverstock(stock, alertThreshold decimal.Decimal) bool {
	return stock.GreaterThan(alertThreshold.Mul(two))
}

// StockStatus clasifica el stock de un producto.
func StockStatus(stock, alertThreshold decimal.Decimal) string {
	switch {
	case IsStockout(stock):
		return entity.StockStatusStockout
	case IsOverstock(stock, alertThreshold):
		return entity.StockStatusOverstock
	default:
		return entity.StockStatusNormal
	}
}

// StockHealth conteos de salud de stock sobre un conjunto de productos.
type StockHealth struct {
	Total     int
	Active    int // stock > 0
	Stockout  int
	Overstock int
}

// Add acumula un producto.
func (h *StockHealth) Add(stock, alertThreshold decimal.Decimal) {
	h.Total++
	if stock.IsPositive() {
		h.Active++
	}
	if IsStockout(stock) {
		h.Stockout++
	}
	if IsOverstock(stock, alertThreshold) {
		h.Overstock++
	}
}

// Inactive productos sin stock positivo.
func (h StockHealth) Inactive() int {
	return h.Total - h.Active
}

// HealthyRatio porcentaje de productos ni agotados ni sobre-abastecidos.
func (h StockHealth) HealthyRatio() decimal.Decimal {
	return CountRatio(h.Total-h.Stockout-h.Overstock, h.Total)
}

// StockoutRatio porcentaje de productos agotados.
func (h StockHealth) StockoutRatio() decimal.Decimal {
	return CountRatio(h.Stockout, h.Total)
}

// OverstockRatio porcentaje de productos sobre-abastecidos.
func (h StockHealth) OverstockRatio() decimal.Decimal {
	return CountRatio(h.Overstock, h.Total)
}
