package inventory

import "github.com/shopspring/decimal"

// Costos por defecto del modelo de rentabilidad.
var (
	DefaultShippingPerUnit   = decimal.NewFromInt(5)
	DefaultOperationPerOrder = decimal.NewFromInt(10)
	DefaultOtherPerOrder     = decimal.NewFromInt(5)
)

// CostModel costos fijos aplicados al cálculo de utilidad neta.
type CostModel struct {
	ShippingPerUnit   decimal.Decimal // envío por unidad vendida (alcances product y category)
	OperationPerOrder decimal.Decimal // operación por orden
	OtherPerOrder     decimal.Decimal // otros costos por orden (solo alcance overall)
}

// DefaultCostModel devuelve el modelo con los valores por defecto.
func DefaultCostModel() CostModel {
	return CostModel{
		ShippingPerUnit:   DefaultShippingPerUnit,
		OperationPerOrder: DefaultOperationPerOrder,
		OtherPerOrder:     DefaultOtherPerOrder,
	}
}

// ShippingFor costo de envío para qty unidades.
func (m CostModel) ShippingFor(qty decimal.Decimal) decimal.Decimal {
	return qty.Mul(m.ShippingPerUnit)
}

// OperationFor costo de operación para n órdenes.
func (m CostModel) OperationFor(orders int) decimal.Decimal {
	return decimal.NewFromInt(int64(orders)).Mul(m.OperationPerOrder)
}

// OtherFor otros costos para n órdenes.
func (m CostModel) OtherFor(orders int) decimal.Decimal {
	return decimal.NewFromInt(int64(orders)).Mul(m.OtherPerOrder)
}
