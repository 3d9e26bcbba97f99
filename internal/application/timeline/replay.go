package timeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReplayDay construye la fila del ledger de productID en date.
//
//	incoming    = Σ |q| de IN
//	outgoing    = Σ |q| de OUT
//	adjustments = Σ q  de ADJUST y COUNT (con signo)
//	closing     = opening + incoming - outgoing + adjustments
//
// transits son los envíos candidatos del producto; solo cuentan los que están en tránsito en date.
func ReplayDay(productID string, date time.Time, opening decimal.Decimal, moves []entity.StockMovement, transits []entity.TransitShipment) entity.DailyLedgerRow {
	row := entity.DailyLedgerRow{
		ProductID:         productID,
		Date:              date,
		OpeningStock:      opening,
		Incoming:          decimal.Zero,
		Outgoing:          decimal.Zero,
		Adjustments:       decimal.Zero,
		InTransitQuantity: decimal.Zero,
		InTransitDetail:   []entity.TransitDetail{},
	}

	for _, m := range moves {
		switch m.Kind {
		case entity.MovementIn:
			row.Incoming = row.Incoming.Add(m.Quantity.Abs())
		case entity.MovementOut:
			row.Outgoing = row.Outgoing.Add(m.Quantity.Abs())
		case entity.MovementAdjust, entity.MovementCount:
			row.Adjustments = row.Adjustments.Add(m.Quantity)
		}
	}
	row.ClosingStock = opening.Add(row.Incoming).Sub(row.Outgoing).Add(row.Adjustments)

	for _, t := range transits {
		if !t.InTransitOn(date) {
			continue
		}
		row.InTransitQuantity = row.InTransitQuantity.Add(t.Quantity)
		row.InTransitDetail = append(row.InTransitDetail, entity.TransitDetail{
			SourceShipmentID: t.SourceShipmentID,
			Quantity:         t.Quantity,
			ShippedOn:        t.ShippedOn,
			EstimatedArrival: t.EstimatedArrival,
			Mode:             t.Mode,
		})
	}
	return row
}
