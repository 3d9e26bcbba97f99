package timeline

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

func formatETA(eta *time.Time) *string {
	if eta == nil {
		return nil
	}
	s := eta.Format(period.DateLayout)
	return &s
}

// ToTransitShipmentDTO serializa un envío con fechas YYYY-MM-DD.
func ToTransitShipmentDTO(t entity.TransitShipment) dto.TransitShipmentDTO {
	return dto.TransitShipmentDTO{
		ID:               t.ID,
		ProductID:        t.ProductID,
		SourceShipmentID: t.SourceShipmentID,
		Quantity:         t.Quantity,
		ShippedOn:        t.ShippedOn.Format(period.DateLayout),
		EstimatedArrival: formatETA(t.EstimatedArrival),
		Mode:             t.Mode,
		Status:           t.Status,
	}
}

// ToLedgerRowDTO serializa una fila del ledger con fechas YYYY-MM-DD.
func ToLedgerRowDTO(r entity.DailyLedgerRow) dto.LedgerRowDTO {
	detail := make([]dto.TransitDetailDTO, 0, len(r.InTransitDetail))
	for _, d := range r.InTransitDetail {
		detail = append(detail, dto.TransitDetailDTO{
			SourceShipmentID: d.SourceShipmentID,
			Quantity:         d.Quantity,
			ShippedOn:        d.ShippedOn.Format(period.DateLayout),
			EstimatedArrival: formatETA(d.EstimatedArrival),
			Mode:             d.Mode,
		})
	}
	return dto.LedgerRowDTO{
		ProductID:         r.ProductID,
		Date:              r.Date.Format(period.DateLayout),
		OpeningStock:      r.OpeningStock,
		Incoming:          r.Incoming,
		Outgoing:          r.Outgoing,
		Adjustments:       r.Adjustments,
		ClosingStock:      r.ClosingStock,
		InTransitQuantity: r.InTransitQuantity,
		InTransitDetail:   detail,
	}
}
