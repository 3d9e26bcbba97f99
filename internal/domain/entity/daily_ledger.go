package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransitDetail un envío que contribuye a la cantidad en tránsito de una fila del ledger.
type TransitDetail struct {
	SourceShipmentID string          `json:"source_shipment_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ShippedOn        time.Time       `json:"shipped_on"`
	EstimatedArrival *time.Time      `json:"estimated_arrival,omitempty"`
	Mode             string          `json:"mode"`
}

// DailyLedgerRow fila del ledger diario por (producto, fecha).
// ClosingStock = OpeningStock + Incoming - Outgoing + Adjustments.
type DailyLedgerRow struct {
	ProductID         string
	Date              time.Time
	OpeningStock      decimal.Decimal
	Incoming          decimal.Decimal
	Outgoing          decimal.Decimal
	Adjustments       decimal.Decimal
	ClosingStock      decimal.Decimal
	InTransitQuantity decimal.Decimal
	InTransitDetail   []TransitDetail
}
