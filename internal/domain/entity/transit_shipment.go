package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de transporte.
const (
	TransitModeSea = "SEA"
	TransitModeAir = "AIR"
)

// Estados de un envío en tránsito.
const (
	TransitStatusInTransit = "IN_TRANSIT"
	TransitStatusArrived   = "ARRIVED"
	TransitStatusCancelled = "CANCELLED"
)

// TransitShipment mercancía despachada por el proveedor que aún no ingresa a bodega.
type TransitShipment struct {
	ID               string
	ProductID        string
	SourceShipmentID string // packing list de origen
	Quantity         decimal.Decimal
	ShippedOn        time.Time
	EstimatedArrival *time.Time // nil = sin fecha estimada
	Mode             string     // SEA, AIR
	Status           string     // IN_TRANSIT, ARRIVED, CANCELLED
}

// InTransitOn indica si el envío cuenta como en tránsito al cierre de la fecha date:
// estado IN_TRANSIT, despachado a más tardar ese día y sin llegada estimada o con llegada posterior.
func (s TransitShipment) InTransitOn(date time.Time) bool {
	if s.Status != TransitStatusInTransit {
		return false
	}
	if s.ShippedOn.After(date) {
		return false
	}
	return s.EstimatedArrival == nil || s.EstimatedArrival.After(date)
}
