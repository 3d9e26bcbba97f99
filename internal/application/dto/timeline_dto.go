package dto

import "github.com/shopspring/decimal"

// GenerateTimelineRequest body de POST /api/timeline/generate.
type GenerateTimelineRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// TimelineQuery parámetros de GET /api/timeline.
type TimelineQuery struct {
	ProductID string `query:"product_id" validate:"required"`
	StartDate string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"required,datetime=2006-01-02"`
}

// TransitDetailDTO un envío dentro de una fila del ledger.
type TransitDetailDTO struct {
	SourceShipmentID string          `json:"source_shipment_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ShippedOn        string          `json:"shipped_on"`
	EstimatedArrival *string         `json:"estimated_arrival"`
	Mode             string          `json:"mode"`
}

// LedgerRowDTO fila del ledger diario.
type LedgerRowDTO struct {
	ProductID         string             `json:"product_id"`
	Date              string             `json:"date"`
	OpeningStock      decimal.Decimal    `json:"opening_stock"`
	Incoming          decimal.Decimal    `json:"incoming"`
	Outgoing          decimal.Decimal    `json:"outgoing"`
	Adjustments       decimal.Decimal    `json:"adjustments"`
	ClosingStock      decimal.Decimal    `json:"closing_stock"`
	InTransitQuantity decimal.Decimal    `json:"in_transit_quantity"`
	InTransitDetail   []TransitDetailDTO `json:"in_transit_detail"`
}

// TimelineResponse filas de un producto en un rango.
type TimelineResponse struct {
	ProductID string         `json:"product_id"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Rows      []LedgerRowDTO `json:"rows"`
}

// TransitModeDTO totales en tránsito de un modo de transporte.
type TransitModeDTO struct {
	Mode     string          `json:"mode"`
	Quantity decimal.Decimal `json:"quantity"`
	Records  int             `json:"records"`
}

// TransitSummaryDTO resumen de mercancía en tránsito.
type TransitSummaryDTO struct {
	ProductID     string           `json:"product_id,omitempty"`
	TotalQuantity decimal.Decimal  `json:"total_quantity"`
	TotalRecords  int              `json:"total_records"`
	ByMode        []TransitModeDTO `json:"by_mode"`
}

// TransitListQuery parámetros de GET /api/transit. start_date y end_date acotan la fecha de despacho.
type TransitListQuery struct {
	PageRequest
	ProductID        string `query:"product_id"`
	SourceShipmentID string `query:"source_shipment_id"`
	Mode             string `query:"mode" validate:"omitempty,oneof=SEA AIR"`
	Status           string `query:"status" validate:"omitempty,oneof=IN_TRANSIT ARRIVED CANCELLED"`
	StartDate        string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate          string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// TransitShipmentDTO un envío del listado de tránsito.
type TransitShipmentDTO struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	SourceShipmentID string          `json:"source_shipment_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ShippedOn        string          `json:"shipped_on"`
	EstimatedArrival *string         `json:"estimated_arrival"`
	Mode             string          `json:"mode"`
	Status           string          `json:"status"`
}

// TransitListResponse listado paginado de envíos.
type TransitListResponse struct {
	Items []TransitShipmentDTO `json:"items"`
	Page  PageResponse         `json:"page"`
}
