package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// TransitModeTotals cantidad y número de registros en tránsito para un modo de transporte.
type TransitModeTotals struct {
	Mode     string
	Quantity decimal.Decimal
	Records  int
}

// TransitFilter filtro del listado de envíos. Los campos vacíos no filtran; From y To acotan
// shipped_on (inclusive); Limit 0 = sin límite.
type TransitFilter struct {
	ProductID        string
	SourceShipmentID string
	Mode             string
	Status           string
	From             time.Time
	To               time.Time
	Limit            int
	Offset           int
}

// TransitShipmentRepository lectura de envíos en tránsito.
type TransitShipmentRepository interface {
	// ListInTransitOverlapping devuelve los envíos IN_TRANSIT que pueden contar como en tránsito
	// en algún día de [from, to]: despachados a más tardar en to y sin llegada o con llegada posterior a from.
	ListInTransitOverlapping(ctx context.Context, from, to time.Time) ([]entity.TransitShipment, error)
	// TotalsByMode agrupa los envíos actualmente IN_TRANSIT por modo. productID vacío = todos.
	TotalsByMode(ctx context.Context, productID string) ([]TransitModeTotals, error)
	// ListShipments envíos de cualquier estado, del despacho más reciente al más antiguo.
	ListShipments(ctx context.Context, f TransitFilter) ([]entity.TransitShipment, error)
}
