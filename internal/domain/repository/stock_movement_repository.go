package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockMovementRepository lectura de movimientos de stock.
type StockMovementRepository interface {
	// ListBetween devuelve los movimientos con fecha en [from, to], ordenados por fecha e ID.
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.StockMovement, error)
}
