package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// LedgerRepository persistencia del ledger diario (upsert idempotente por producto y fecha).
type LedgerRepository interface {
	// GetRow devuelve la fila de (productID, date) o nil si no existe.
	GetRow(ctx context.Context, productID string, date time.Time) (*entity.DailyLedgerRow, error)
	Upsert(ctx context.Context, row entity.DailyLedgerRow) error
	// ListByProduct filas del producto en [from, to] ordenadas por fecha.
	ListByProduct(ctx context.Context, productID string, from, to time.Time) ([]entity.DailyLedgerRow, error)
}
