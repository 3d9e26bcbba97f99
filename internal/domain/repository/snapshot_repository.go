package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

// SnapshotFilter filtro de listados de snapshots. Los campos vacíos no filtran; Limit 0 = sin límite.
type SnapshotFilter struct {
	Scope       entity.Scope
	ScopeKey    string
	Granularity period.Granularity
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int

	// ScopeKeys restringe a esas claves. nil no filtra.
	ScopeKeys   []string
	// StockStatus solo lo aplica TurnoverRepository.
	StockStatus string
	// MinNetRate y MaxNetRate (inclusive) solo los aplica ProfitRepository.
	MinNetRate  decimal.NullDecimal
	MaxNetRate  decimal.NullDecimal
}

// TurnoverRepository persistencia de snapshots de rotación.
type TurnoverRepository interface {
	Upsert(ctx context.Context, s entity.TurnoverSnapshot) error
	// List ordena por fecha ascendente y luego por alcance y clave.
	List(ctx context.Context, f SnapshotFilter) ([]entity.TurnoverSnapshot, error)
}

// ProfitRepository persistencia de snapshots de rentabilidad.
type ProfitRepository interface {
	Upsert(ctx context.Context, s entity.ProfitSnapshot) error
	// List ordena por fecha ascendente y luego por alcance y clave.
	List(ctx context.Context, f SnapshotFilter) ([]entity.ProfitSnapshot, error)
}
