package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo lectura de stock_movements.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// ListBetween movimientos con occurred_on en [from, to], ordenados por fecha e ID.
func (r *StockMovementRepo) ListBetween(ctx context.Context, from, to time.Time) ([]entity.StockMovement, error) {
	const query = `
		SELECT id, product_id, kind, quantity, previous_stock, current_stock, occurred_on, reference
		FROM stock_movements
		WHERE occurred_on BETWEEN $1 AND $2
		ORDER BY occurred_on, id`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, wrapErr("movements.ListBetween", err)
	}
	defer rows.Close()

	var list []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var kind string
		if err := rows.Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &m.PreviousStock, &m.CurrentStock, &m.OccurredOn, &m.Reference); err != nil {
			return nil, wrapErr("movements.ListBetween scan", err)
		}
		m.Kind = entity.MovementKind(kind)
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("movements.ListBetween rows", err)
	}
	return list, nil
}
