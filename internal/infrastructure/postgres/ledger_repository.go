package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo persistencia de daily_ledger. El detalle en tránsito va como JSONB.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `product_id, date, opening_stock, incoming, outgoing, adjustments,
	closing_stock, in_transit_quantity, in_transit_detail`

func scanLedgerRow(row pgx.Row) (entity.DailyLedgerRow, error) {
	var r entity.DailyLedgerRow
	var detail []byte
	if err := row.Scan(
		&r.ProductID, &r.Date, &r.OpeningStock, &r.Incoming, &r.Outgoing, &r.Adjustments,
		&r.ClosingStock, &r.InTransitQuantity, &detail,
	); err != nil {
		return r, err
	}
	r.InTransitDetail = []entity.TransitDetail{}
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &r.InTransitDetail); err != nil {
			return r, fmt.Errorf("decodificar in_transit_detail: %w", err)
		}
	}
	return r, nil
}

// GetRow fila de (productID, date) o nil si no existe.
func (r *LedgerRepo) GetRow(ctx context.Context, productID string, date time.Time) (*entity.DailyLedgerRow, error) {
	query := `SELECT ` + ledgerColumns + ` FROM daily_ledger WHERE product_id = $1 AND date = $2`
	row, err := scanLedgerRow(r.q.QueryRow(ctx, query, productID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("ledger.GetRow", err)
	}
	return &row, nil
}

// Upsert inserta la fila o reemplaza todos sus valores.
func (r *LedgerRepo) Upsert(ctx context.Context, row entity.DailyLedgerRow) error {
	detail := row.InTransitDetail
	if detail == nil {
		detail = []entity.TransitDetail{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("ledger.Upsert: codificar detalle: %w", err)
	}
	query := `
		INSERT INTO daily_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (product_id, date) DO UPDATE SET
			opening_stock       = EXCLUDED.opening_stock,
			incoming            = EXCLUDED.incoming,
			outgoing            = EXCLUDED.outgoing,
			adjustments         = EXCLUDED.adjustments,
			closing_stock       = EXCLUDED.closing_stock,
			in_transit_quantity = EXCLUDED.in_transit_quantity,
			in_transit_detail   = EXCLUDED.in_transit_detail`
	_, err = r.q.Exec(ctx, query,
		row.ProductID, row.Date, row.OpeningStock, row.Incoming, row.Outgoing, row.Adjustments,
		row.ClosingStock, row.InTransitQuantity, payload,
	)
	if err != nil {
		return wrapErr("ledger.Upsert", err)
	}
	return nil
}

// ListByProduct filas del producto en [from, to] ordenadas por fecha.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID string, from, to time.Time) ([]entity.DailyLedgerRow, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM daily_ledger
		WHERE product_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`
	rows, err := r.q.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, wrapErr("ledger.ListByProduct", err)
	}
	defer rows.Close()

	list := []entity.DailyLedgerRow{}
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, wrapErr("ledger.ListByProduct scan", err)
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("ledger.ListByProduct rows", err)
	}
	return list, nil
}
