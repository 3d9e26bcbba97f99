package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TransitShipmentRepository = (*TransitRepo)(nil)

// TransitRepo lectura de transit_shipments.
type TransitRepo struct {
	q Querier
}

// NewTransitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransitRepository(q Querier) *TransitRepo {
	return &TransitRepo{q: q}
}

// ListInTransitOverlapping envíos IN_TRANSIT despachados hasta to cuya llegada estimada es
// posterior a from o no existe.
func (r *TransitRepo) ListInTransitOverlapping(ctx context.Context, from, to time.Time) ([]entity.TransitShipment, error) {
	const query = `
		SELECT id, product_id, source_shipment_id, quantity, shipped_on, estimated_arrival, mode, status
		FROM transit_shipments
		WHERE status = $1
		  AND shipped_on <= $3
		  AND (estimated_arrival IS NULL OR estimated_arrival > $2)
		ORDER BY shipped_on, id`
	rows, err := r.q.Query(ctx, query, entity.TransitStatusInTransit, from, to)
	if err != nil {
		return nil, wrapErr("transit.ListInTransitOverlapping", err)
	}
	defer rows.Close()

	var list []entity.TransitShipment
	for rows.Next() {
		var t entity.TransitShipment
		if err := rows.Scan(
			&t.ID, &t.ProductID, &t.SourceShipmentID, &t.Quantity, &t.ShippedOn,
			&t.EstimatedArrival, &t.Mode, &t.Status,
		); err != nil {
			return nil, wrapErr("transit.ListInTransitOverlapping scan", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("transit.ListInTransitOverlapping rows", err)
	}
	return list, nil
}

// TotalsByMode cantidad y registros IN_TRANSIT por modo. productID vacío agrupa todos.
func (r *TransitRepo) TotalsByMode(ctx context.Context, productID string) ([]repository.TransitModeTotals, error) {
	const query = `
		SELECT mode, COALESCE(SUM(quantity), 0), COUNT(*)
		FROM transit_shipments
		WHERE status = $1
		  AND ($2 = '' OR product_id = $2)
		GROUP BY mode
		ORDER BY mode`
	rows, err := r.q.Query(ctx, query, entity.TransitStatusInTransit, productID)
	if err != nil {
		return nil, wrapErr("transit.TotalsByMode", err)
	}
	defer rows.Close()

	var list []repository.TransitModeTotals
	for rows.Next() {
		var t repository.TransitModeTotals
		if err := rows.Scan(&t.Mode, &t.Quantity, &t.Records); err != nil {
			return nil, wrapErr("transit.TotalsByMode scan", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("transit.TotalsByMode rows", err)
	}
	return list, nil
}

// ListShipments envíos que cumplen el filtro, de shipped_on descendente.
func (r *TransitRepo) ListShipments(ctx context.Context, f repository.TransitFilter) ([]entity.TransitShipment, error) {
	where, args := transitWhere(f)
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, source_shipment_id, quantity, shipped_on, estimated_arrival, mode, status
		FROM transit_shipments`+where, args...)
	if err != nil {
		return nil, wrapErr("transit.ListShipments", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TransitShipment, error) {
		var t entity.TransitShipment
		err := row.Scan(
			&t.ID, &t.ProductID, &t.SourceShipmentID, &t.Quantity, &t.ShippedOn,
			&t.EstimatedArrival, &t.Mode, &t.Status,
		)
		return t, err
	})
	if err != nil {
		return nil, wrapErr("transit.ListShipments scan", err)
	}
	return list, nil
}

func transitWhere(f repository.TransitFilter) (string, []any) {
	var conds []cond
	if f.ProductID != "" {
		conds = append(conds, cond{"product_id = $%d", f.ProductID})
	}
	if f.SourceShipmentID != "" {
		conds = append(conds, cond{"source_shipment_id = $%d", f.SourceShipmentID})
	}
	if f.Mode != "" {
		conds = append(conds, cond{"mode = $%d", f.Mode})
	}
	if f.Status != "" {
		conds = append(conds, cond{"status = $%d", f.Status})
	}
	if !f.From.IsZero() {
		conds = append(conds, cond{"shipped_on >= $%d", period.Day(f.From)})
	}
	if !f.To.IsZero() {
		conds = append(conds, cond{"shipped_on <= $%d", period.Day(f.To)})
	}

	var sb strings.Builder
	args := make([]any, 0, len(conds)+2)
	for i, c := range conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, c.v)
		fmt.Fprintf(&sb, c.sql, len(args))
	}
	sb.WriteString(" ORDER BY shipped_on DESC, id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return sb.String(), args
}
