package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.TurnoverRepository = (*TurnoverRepo)(nil)
	_ repository.ProfitRepository   = (*ProfitRepo)(nil)
)

// cond condición con un único parámetro; sql lleva un %d para su posición.
type cond struct {
	sql string
	v   any
}

// snapshotWhere arma WHERE, ORDER BY y paginación comunes a ambas tablas de snapshots.
// extra agrega condiciones propias de cada tabla.
func snapshotWhere(f repository.SnapshotFilter, extra ...cond) (string, []any) {
	var conds []string
	var args []any
	add := func(sql string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(sql, len(args)))
	}
	if f.Scope != "" {
		add("scope = $%d", string(f.Scope))
	}
	if f.ScopeKey != "" {
		add("scope_key = $%d", f.ScopeKey)
	}
	if f.ScopeKeys != nil {
		add("scope_key = ANY($%d)", f.ScopeKeys)
	}
	for _, c := range extra {
		add(c.sql, c.v)
	}
	if f.Granularity != "" {
		add("granularity = $%d", string(f.Granularity))
	}
	if !f.From.IsZero() {
		add("date >= $%d", period.Day(f.From))
	}
	if !f.To.IsZero() {
		add("date <= $%d", period.Day(f.To))
	}

	var sb strings.Builder
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY date, scope, scope_key, granularity")
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

func scanKey(k *entity.SnapshotKey, scope, granularity string) {
	k.Scope = entity.Scope(scope)
	k.Granularity = period.Granularity(granularity)
}

// ── Rotación ──────────────────────────────────────────────────────────────────

// TurnoverRepo persistencia de turnover_snapshots.
type TurnoverRepo struct {
	q Querier
}

// NewTurnoverRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTurnoverRepository(q Querier) *TurnoverRepo {
	return &TurnoverRepo{q: q}
}

const turnoverColumns = `scope, scope_key, date, granularity, period_start, period_end,
	total_products, active_products, inactive_products, stockout_products, overstock_products,
	total_quantity, total_value, average_stock, sales_quantity, sales_amount,
	turnover_rate, turnover_days, healthy_stock_ratio, stockout_ratio, overstock_ratio, stock_status`

// Upsert inserta el snapshot o reemplaza todos sus valores.
func (r *TurnoverRepo) Upsert(ctx context.Context, s entity.TurnoverSnapshot) error {
	query := `
		INSERT INTO turnover_snapshots (` + turnoverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (scope, scope_key, date, granularity) DO UPDATE SET
			period_start        = EXCLUDED.period_start,
			period_end          = EXCLUDED.period_end,
			total_products      = EXCLUDED.total_products,
			active_products     = EXCLUDED.active_products,
			inactive_products   = EXCLUDED.inactive_products,
			stockout_products   = EXCLUDED.stockout_products,
			overstock_products  = EXCLUDED.overstock_products,
			total_quantity      = EXCLUDED.total_quantity,
			total_value         = EXCLUDED.total_value,
			average_stock       = EXCLUDED.average_stock,
			sales_quantity      = EXCLUDED.sales_quantity,
			sales_amount        = EXCLUDED.sales_amount,
			turnover_rate       = EXCLUDED.turnover_rate,
			turnover_days       = EXCLUDED.turnover_days,
			healthy_stock_ratio = EXCLUDED.healthy_stock_ratio,
			stockout_ratio      = EXCLUDED.stockout_ratio,
			overstock_ratio     = EXCLUDED.overstock_ratio,
			stock_status        = EXCLUDED.stock_status`
	_, err := r.q.Exec(ctx, query,
		string(s.Scope), s.ScopeKey, period.Day(s.Date), string(s.Granularity), s.PeriodStart, s.PeriodEnd,
		s.TotalProducts, s.ActiveProducts, s.InactiveProducts, s.StockoutProducts, s.OverstockProducts,
		s.TotalQuantity, s.TotalValue, s.AverageStock, s.SalesQuantity, s.SalesAmount,
		s.TurnoverRate, s.TurnoverDays, s.HealthyStockRatio, s.StockoutRatio, s.OverstockRatio, s.StockStatus,
	)
	if err != nil {
		return wrapErr("turnover.Upsert", err)
	}
	return nil
}

// List snapshots que cumplen el filtro, por fecha, alcance y clave.
func (r *TurnoverRepo) List(ctx context.Context, f repository.SnapshotFilter) ([]entity.TurnoverSnapshot, error) {
	var extra []cond
	if f.StockStatus != "" {
		extra = append(extra, cond{"stock_status = $%d", f.StockStatus})
	}
	where, args := snapshotWhere(f, extra...)
	rows, err := r.q.Query(ctx, `SELECT `+turnoverColumns+` FROM turnover_snapshots`+where, args...)
	if err != nil {
		return nil, wrapErr("turnover.List", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TurnoverSnapshot, error) {
		var s entity.TurnoverSnapshot
		var scope, granularity string
		err := row.Scan(
			&scope, &s.ScopeKey, &s.Date, &granularity, &s.PeriodStart, &s.PeriodEnd,
			&s.TotalProducts, &s.ActiveProducts, &s.InactiveProducts, &s.StockoutProducts, &s.OverstockProducts,
			&s.TotalQuantity, &s.TotalValue, &s.AverageStock, &s.SalesQuantity, &s.SalesAmount,
			&s.TurnoverRate, &s.TurnoverDays, &s.HealthyStockRatio, &s.StockoutRatio, &s.OverstockRatio, &s.StockStatus,
		)
		scanKey(&s.SnapshotKey, scope, granularity)
		return s, err
	})
	if err != nil {
		return nil, wrapErr("turnover.List scan", err)
	}
	return list, nil
}

// ── Rentabilidad ──────────────────────────────────────────────────────────────

// ProfitRepo persistencia de profit_snapshots.
type ProfitRepo struct {
	q Querier
}

// NewProfitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProfitRepository(q Querier) *ProfitRepo {
	return &ProfitRepo{q: q}
}

const profitColumns = `scope, scope_key, date, granularity, period_start, period_end,
	total_products, total_orders, sales_quantity, sales_amount, unit_cost, product_cost,
	shipping_cost, operation_cost, other_cost, total_cost, gross_profit, net_profit,
	gross_profit_rate, net_profit_rate, average_order_value, average_profit_per_order`

// Upsert inserta el snapshot o reemplaza todos sus valores.
func (r *ProfitRepo) Upsert(ctx context.Context, s entity.ProfitSnapshot) error {
	query := `
		INSERT INTO profit_snapshots (` + profitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (scope, scope_key, date, granularity) DO UPDATE SET
			period_start             = EXCLUDED.period_start,
			period_end               = EXCLUDED.period_end,
			total_products           = EXCLUDED.total_products,
			total_orders             = EXCLUDED.total_orders,
			sales_quantity           = EXCLUDED.sales_quantity,
			sales_amount             = EXCLUDED.sales_amount,
			unit_cost                = EXCLUDED.unit_cost,
			product_cost             = EXCLUDED.product_cost,
			shipping_cost            = EXCLUDED.shipping_cost,
			operation_cost           = EXCLUDED.operation_cost,
			other_cost               = EXCLUDED.other_cost,
			total_cost               = EXCLUDED.total_cost,
			gross_profit             = EXCLUDED.gross_profit,
			net_profit               = EXCLUDED.net_profit,
			gross_profit_rate        = EXCLUDED.gross_profit_rate,
			net_profit_rate          = EXCLUDED.net_profit_rate,
			average_order_value      = EXCLUDED.average_order_value,
			average_profit_per_order = EXCLUDED.average_profit_per_order`
	_, err := r.q.Exec(ctx, query,
		string(s.Scope), s.ScopeKey, period.Day(s.Date), string(s.Granularity), s.PeriodStart, s.PeriodEnd,
		s.TotalProducts, s.TotalOrders, s.SalesQuantity, s.SalesAmount, s.UnitCost, s.ProductCost,
		s.ShippingCost, s.OperationCost, s.OtherCost, s.TotalCost, s.GrossProfit, s.NetProfit,
		s.GrossProfitRate, s.NetProfitRate, s.AverageOrderValue, s.AverageProfitPerOrder,
	)
	if err != nil {
		return wrapErr("profit.Upsert", err)
	}
	return nil
}

// List snapshots que cumplen el filtro, por fecha, alcance y clave.
func (r *ProfitRepo) List(ctx context.Context, f repository.SnapshotFilter) ([]entity.ProfitSnapshot, error) {
	var extra []cond
	if f.MinNetRate.Valid {
		extra = append(extra, cond{"net_profit_rate >= $%d", f.MinNetRate.Decimal})
	}
	if f.MaxNetRate.Valid {
		extra = append(extra, cond{"net_profit_rate <= $%d", f.MaxNetRate.Decimal})
	}
	where, args := snapshotWhere(f, extra...)
	rows, err := r.q.Query(ctx, `SELECT `+profitColumns+` FROM profit_snapshots`+where, args...)
	if err != nil {
		return nil, wrapErr("profit.List", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ProfitSnapshot, error) {
		var s entity.ProfitSnapshot
		var scope, granularity string
		err := row.Scan(
			&scope, &s.ScopeKey, &s.Date, &granularity, &s.PeriodStart, &s.PeriodEnd,
			&s.TotalProducts, &s.TotalOrders, &s.SalesQuantity, &s.SalesAmount, &s.UnitCost, &s.ProductCost,
			&s.ShippingCost, &s.OperationCost, &s.OtherCost, &s.TotalCost, &s.GrossProfit, &s.NetProfit,
			&s.GrossProfitRate, &s.NetProfitRate, &s.AverageOrderValue, &s.AverageProfitPerOrder,
		)
		scanKey(&s.SnapshotKey, scope, granularity)
		return s, err
	})
	if err != nil {
		return nil, wrapErr("profit.List scan", err)
	}
	return list, nil
}
