package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo agregados de solo lectura sobre orders y order_items. Solo cuentan las órdenes
// completadas; los COALESCE dejan en 0 las ventanas sin ventas.
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador de ventas.
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// OrderTotals totales de órdenes y de líneas en [from, to]. El costo de producto usa el costo
// actual del catálogo. Las líneas de productos desconocidos quedan fuera de los agregados de
// líneas y se devuelven en unknown_lines / unknown_amount.
func (r *SalesRepo) OrderTotals(ctx context.Context, from, to time.Time) (repository.OrderTotals, error) {
	const query = `
	WITH completed AS (
	    SELECT id, total, shipping_fee
	    FROM orders
	    WHERE status = $1 AND order_date BETWEEN $2 AND $3
	)
	SELECT
	    (SELECT COUNT(*)                        FROM completed) AS orders,
	    (SELECT COALESCE(SUM(total), 0)         FROM completed) AS sales,
	    (SELECT COALESCE(SUM(shipping_fee), 0)  FROM completed) AS shipping_fee,
	    COALESCE(SUM(i.quantity) FILTER (WHERE p.id IS NOT NULL), 0) AS item_quantity,
	    COALESCE(SUM(i.total)    FILTER (WHERE p.id IS NOT NULL), 0) AS item_amount,
	    COALESCE(SUM(i.quantity * p.cost), 0)                         AS product_cost,
	    COUNT(*)                 FILTER (WHERE p.id IS NULL)          AS unknown_lines,
	    COALESCE(SUM(i.total)    FILTER (WHERE p.id IS NULL), 0)      AS unknown_amount
	FROM completed c
	JOIN order_items   i ON i.order_id = c.id
	LEFT JOIN products p ON p.id       = i.product_id`

	var t repository.OrderTotals
	err := r.q.QueryRow(ctx, query, entity.OrderStatusCompleted, from, to).Scan(
		&t.Orders, &t.Sales, &t.ShippingFee, &t.ItemQuantity, &t.ItemAmount, &t.ProductCost,
		&t.UnknownLines, &t.UnknownAmount,
	)
	if err != nil {
		return repository.OrderTotals{}, wrapErr("sales.OrderTotals", err)
	}
	return t, nil
}

// SalesByProduct unidades, importe y órdenes distintas por producto.
func (r *SalesRepo) SalesByProduct(ctx context.Context, from, to time.Time) ([]repository.ProductSales, error) {
	const query = `
	SELECT
	    i.product_id,
	    COUNT(DISTINCT o.id)          AS orders,
	    COALESCE(SUM(i.quantity), 0)  AS quantity,
	    COALESCE(SUM(i.total), 0)     AS amount
	FROM orders o
	JOIN order_items i ON i.order_id = o.id
	WHERE o.status = $1 AND o.order_date BETWEEN $2 AND $3
	GROUP BY i.product_id
	ORDER BY i.product_id`

	rows, err := r.q.Query(ctx, query, entity.OrderStatusCompleted, from, to)
	if err != nil {
		return nil, wrapErr("sales.SalesByProduct", err)
	}
	defer rows.Close()

	var list []repository.ProductSales
	for rows.Next() {
		var s repository.ProductSales
		if err := rows.Scan(&s.ProductID, &s.Orders, &s.Quantity, &s.Amount); err != nil {
			return nil, wrapErr("sales.SalesByProduct scan", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("sales.SalesByProduct rows", err)
	}
	return list, nil
}

// SalesByCategory agregados por categoría del catálogo. Las líneas de productos que no están en
// el catálogo no se atribuyen.
func (r *SalesRepo) SalesByCategory(ctx context.Context, from, to time.Time) ([]repository.CategorySales, error) {
	const query = `
	SELECT
	    COALESCE(p.category, '')              AS category,
	    COUNT(DISTINCT o.id)                  AS orders,
	    COALESCE(SUM(i.quantity), 0)          AS quantity,
	    COALESCE(SUM(i.total), 0)             AS amount,
	    COALESCE(SUM(i.quantity * p.cost), 0) AS product_cost
	FROM orders o
	JOIN order_items i ON i.order_id = o.id
	JOIN products    p ON p.id       = i.product_id
	WHERE o.status = $1 AND o.order_date BETWEEN $2 AND $3
	GROUP BY COALESCE(p.category, '')
	ORDER BY 1`

	rows, err := r.q.Query(ctx, query, entity.OrderStatusCompleted, from, to)
	if err != nil {
		return nil, wrapErr("sales.SalesByCategory", err)
	}
	defer rows.Close()

	var list []repository.CategorySales
	for rows.Next() {
		var s repository.CategorySales
		if err := rows.Scan(&s.Category, &s.Orders, &s.Quantity, &s.Amount, &s.ProductCost); err != nil {
			return nil, wrapErr("sales.SalesByCategory scan", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("sales.SalesByCategory rows", err)
	}
	return list, nil
}
