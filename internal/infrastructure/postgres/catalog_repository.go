package postgres

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lectura de la tabla products.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// ListProducts todos los productos, ordenados por ID.
func (r *CatalogRepo) ListProducts(ctx context.Context) ([]entity.Product, error) {
	const query = `
		SELECT id, sku, name, COALESCE(category, ''), cost, price, stock, alert_threshold,
		       status, created_at, updated_at
		FROM products
		ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("catalog.ListProducts", err)
	}
	defer rows.Close()

	var list []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Category, &p.Cost, &p.Price, &p.Stock, &p.AlertThreshold,
			&p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, wrapErr("catalog.ListProducts scan", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("catalog.ListProducts rows", err)
	}
	return list, nil
}
