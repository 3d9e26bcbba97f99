package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CatalogRepository lectura del catálogo de productos (DIP).
type CatalogRepository interface {
	// ListProducts devuelve todos los productos sin importar su estado, ordenados por ID.
	ListProducts(ctx context.Context) ([]entity.Product, error)
}
