// Package memory implementa los puertos del ledger en memoria. Se usa en tests y con
// APP_STORAGE=memory para correr el servicio sin PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.CatalogRepository         = (*Store)(nil)
	_ repository.StockMovementRepository   = (*Store)(nil)
	_ repository.TransitShipmentRepository = (*Store)(nil)
	_ repository.SalesRepository           = (*Store)(nil)
	_ repository.LedgerRepository          = (*Store)(nil)
)

type ledgerKey struct {
	productID string
	date      time.Time
}

// Store fuentes y almacén de rollups protegidos por un único RWMutex.
type Store struct {
	mu        sync.RWMutex
	products  map[string]entity.Product
	movements []entity.StockMovement
	transits  []entity.TransitShipment
	orders    map[string]entity.Order
	items     []entity.OrderItem
	ledger    map[ledgerKey]entity.DailyLedgerRow
	turnover  map[entity.SnapshotKey]entity.TurnoverSnapshot
	profit    map[entity.SnapshotKey]entity.ProfitSnapshot
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]entity.Product),
		orders:   make(map[string]entity.Order),
		ledger:   make(map[ledgerKey]entity.DailyLedgerRow),
		turnover: make(map[entity.SnapshotKey]entity.TurnoverSnapshot),
		profit:   make(map[entity.SnapshotKey]entity.ProfitSnapshot),
	}
}

// ── Carga de fuentes ──────────────────────────────────────────────────────────

// AddProduct agrega o reemplaza un producto. Asigna ID si viene vacío y lo devuelve.
func (s *Store) AddProduct(p entity.Product) string {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
	return p.ID
}

// AddMovement registra un movimiento de stock.
func (s *Store) AddMovement(m entity.StockMovement) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.OccurredOn = period.Day(m.OccurredOn)
	s.mu.Lock()
	s.movements = append(s.movements, m)
	s.mu.Unlock()
}

// AddTransit registra un envío en tránsito.
func (s *Store) AddTransit(t entity.TransitShipment) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.ShippedOn = period.Day(t.ShippedOn)
	if t.EstimatedArrival != nil {
		eta := period.Day(*t.EstimatedArrival)
		t.EstimatedArrival = &eta
	}
	s.mu.Lock()
	s.transits = append(s.transits, t)
	s.mu.Unlock()
}

// AddOrder registra una orden con sus líneas.
func (s *Store) AddOrder(o entity.Order, items ...entity.OrderItem) string {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.OrderDate = period.Day(o.OrderDate)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		s.items = append(s.items, it)
	}
	return o.ID
}

// ── Catálogo ───────────────────────────────────────────────────────────────────

// ListProducts todos los productos ordenados por ID.
func (s *Store) ListProducts(_ context.Context) ([]entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Movimientos y tránsito ────────────────────────────────────────────────────

// ListBetween movimientos con fecha en [from, to].
func (s *Store) ListBetween(_ context.Context, from, to time.Time) ([]entity.StockMovement, error) {
	from, to = period.Day(from), period.Day(to)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.StockMovement
	for _, m := range s.movements {
		if m.OccurredOn.Before(from) || m.OccurredOn.After(to) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].OccurredOn.Before(out[j].OccurredOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListInTransitOverlapping envíos IN_TRANSIT que pueden contar en algún día de [from, to].
func (s *Store) ListInTransitOverlapping(_ context.Context, from, to time.Time) ([]entity.TransitShipment, error) {
	from, to = period.Day(from), period.Day(to)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.TransitShipment
	for _, t := range s.transits {
		if t.Status != entity.TransitStatusInTransit || t.ShippedOn.After(to) {
			continue
		}
		if t.EstimatedArrival != nil && !t.EstimatedArrival.After(from) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ShippedOn.Equal(out[j].ShippedOn) {
			return out[i].ShippedOn.Before(out[j].ShippedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// TotalsByMode envíos IN_TRANSIT agrupados por modo.
func (s *Store) TotalsByMode(_ context.Context, productID string) ([]repository.TransitModeTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byMode := map[string]*repository.TransitModeTotals{}
	for _, t := range s.transits {
		if t.Status != entity.TransitStatusInTransit {
			continue
		}
		if productID != "" && t.ProductID != productID {
			continue
		}
		m, ok := byMode[t.Mode]
		if !ok {
			m = &repository.TransitModeTotals{Mode: t.Mode, Quantity: decimal.Zero}
			byMode[t.Mode] = m
		}
		m.Quantity = m.Quantity.Add(t.Quantity)
		m.Records++
	}
	out := make([]repository.TransitModeTotals, 0, len(byMode))
	for _, m := range byMode {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode < out[j].Mode })
	return out, nil
}

// ListShipments envíos que cumplen el filtro, del despacho más reciente al más antiguo.
func (s *Store) ListShipments(_ context.Context, f repository.TransitFilter) ([]entity.TransitShipment, error) {
	s.mu.RLock()
	out := []entity.TransitShipment{}
	for _, t := range s.transits {
		switch {
		case f.ProductID != "" && t.ProductID != f.ProductID,
			f.SourceShipmentID != "" && t.SourceShipmentID != f.SourceShipmentID,
			f.Mode != "" && t.Mode != f.Mode,
			f.Status != "" && t.Status != f.Status,
			!f.From.IsZero() && t.ShippedOn.Before(period.Day(f.From)),
			!f.To.IsZero() && t.ShippedOn.After(period.Day(f.To)):
			continue
		}
		out = append(out, t)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ShippedOn.Equal(out[j].ShippedOn) {
			return out[i].ShippedOn.After(out[j].ShippedOn)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// ── Ventas ──────────────────────────────────────────────────────────────────────

// completedItems líneas de órdenes completadas en [from, to]. Requiere s.mu tomado.
func (s *Store) completedItems(from, to time.Time) []entity.OrderItem {
	from, to = period.Day(from), period.Day(to)
	var out []entity.OrderItem
	for _, it := range s.items {
		o, ok := s.orders[it.OrderID]
		if !ok || !o.IsCompleted() || o.OrderDate.Before(from) || o.OrderDate.After(to) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// OrderTotals agregados de órdenes completadas en [from, to].
func (s *Store) OrderTotals(_ context.Context, from, to time.Time) (repository.OrderTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := repository.OrderTotals{
		Sales: decimal.Zero, ShippingFee: decimal.Zero,
		ItemQuantity: decimal.Zero, ItemAmount: decimal.Zero, ProductCost: decimal.Zero,
		UnknownAmount: decimal.Zero,
	}
	f, e := period.Day(from), period.Day(to)
	for _, o := range s.orders {
		if !o.IsCompleted() || o.OrderDate.Before(f) || o.OrderDate.After(e) {
			continue
		}
		t.Orders++
		t.Sales = t.Sales.Add(o.Total)
		t.ShippingFee = t.ShippingFee.Add(o.ShippingFee)
	}
	for _, it := range s.completedItems(from, to) {
		p, ok := s.products[it.ProductID]
		if !ok {
			t.UnknownLines++
			t.UnknownAmount = t.UnknownAmount.Add(it.Total)
			continue
		}
		t.ItemQuantity = t.ItemQuantity.Add(it.Quantity)
		t.ItemAmount = t.ItemAmount.Add(it.Total)
		t.ProductCost = t.ProductCost.Add(it.Quantity.Mul(p.Cost))
	}
	return t, nil
}

// SalesByProduct ventas agrupadas por producto, ordenadas por ID.
func (s *Store) SalesByProduct(_ context.Context, from, to time.Time) ([]repository.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := map[string]*repository.ProductSales{}
	orders := map[string]map[string]struct{}{}
	for _, it := range s.completedItems(from, to) {
		ps, ok := acc[it.ProductID]
		if !ok {
			ps = &repository.ProductSales{ProductID: it.ProductID, Quantity: decimal.Zero, Amount: decimal.Zero}
			acc[it.ProductID] = ps
			orders[it.ProductID] = map[string]struct{}{}
		}
		ps.Quantity = ps.Quantity.Add(it.Quantity)
		ps.Amount = ps.Amount.Add(it.Total)
		orders[it.ProductID][it.OrderID] = struct{}{}
	}
	out := make([]repository.ProductSales, 0, len(acc))
	for id, ps := range acc {
		ps.Orders = len(orders[id])
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// SalesByCategory ventas agrupadas por categoría del catálogo. Líneas de productos
// desconocidos no se atribuyen a ninguna categoría.
func (s *Store) SalesByCategory(_ context.Context, from, to time.Time) ([]repository.CategorySales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := map[string]*repository.CategorySales{}
	orders := map[string]map[string]struct{}{}
	for _, it := range s.completedItems(from, to) {
		p, ok := s.products[it.ProductID]
		if !ok {
			continue
		}
		cs, ok := acc[p.Category]
		if !ok {
			cs = &repository.CategorySales{Category: p.Category, Quantity: decimal.Zero, Amount: decimal.Zero, ProductCost: decimal.Zero}
			acc[p.Category] = cs
			orders[p.Category] = map[string]struct{}{}
		}
		cs.Quantity = cs.Quantity.Add(it.Quantity)
		cs.Amount = cs.Amount.Add(it.Total)
		cs.ProductCost = cs.ProductCost.Add(it.Quantity.Mul(p.Cost))
		orders[p.Category][it.OrderID] = struct{}{}
	}
	out := make([]repository.CategorySales, 0, len(acc))
	for c, cs := range acc {
		cs.Orders = len(orders[c])
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// ── Ledger ────────────────────────────────────────────────────────────────────

// GetRow fila de (productID, date) o nil.
func (s *Store) GetRow(_ context.Context, productID string, date time.Time) (*entity.DailyLedgerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.ledger[ledgerKey{productID, period.Day(date)}]
	if !ok {
		return nil, nil
	}
	row = cloneRow(row)
	return &row, nil
}

// Upsert inserta o reemplaza la fila.
func (s *Store) Upsert(_ context.Context, row entity.DailyLedgerRow) error {
	row.Date = period.Day(row.Date)
	s.mu.Lock()
	s.ledger[ledgerKey{row.ProductID, row.Date}] = cloneRow(row)
	s.mu.Unlock()
	return nil
}

// ListByProduct filas del producto en [from, to] ordenadas por fecha.
func (s *Store) ListByProduct(_ context.Context, productID string, from, to time.Time) ([]entity.DailyLedgerRow, error) {
	from, to = period.Day(from), period.Day(to)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []entity.DailyLedgerRow{}
	for k, row := range s.ledger {
		if k.productID != productID || k.date.Before(from) || k.date.After(to) {
			continue
		}
		out = append(out, cloneRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// LedgerSize número de filas del ledger (tests).
func (s *Store) LedgerSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger)
}

func cloneRow(r entity.DailyLedgerRow) entity.DailyLedgerRow {
	if r.InTransitDetail != nil {
		r.InTransitDetail = append([]entity.TransitDetail(nil), r.InTransitDetail...)
	}
	return r
}
