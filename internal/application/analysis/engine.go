// Package analysis calcula y consulta los snapshots periódicos de rotación y rentabilidad.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/run"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/jhoicas/inventario-ledger/internal/application/analysis")

// Options parámetros comunes de los cálculos.
type Options struct {
	Workers int
	LockTTL time.Duration
	Costs   inventory.CostModel
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Minute
	}
	if o.Costs == (inventory.CostModel{}) {
		o.Costs = inventory.DefaultCostModel()
	}
	return o
}

// LockKey clave del lock de un cálculo: rollup:<op>:<fecha>:<granularidad>.
func LockKey(op string, date time.Time, g period.Granularity) string {
	return fmt.Sprintf("rollup:%s:%s:%s", op, period.Day(date).Format(period.DateLayout), g)
}

// engine dependencias compartidas por los cálculos de rotación y rentabilidad.
type engine struct {
	catalog repository.CatalogRepository
	sales   repository.SalesRepository
	locker  ports.Locker
	opts    Options
	log     zerolog.Logger
}

// sources lecturas de un cálculo. Ventas indexadas por producto y categoría.
type sources struct {
	products   []entity.Product
	totals     repository.OrderTotals
	byProduct  map[string]repository.ProductSales
	byCategory map[string]repository.CategorySales
}

// loadSources lee catálogo y ventas de la ventana en paralelo.
func (e *engine) loadSources(ctx context.Context, b period.Bucket) (*sources, error) {
	src := &sources{}
	var productSales []repository.ProductSales
	var categorySales []repository.CategorySales

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if src.products, err = e.catalog.ListProducts(gctx); err != nil {
			return fmt.Errorf("listar catálogo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if src.totals, err = e.sales.OrderTotals(gctx, b.Start, b.End); err != nil {
			return fmt.Errorf("totales de órdenes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if productSales, err = e.sales.SalesByProduct(gctx, b.Start, b.End); err != nil {
			return fmt.Errorf("ventas por producto: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categorySales, err = e.sales.SalesByCategory(gctx, b.Start, b.End); err != nil {
			return fmt.Errorf("ventas por categoría: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	src.byProduct = make(map[string]repository.ProductSales, len(productSales))
	for _, ps := range productSales {
		src.byProduct[ps.ProductID] = ps
	}
	src.byCategory = make(map[string]repository.CategorySales, len(categorySales))
	for _, cs := range categorySales {
		src.byCategory[cs.Category] = cs
	}
	return src, nil
}

// active productos activos en el orden del catálogo.
func (s *sources) active() []entity.Product {
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// categoryGroups categorías distintas del catálogo (todos los estados) con sus productos activos.
type categoryGroups struct {
	names         []string
	active        map[string][]entity.Product
	uncategorized int
}

func (s *sources) categories() categoryGroups {
	cg := categoryGroups{active: make(map[string][]entity.Product)}
	seen := make(map[string]struct{})
	for _, p := range s.products {
		if p.Category == "" {
			cg.uncategorized++
			continue
		}
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			cg.names = append(cg.names, p.Category)
		}
		if p.IsActive() {
			cg.active[p.Category] = append(cg.active[p.Category], p)
		}
	}
	sort.Strings(cg.names)
	return cg
}

// skipGaps registra los datos de referencia faltantes de la ventana: productos sin categoría
// y líneas de venta de productos que no están en el catálogo.
func skipGaps(src *sources, cats categoryGroups, t *run.Tally) {
	if cats.uncategorized > 0 {
		t.Skipped(fmt.Sprintf("%d producto(s) sin categoría excluidos del análisis por categoría", cats.uncategorized))
	}
	if n := src.totals.UnknownLines; n > 0 {
		t.Skipped(fmt.Sprintf("%d línea(s) de venta de productos fuera del catálogo excluidas (importe %s)",
			n, src.totals.UnknownAmount.String()))
	}
}

// calculation describe un cálculo de snapshots de tipo T.
type calculation[T any] struct {
	op       string
	build    func(date time.Time, b period.Bucket, src *sources, t *run.Tally) []T // el general va primero
	upsert   func(context.Context, T) error
	describe func(T) string
}

// execute valida, toma el lock, lee las fuentes, construye los snapshots y los persiste.
// El snapshot general se escribe primero; el resto en paralelo con Workers. Un fallo de
// escritura se cuenta en Failed y no detiene al resto.
func execute[T any](ctx context.Context, e *engine, c calculation[T], ref time.Time, g period.Granularity) (*dto.RunSummaryDTO, error) {
	b, err := period.Resolve(ref, g)
	if err != nil {
		return nil, err
	}
	date := period.Day(ref)

	ctx, span := tracer.Start(ctx, "analysis."+c.op, trace.WithAttributes(
		attribute.String("date", date.Format(period.DateLayout)),
		attribute.String("granularity", string(g)),
	))
	defer span.End()

	release, err := e.locker.TryAcquire(ctx, LockKey(c.op, date, g), e.opts.LockTTL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			e.log.Warn().Err(err).Str("operation", c.op).Msg("liberar lock")
		}
	}()

	t := run.NewTally(c.op, b.Start, b.End)
	t.SetGranularity(g)
	began := time.Now()

	src, err := e.loadSources(ctx, b)
	if err != nil {
		err = fmt.Errorf("%s: %w", c.op, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return t.Summary(), err
	}

	snaps := c.build(date, b, src, t)
	persist(ctx, e.opts.Workers, snaps, c.upsert, c.describe, t, e.log)

	summary := t.Summary()
	span.SetAttributes(
		attribute.Int("processed", summary.Processed),
		attribute.Int("skipped", summary.Skipped),
		attribute.Int("failed", summary.Failed),
	)
	e.log.Info().
		Str("operation", c.op).
		Str("date", date.Format(period.DateLayout)).
		Str("granularity", string(g)).
		Str("period_start", summary.StartDate).
		Str("period_end", summary.EndDate).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("cancelled", summary.Cancelled).
		Dur("elapsed", time.Since(began)).
		Msg("snapshots calculados")
	return summary, nil
}

// persist escribe snaps[0] y luego el resto en paralelo. Si ctx se cancela, las escrituras
// pendientes no se inician y la corrida queda marcada como cancelada.
func persist[T any](ctx context.Context, workers int, snaps []T, upsert func(context.Context, T) error, describe func(T) string, t *run.Tally, log zerolog.Logger) {
	write := func(s T) {
		if err := upsert(ctx, s); err != nil {
			log.Warn().Err(err).Str("snapshot", describe(s)).Msg("escribir snapshot")
			t.Failed(fmt.Sprintf("snapshot %s: %v", describe(s), err))
			return
		}
		t.Processed()
	}
	if len(snaps) == 0 {
		return
	}
	write(snaps[0])

	var g errgroup.Group
	g.SetLimit(workers)
	for _, s := range snaps[1:] {
		if ctx.Err() != nil {
			t.Cancel()
			break
		}
		g.Go(func() error {
			write(s)
			return nil
		})
	}
	_ = g.Wait()
}

func describeKey(k entity.SnapshotKey) string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Scope, k.ScopeKey, k.Date.Format(period.DateLayout), k.Granularity)
}

// parseFilter convierte los parámetros de listado en un filtro de repositorio.
func parseFilter(q dto.SnapshotListQuery) (repository.SnapshotFilter, error) {
	q.DefaultPage()
	f := repository.SnapshotFilter{
		Scope:    entity.Scope(q.Scope),
		ScopeKey: q.Key,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Scope != "" && !f.Scope.Valid() {
		return f, fmt.Errorf("%w: scope %q", domain.ErrInvalidInput, q.Scope)
	}
	if q.Granularity != "" {
		g, err := period.ParseGranularity(q.Granularity)
		if err != nil {
			return f, err
		}
		f.Granularity = g
	}
	var err error
	if q.StartDate != "" {
		if f.From, err = period.ParseDate(q.StartDate); err != nil {
			return f, err
		}
	}
	if q.EndDate != "" {
		if f.To, err = period.ParseDate(q.EndDate); err != nil {
			return f, err
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() {
		if err := period.ValidateRange(f.From, f.To, 0); err != nil {
			return f, err
		}
	}
	f.StockStatus = q.StockStatus
	if f.MinNetRate, err = parseRate("min_profit_rate", q.MinProfitRate); err != nil {
		return f, err
	}
	if f.MaxNetRate, err = parseRate("max_profit_rate", q.MaxProfitRate); err != nil {
		return f, err
	}
	if f.MinNetRate.Valid && f.MaxNetRate.Valid && f.MinNetRate.Decimal.GreaterThan(f.MaxNetRate.Decimal) {
		return f, fmt.Errorf("%w: min_profit_rate mayor que max_profit_rate", domain.ErrInvalidInput)
	}
	return f, nil
}

func parseRate(name, v string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, name, v)
	}
	return decimal.NewNullDecimal(d), nil
}

// narrowCategory aplica el filtro de categoría. Sobre alcance category es la clave; si no, limita
// a los productos de esa categoría. Devuelve false si ningún snapshot puede cumplirlo.
func (e *engine) narrowCategory(ctx context.Context, f *repository.SnapshotFilter, category string) (bool, error) {
	if category == "" {
		return true, nil
	}
	switch f.Scope {
	case entity.ScopeCategory:
		if f.ScopeKey != "" && f.ScopeKey != category {
			return false, nil
		}
		f.ScopeKey = category
		return true, nil
	case entity.ScopeOverall:
		return false, fmt.Errorf("%w: category no aplica al alcance overall", domain.ErrInvalidInput)
	}
	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		return false, fmt.Errorf("catálogo del filtro por categoría: %w", err)
	}
	f.Scope = entity.ScopeProduct
	f.ScopeKeys = []string{}
	for _, p := range products {
		if p.Category == category {
			f.ScopeKeys = append(f.ScopeKeys, p.ID)
		}
	}
	return len(f.ScopeKeys) > 0, nil
}

// latestPerPeriod deja, por (alcance, clave, inicio de ventana), el snapshot con la fecha de
// referencia más reciente. Evita sumar dos veces la misma semana o mes.
func latestPerPeriod[T any](items []T, key func(T) (entity.SnapshotKey, time.Time)) []T {
	type periodKey struct {
		scope entity.Scope
		key   string
		start time.Time
	}
	idx := make(map[periodKey]int)
	out := make([]T, 0, len(items))
	for _, it := range items {
		k, start := key(it)
		pk := periodKey{k.Scope, k.ScopeKey, start}
		if i, ok := idx[pk]; ok {
			prev, _ := key(out[i])
			if k.Date.After(prev.Date) {
				out[i] = it
			}
			continue
		}
		idx[pk] = len(out)
		out = append(out, it)
	}
	return out
}
