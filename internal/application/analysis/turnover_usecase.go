package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/run"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// summaryRankSize productos en cada ranking de los resúmenes.
const summaryRankSize = 10

// TurnoverUseCase calcula y consulta snapshots de rotación de inventario.
type TurnoverUseCase struct {
	engine
	store repository.TurnoverRepository
}

// NewTurnoverUseCase construye el caso de uso.
func NewTurnoverUseCase(
	catalog repository.CatalogRepository,
	sales repository.SalesRepository,
	store repository.TurnoverRepository,
	locker ports.Locker,
	opts Options,
	log zerolog.Logger,
) *TurnoverUseCase {
	return &TurnoverUseCase{
		engine: engine{catalog: catalog, sales: sales, locker: locker, opts: opts.withDefaults(), log: log},
		store:  store,
	}
}

// Calculate produce el snapshot general, uno por producto activo y uno por categoría para la
// ventana que contiene ref.
func (uc *TurnoverUseCase) Calculate(ctx context.Context, ref time.Time, g period.Granularity) (*dto.RunSummaryDTO, error) {
	return execute(ctx, &uc.engine, calculation[entity.TurnoverSnapshot]{
		op:       "turnover",
		build:    buildTurnoverSnapshots,
		upsert:   uc.store.Upsert,
		describe: func(s entity.TurnoverSnapshot) string { return describeKey(s.SnapshotKey) },
	}, ref, g)
}

func buildTurnoverSnapshots(date time.Time, b period.Bucket, src *sources, t *run.Tally) []entity.TurnoverSnapshot {
	active := src.active()
	cats := src.categories()

	out := make([]entity.TurnoverSnapshot, 0, 1+len(active)+len(cats.names))
	out = append(out, BuildOverallTurnover(date, b, active, src.totals))
	for _, p := range active {
		out = append(out, BuildProductTurnover(date, b, p, src.byProduct[p.ID]))
	}
	for _, c := range cats.names {
		out = append(out, BuildCategoryTurnover(date, b, c, cats.active[c], src.byCategory[c]))
	}
	skipGaps(src, cats, t)
	return out
}

// List snapshots filtrados y paginados.
func (uc *TurnoverUseCase) List(ctx context.Context, q dto.SnapshotListQuery) (*dto.TurnoverListResponse, error) {
	f, err := parseFilter(q)
	if err != nil {
		return nil, err
	}
	var snaps []entity.TurnoverSnapshot
	ok, err := uc.narrowCategory(ctx, &f, q.Category)
	if err != nil {
		return nil, fmt.Errorf("turnover: %w", err)
	}
	if ok {
		if snaps, err = uc.store.List(ctx, f); err != nil {
			return nil, fmt.Errorf("turnover: listar snapshots: %w", err)
		}
	}
	items := make([]dto.TurnoverSnapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		items = append(items, ToTurnoverDTO(s))
	}
	return &dto.TurnoverListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(items)},
	}, nil
}

// Summary resumen de rotación de [from, to] para una granularidad: promedios generales, ventas
// de órdenes completadas del rango, salud del último snapshot general y rankings de productos.
func (uc *TurnoverUseCase) Summary(ctx context.Context, from, to time.Time, g period.Granularity) (*dto.TurnoverSummaryDTO, error) {
	from, to = period.Day(from), period.Day(to)
	if err := period.ValidateRange(from, to, 0); err != nil {
		return nil, err
	}
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, g)
	}

	snaps, err := uc.store.List(ctx, repository.SnapshotFilter{Granularity: g, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("turnover: snapshots del resumen: %w", err)
	}
	totals, err := uc.sales.OrderTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("turnover: ventas del resumen: %w", err)
	}
	products, err := uc.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("turnover: catálogo del resumen: %w", err)
	}

	snaps = latestPerPeriod(snaps, func(s entity.TurnoverSnapshot) (entity.SnapshotKey, time.Time) {
		return s.SnapshotKey, s.PeriodStart
	})
	return buildTurnoverSummary(from, to, g, snaps, totals, products), nil
}

type turnoverAcc struct {
	rate, days, value decimal.Decimal
	n                 int
}

func (a *turnoverAcc) add(s entity.TurnoverSnapshot) {
	a.rate = a.rate.Add(s.TurnoverRate)
	a.days = a.days.Add(s.TurnoverDays)
	a.value = a.value.Add(s.TotalValue)
	a.n++
}

func newTurnoverAcc() *turnoverAcc {
	return &turnoverAcc{rate: decimal.Zero, days: decimal.Zero, value: decimal.Zero}
}

func buildTurnoverSummary(from, to time.Time, g period.Granularity, snaps []entity.TurnoverSnapshot, totals repository.OrderTotals, products []entity.Product) *dto.TurnoverSummaryDTO {
	out := &dto.TurnoverSummaryDTO{
		StartDate:        from.Format(period.DateLayout),
		EndDate:          to.Format(period.DateLayout),
		Granularity:      string(g),
		TotalSalesAmount: zeroIfUnset(totals.AttributedSales()),
		TopProducts:      []dto.ProductTurnoverRankDTO{},
		BottomProducts:   []dto.ProductTurnoverRankDTO{},
		Categories:       []dto.CategoryTurnoverDTO{},
	}

	overall := newTurnoverAcc()
	byProduct := map[string]*turnoverAcc{}
	byCategory := map[string]*turnoverAcc{}
	var latest *entity.TurnoverSnapshot
	for i := range snaps {
		s := snaps[i]
		switch s.Scope {
		case entity.ScopeOverall:
			overall.add(s)
			if latest == nil || s.Date.After(latest.Date) {
				latest = &snaps[i]
			}
		case entity.ScopeProduct:
			acc, ok := byProduct[s.ScopeKey]
			if !ok {
				acc = newTurnoverAcc()
				byProduct[s.ScopeKey] = acc
			}
			acc.add(s)
		case entity.ScopeCategory:
			acc, ok := byCategory[s.ScopeKey]
			if !ok {
				acc = newTurnoverAcc()
				byCategory[s.ScopeKey] = acc
			}
			acc.add(s)
		}
	}

	out.Snapshots = overall.n
	out.AvgTurnoverRate = inventory.Average(overall.rate, overall.n)
	out.AvgTurnoverDays = inventory.Average(overall.days, overall.n)
	out.AvgTotalValue = inventory.Average(overall.value, overall.n)
	if latest != nil {
		out.LatestHealth = &dto.StockHealthDTO{
			Date:              latest.Date.Format(period.DateLayout),
			HealthyStockRatio: latest.HealthyStockRatio,
			StockoutRatio:     latest.StockoutRatio,
			OverstockRatio:    latest.OverstockRatio,
		}
	}

	catalog := indexProducts(products)
	ranks := make([]dto.ProductTurnoverRankDTO, 0, len(byProduct))
	for id, acc := range byProduct {
		p := catalog[id]
		ranks = append(ranks, dto.ProductTurnoverRankDTO{
			ProductID:       id,
			SKU:             p.SKU,
			Name:            p.Name,
			AvgTurnoverRate: inventory.Average(acc.rate, acc.n),
			AvgTurnoverDays: inventory.Average(acc.days, acc.n),
			Snapshots:       acc.n,
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if c := ranks[i].AvgTurnoverRate.Cmp(ranks[j].AvgTurnoverRate); c != 0 {
			return c > 0
		}
		return ranks[i].ProductID < ranks[j].ProductID
	})
	out.TopProducts = append(out.TopProducts, ranks[:min(summaryRankSize, len(ranks))]...)
	for i := len(ranks) - 1; i >= 0 && len(out.BottomProducts) < summaryRankSize; i-- {
		out.BottomProducts = append(out.BottomProducts, ranks[i])
	}

	for name, acc := range byCategory {
		out.Categories = append(out.Categories, dto.CategoryTurnoverDTO{
			Category:        name,
			AvgTurnoverRate: inventory.Average(acc.rate, acc.n),
			AvgTurnoverDays: inventory.Average(acc.days, acc.n),
			AvgTotalValue:   inventory.Average(acc.value, acc.n),
			Snapshots:       acc.n,
		})
	}
	sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i].Category < out.Categories[j].Category })
	return out
}

func indexProducts(products []entity.Product) map[string]entity.Product {
	m := make(map[string]entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}
