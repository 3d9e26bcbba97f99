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

// ProfitUseCase calcula y consulta snapshots de rentabilidad.
type ProfitUseCase struct {
	engine
	store repository.ProfitRepository
}

// NewProfitUseCase construye el caso de uso.
func NewProfitUseCase(
	catalog repository.CatalogRepository,
	sales repository.SalesRepository,
	store repository.ProfitRepository,
	locker ports.Locker,
	opts Options,
	log zerolog.Logger,
) *ProfitUseCase {
	return &ProfitUseCase{
		engine: engine{catalog: catalog, sales: sales, locker: locker, opts: opts.withDefaults(), log: log},
		store:  store,
	}
}

// Calculate produce el snapshot general, uno por producto activo y uno por categoría.
func (uc *ProfitUseCase) Calculate(ctx context.Context, ref time.Time, g period.Granularity) (*dto.RunSummaryDTO, error) {
	costs := uc.opts.Costs
	return execute(ctx, &uc.engine, calculation[entity.ProfitSnapshot]{
		op: "profit",
		build: func(date time.Time, b period.Bucket, src *sources, t *run.Tally) []entity.ProfitSnapshot {
			return buildProfitSnapshots(date, b, src, costs, t)
		},
		upsert:   uc.store.Upsert,
		describe: func(s entity.ProfitSnapshot) string { return describeKey(s.SnapshotKey) },
	}, ref, g)
}

func buildProfitSnapshots(date time.Time, b period.Bucket, src *sources, costs inventory.CostModel, t *run.Tally) []entity.ProfitSnapshot {
	active := src.active()
	cats := src.categories()

	out := make([]entity.ProfitSnapshot, 0, 1+len(active)+len(cats.names))
	out = append(out, BuildOverallProfit(date, b, len(active), src.totals, costs))
	for _, p := range active {
		out = append(out, BuildProductProfit(date, b, p, src.byProduct[p.ID], costs))
	}
	for _, c := range cats.names {
		out = append(out, BuildCategoryProfit(date, b, c, len(cats.active[c]), src.byCategory[c], costs))
	}
	skipGaps(src, cats, t)
	return out
}

// List snapshots filtrados y paginados.
func (uc *ProfitUseCase) List(ctx context.Context, q dto.SnapshotListQuery) (*dto.ProfitListResponse, error) {
	f, err := parseFilter(q)
	if err != nil {
		return nil, err
	}
	var snaps []entity.ProfitSnapshot
	ok, err := uc.narrowCategory(ctx, &f, q.Category)
	if err != nil {
		return nil, fmt.Errorf("profit: %w", err)
	}
	if ok {
		if snaps, err = uc.store.List(ctx, f); err != nil {
			return nil, fmt.Errorf("profit: listar snapshots: %w", err)
		}
	}
	items := make([]dto.ProfitSnapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		items = append(items, ToProfitDTO(s))
	}
	return &dto.ProfitListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(items)},
	}, nil
}

// Summary resumen de rentabilidad de [from, to]: totales del alcance general, tendencia por
// fecha, rankings de productos por utilidad neta y totales por categoría.
func (uc *ProfitUseCase) Summary(ctx context.Context, from, to time.Time, g period.Granularity) (*dto.ProfitSummaryDTO, error) {
	from, to = period.Day(from), period.Day(to)
	if err := period.ValidateRange(from, to, 0); err != nil {
		return nil, err
	}
	if !g.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, g)
	}

	snaps, err := uc.store.List(ctx, repository.SnapshotFilter{Granularity: g, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("profit: snapshots del resumen: %w", err)
	}
	products, err := uc.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("profit: catálogo del resumen: %w", err)
	}

	snaps = latestPerPeriod(snaps, func(s entity.ProfitSnapshot) (entity.SnapshotKey, time.Time) {
		return s.SnapshotKey, s.PeriodStart
	})
	return buildProfitSummary(from, to, g, snaps, products), nil
}

type profitAcc struct {
	orders   int
	quantity decimal.Decimal
	sales    decimal.Decimal
	cost     decimal.Decimal
	gross    decimal.Decimal
	net      decimal.Decimal
}

func newProfitAcc() *profitAcc {
	return &profitAcc{quantity: decimal.Zero, sales: decimal.Zero, cost: decimal.Zero, gross: decimal.Zero, net: decimal.Zero}
}

func (a *profitAcc) add(s entity.ProfitSnapshot) {
	a.orders += s.TotalOrders
	a.quantity = a.quantity.Add(s.SalesQuantity)
	a.sales = a.sales.Add(s.SalesAmount)
	a.cost = a.cost.Add(s.TotalCost)
	a.gross = a.gross.Add(s.GrossProfit)
	a.net = a.net.Add(s.NetProfit)
}

func buildProfitSummary(from, to time.Time, g period.Granularity, snaps []entity.ProfitSnapshot, products []entity.Product) *dto.ProfitSummaryDTO {
	out := &dto.ProfitSummaryDTO{
		StartDate:      from.Format(period.DateLayout),
		EndDate:        to.Format(period.DateLayout),
		Granularity:    string(g),
		Trend:          []dto.ProfitTrendPointDTO{},
		TopProducts:    []dto.ProductProfitRankDTO{},
		BottomProducts: []dto.ProductProfitRankDTO{},
		Categories:     []dto.CategoryProfitDTO{},
	}

	overall := newProfitAcc()
	byProduct := map[string]*profitAcc{}
	byCategory := map[string]*profitAcc{}
	for _, s := range snaps {
		switch s.Scope {
		case entity.ScopeOverall:
			overall.add(s)
			out.Trend = append(out.Trend, dto.ProfitTrendPointDTO{
				Date:        s.Date.Format(period.DateLayout),
				SalesAmount: s.SalesAmount,
				GrossProfit: s.GrossProfit,
				NetProfit:   s.NetProfit,
				TotalOrders: s.TotalOrders,
			})
		case entity.ScopeProduct:
			acc, ok := byProduct[s.ScopeKey]
			if !ok {
				acc = newProfitAcc()
				byProduct[s.ScopeKey] = acc
			}
			acc.add(s)
		case entity.ScopeCategory:
			acc, ok := byCategory[s.ScopeKey]
			if !ok {
				acc = newProfitAcc()
				byCategory[s.ScopeKey] = acc
			}
			acc.add(s)
		}
	}
	sort.Slice(out.Trend, func(i, j int) bool { return out.Trend[i].Date < out.Trend[j].Date })

	out.TotalOrders = overall.orders
	out.TotalSales = overall.sales
	out.TotalCost = overall.cost
	out.GrossProfit = overall.gross
	out.NetProfit = overall.net
	out.GrossProfitRate = inventory.Percentage(overall.gross, overall.sales)
	out.NetProfitRate = inventory.Percentage(overall.net, overall.sales)

	catalog := indexProducts(products)
	ranks := make([]dto.ProductProfitRankDTO, 0, len(byProduct))
	for id, acc := range byProduct {
		p := catalog[id]
		ranks = append(ranks, dto.ProductProfitRankDTO{
			ProductID:     id,
			SKU:           p.SKU,
			Name:          p.Name,
			SalesQuantity: acc.quantity,
			SalesAmount:   acc.sales,
			NetProfit:     acc.net,
			NetProfitRate: inventory.Percentage(acc.net, acc.sales),
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if c := ranks[i].NetProfit.Cmp(ranks[j].NetProfit); c != 0 {
			return c > 0
		}
		return ranks[i].ProductID < ranks[j].ProductID
	})
	out.TopProducts = append(out.TopProducts, ranks[:min(summaryRankSize, len(ranks))]...)
	for i := len(ranks) - 1; i >= 0 && len(out.BottomProducts) < summaryRankSize; i-- {
		out.BottomProducts = append(out.BottomProducts, ranks[i])
	}

	for name, acc := range byCategory {
		out.Categories = append(out.Categories, dto.CategoryProfitDTO{
			Category:      name,
			TotalOrders:   acc.orders,
			SalesAmount:   acc.sales,
			GrossProfit:   acc.gross,
			NetProfit:     acc.net,
			NetProfitRate: inventory.Percentage(acc.net, acc.sales),
			AvgOrderValue: inventory.Average(acc.sales, acc.orders),
		})
	}
	sort.Slice(out.Categories, func(i, j int) bool { return out.Categories[i].Category < out.Categories[j].Category })
	return out
}
