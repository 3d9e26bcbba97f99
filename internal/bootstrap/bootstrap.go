// Package bootstrap arma los casos de uso según la configuración: almacenamiento postgres o
// memoria y lock Redis o en proceso. Lo comparten cmd/api y cmd/rollup.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/analysis"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/application/timeline"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// lockPrefix prefijo de las claves de lock en Redis.
const lockPrefix = "inventario-ledger:"

// Services casos de uso listos para usar.
type Services struct {
	Timeline *timeline.TimelineUseCase
	Turnover *analysis.TurnoverUseCase
	Profit   *analysis.ProfitUseCase
}

type stores struct {
	catalog   repository.CatalogRepository
	movements repository.StockMovementRepository
	transits  repository.TransitShipmentRepository
	sales     repository.SalesRepository
	ledger    repository.LedgerRepository
	turnover  repository.TurnoverRepository
	profit    repository.ProfitRepository
}

// Build abre las conexiones y construye los servicios. cleanup cierra lo abierto y debe
// llamarse aunque Build devuelva error.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (svc *Services, cleanup func(), err error) {
	var closers []func()
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var st stores
	switch cfg.App.Storage {
	case config.StorageMemory:
		m := memory.NewStore()
		st = stores{m, m, m, m, m, m.Turnover(), m.Profit()}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, cleanup, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		closers = append(closers, pool.Close)
		st = stores{
			catalog:   postgres.NewCatalogRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			transits:  postgres.NewTransitRepository(pool),
			sales:     postgres.NewSalesRepository(pool),
			ledger:    postgres.NewLedgerRepository(pool),
			turnover:  postgres.NewTurnoverRepository(pool),
			profit:    postgres.NewProfitRepository(pool),
		}
	}

	var locker ports.Locker
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		locker = lock.NewRedisLocker(rdb, lockPrefix)
	} else {
		locker = lock.NewLocalLocker()
		log.Info().Msg("REDIS_ADDR vacío: lock en proceso (una sola instancia)")
	}

	costs := inventory.CostModel{
		ShippingPerUnit:   cfg.Ledger.ShippingPerUnit,
		OperationPerOrder: cfg.Ledger.OperationPerOrder,
		OtherPerOrder:     cfg.Ledger.OtherPerOrder,
	}
	analysisOpts := analysis.Options{Workers: cfg.Ledger.Workers, LockTTL: cfg.Redis.LockTTL, Costs: costs}

	svc = &Services{
		Timeline: timeline.NewTimelineUseCase(st.catalog, st.movements, st.transits, st.ledger, locker, timeline.Options{
			MaxRangeDays: cfg.Ledger.MaxRangeDays,
			ChunkDays:    cfg.Ledger.ChunkDays,
			Workers:      cfg.Ledger.Workers,
			LockTTL:      cfg.Redis.LockTTL,
		}, log.Component("timeline")),
		Turnover: analysis.NewTurnoverUseCase(st.catalog, st.sales, st.turnover, locker, analysisOpts, log.Component("turnover")),
		Profit:   analysis.NewProfitUseCase(st.catalog, st.sales, st.profit, locker, analysisOpts, log.Component("profit")),
	}
	return svc, cleanup, nil
}
