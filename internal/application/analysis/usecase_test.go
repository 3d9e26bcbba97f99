package analysis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/analysis"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertDec(t *testing.T, want int64, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: esperado %d, obtenido %s", msg, want, got)
}

func assertDecStr(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

// seedStore catálogo con A (bebidas, activo), B (bebidas, inactivo) y C (sin categoría,
// activo y agotado), y una orden completada el lunes 2024-03-04 con 5 unidades de A.
func seedStore() *memory.Store {
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: "A", SKU: "SKU-A", Name: "Agua", Category: "bebidas", Cost: dec(2), Price: dec(10), Stock: dec(10), AlertThreshold: dec(3), Status: entity.ProductStatusActive})
	store.AddProduct(entity.Product{ID: "B", SKU: "SKU-B", Name: "Jugo", Category: "bebidas", Cost: dec(3), Stock: dec(4), Status: entity.ProductStatusInactive})
	store.AddProduct(entity.Product{ID: "C", SKU: "SKU-C", Name: "Bolsa", Cost: dec(1), Stock: decimal.Zero, Status: entity.ProductStatusActive})
	store.AddOrder(
		entity.Order{OrderNo: "ORD-1", OrderDate: day(4), Status: entity.OrderStatusCompleted, Total: dec(60), ShippingFee: dec(5)},
		entity.OrderItem{ProductID: "A", Quantity: dec(5), UnitPrice: dec(10), Total: dec(50)},
	)
	store.AddOrder(
		entity.Order{OrderNo: "ORD-2", OrderDate: day(4), Status: "cancelled", Total: dec(999)},
		entity.OrderItem{ProductID: "A", Quantity: dec(99), Total: dec(999)},
	)
	return store
}

func newTurnover(store *memory.Store, turnover repository.TurnoverRepository, locker *lock.LocalLocker) *analysis.TurnoverUseCase {
	if turnover == nil {
		turnover = store.Turnover()
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return analysis.NewTurnoverUseCase(store, store, turnover, locker, analysis.Options{Workers: 2}, zerolog.Nop())
}

func newProfit(store *memory.Store, sales repository.SalesRepository) *analysis.ProfitUseCase {
	if sales == nil {
		sales = store
	}
	return analysis.NewProfitUseCase(store, sales, store.Profit(), lock.NewLocalLocker(), analysis.Options{}, zerolog.Nop())
}

func findTurnover(items []dto.TurnoverSnapshotDTO, scope, key string) *dto.TurnoverSnapshotDTO {
	for i := range items {
		if items[i].Scope == scope && items[i].ScopeKey == key {
			return &items[i]
		}
	}
	return nil
}

func findProfit(items []dto.ProfitSnapshotDTO, scope, key string) *dto.ProfitSnapshotDTO {
	for i := range items {
		if items[i].Scope == scope && items[i].ScopeKey == key {
			return &items[i]
		}
	}
	return nil
}

// failingTurnover falla la escritura del snapshot de un producto.
type failingTurnover struct {
	repository.TurnoverRepository
	key string
}

func (f failingTurnover) Upsert(ctx context.Context, s entity.TurnoverSnapshot) error {
	if s.Scope == entity.ScopeProduct && s.ScopeKey == f.key {
		return errors.New("timeout de escritura")
	}
	return f.TurnoverRepository.Upsert(ctx, s)
}

type brokenSales struct{ repository.SalesRepository }

func (brokenSales) SalesByProduct(context.Context, time.Time, time.Time) ([]repository.ProductSales, error) {
	return nil, errors.New("réplica caída")
}

// ──────────────────────────────────────────────────────────────────────────────
// Rotación
// ──────────────────────────────────────────────────────────────────────────────

func TestTurnoverCalculate_GeneraSnapshotsPorAlcance(t *testing.T) {
	store := seedStore()
	uc := newTurnover(store, nil, nil)

	summary, err := uc.Calculate(context.Background(), day(4), period.Daily)
	require.NoError(t, err)
	// overall + A + C + bebidas
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, "daily", summary.Granularity)
	require.Len(t, summary.Warnings, 1)

	res, err := uc.List(context.Background(), dto.SnapshotListQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 4)
	assert.Nil(t, findTurnover(res.Items, "product", "B"), "los inactivos no generan snapshot")

	overall := findTurnover(res.Items, "overall", "*")
	require.NotNil(t, overall)
	assert.Equal(t, 2, overall.TotalProducts)
	assert.Equal(t, 1, overall.StockoutProducts)
	assertDec(t, 50, overall.SalesAmount, "ventas overall (solo completadas)")
	// 50 / 20 × 365
	assertDecStr(t, "912.5", overall.TurnoverRate, "rotación overall")

	cat := findTurnover(res.Items, "category", "bebidas")
	require.NotNil(t, cat)
	assert.Equal(t, 1, cat.TotalProducts, "solo productos activos de la categoría")
}

func TestTurnoverCalculate_Idempotente(t *testing.T) {
	store := seedStore()
	uc := newTurnover(store, nil, nil)
	ctx := context.Background()

	_, err := uc.Calculate(ctx, day(4), period.Weekly)
	require.NoError(t, err)
	first, err := uc.List(ctx, dto.SnapshotListQuery{})
	require.NoError(t, err)

	_, err = uc.Calculate(ctx, day(4), period.Weekly)
	require.NoError(t, err)
	second, err := uc.List(ctx, dto.SnapshotListQuery{})
	require.NoError(t, err)

	assert.Equal(t, first.Items, second.Items)
}

func TestTurnoverCalculate_LockTomado(t *testing.T) {
	store := seedStore()
	locker := lock.NewLocalLocker()
	uc := newTurnover(store, nil, locker)

	release, err := locker.TryAcquire(context.Background(), analysis.LockKey("turnover", day(4), period.Daily), time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	_, err = uc.Calculate(context.Background(), day(4), period.Daily)
	assert.ErrorIs(t, err, domain.ErrCalculationInProgress)

	// Otra granularidad usa otra clave.
	_, err = uc.Calculate(context.Background(), day(4), period.Monthly)
	assert.NoError(t, err)
}

func TestTurnoverCalculate_FalloDeEscrituraSeCuenta(t *testing.T) {
	store := seedStore()
	uc := newTurnover(store, failingTurnover{TurnoverRepository: store.Turnover(), key: "A"}, nil)

	summary, err := uc.Calculate(context.Background(), day(4), period.Daily)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
}

func TestTurnoverCalculate_GranularidadInvalida(t *testing.T) {
	uc := newTurnover(seedStore(), nil, nil)
	_, err := uc.Calculate(context.Background(), day(4), period.Granularity("yearly"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedGranularity)
}

func TestTurnoverList_FiltrosYPaginacion(t *testing.T) {
	store := seedStore()
	uc := newTurnover(store, nil, nil)
	ctx := context.Background()
	for _, d := range []int{4, 5, 6} {
		_, err := uc.Calculate(ctx, day(d), period.Daily)
		require.NoError(t, err)
	}

	res, err := uc.List(ctx, dto.SnapshotListQuery{Scope: "product", Key: "A"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "2024-03-04", res.Items[0].Date)

	res, err = uc.List(ctx, dto.SnapshotListQuery{Scope: "overall", StartDate: "2024-03-05", EndDate: "2024-03-06"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = uc.List(ctx, dto.SnapshotListQuery{PageRequest: dto.PageRequest{Limit: 2, Offset: 1}, Scope: "overall"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "2024-03-05", res.Items[0].Date)
	assert.Equal(t, 2, res.Page.Count)

	_, err = uc.List(ctx, dto.SnapshotListQuery{Scope: "warehouse"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.SnapshotListQuery{StartDate: "2024-03-06", EndDate: "2024-03-05"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestTurnoverList_EstadoDeStockYCategoria(t *testing.T) {
	store := seedStore()
	uc := newTurnover(store, nil, nil)
	ctx := context.Background()
	_, err := uc.Calculate(ctx, day(4), period.Daily)
	require.NoError(t, err)

	res, err := uc.List(ctx, dto.SnapshotListQuery{StockStatus: entity.StockStatusStockout})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "C", res.Items[0].ScopeKey)

	// Sin alcance, la categoría filtra productos: B es inactivo y no tiene snapshot.
	res, err = uc.List(ctx, dto.SnapshotListQuery{Category: "bebidas"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "product", res.Items[0].Scope)
	assert.Equal(t, "A", res.Items[0].ScopeKey)

	res, err = uc.List(ctx, dto.SnapshotListQuery{Scope: "category", Category: "bebidas"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "bebidas", res.Items[0].ScopeKey)

	res, err = uc.List(ctx, dto.SnapshotListQuery{Category: "ropa"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = uc.List(ctx, dto.SnapshotListQuery{Scope: "overall", Category: "bebidas"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTurnoverSummary_UnaVentanaCuentaUnaVez(t *testing.T) {
	store := seedStore()
	uc := newTurnover(store, nil, nil)
	ctx := context.Background()
	// Dos fechas de referencia de la misma semana.
	for _, d := range []int{4, 6} {
		_, err := uc.Calculate(ctx, day(d), period.Weekly)
		require.NoError(t, err)
	}

	sum, err := uc.Summary(ctx, day(1), day(10), period.Weekly)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Snapshots)
	assertDec(t, 60, sum.TotalSalesAmount, "ventas de órdenes completadas")
	require.NotNil(t, sum.LatestHealth)
	assert.Equal(t, "2024-03-06", sum.LatestHealth.Date)

	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "A", sum.TopProducts[0].ProductID)
	assert.Equal(t, "SKU-A", sum.TopProducts[0].SKU)
	assert.Equal(t, 1, sum.TopProducts[0].Snapshots)
	// 5 / 10 × 365 / 7
	assertDecStr(t, "26.0714", sum.TopProducts[0].AvgTurnoverRate, "rotación semanal de A")
	assert.Equal(t, "C", sum.BottomProducts[0].ProductID)

	require.Len(t, sum.Categories, 1)
	assert.Equal(t, "bebidas", sum.Categories[0].Category)
}

func TestTurnoverSummary_SinDatos(t *testing.T) {
	uc := newTurnover(seedStore(), nil, nil)
	sum, err := uc.Summary(context.Background(), day(1), day(10), period.Daily)
	require.NoError(t, err)
	assert.Zero(t, sum.Snapshots)
	assert.Nil(t, sum.LatestHealth)
	assert.Empty(t, sum.TopProducts)
	assert.True(t, sum.AvgTurnoverRate.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Rentabilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestProfitCalculate_CostosPorAlcance(t *testing.T) {
	store := seedStore()
	uc := newProfit(store, nil)
	ctx := context.Background()

	summary, err := uc.Calculate(ctx, day(4), period.Daily)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)

	res, err := uc.List(ctx, dto.SnapshotListQuery{})
	require.NoError(t, err)

	overall := findProfit(res.Items, "overall", "*")
	require.NotNil(t, overall)
	assert.Equal(t, 1, overall.TotalOrders)
	assertDec(t, 60, overall.SalesAmount, "ventas")
	assertDec(t, 10, overall.ProductCost, "costo de producto")
	assertDec(t, 5, overall.ShippingCost, "envío real")
	assertDec(t, 30, overall.TotalCost, "costo total")
	assertDec(t, 30, overall.NetProfit, "utilidad neta")
	assertDec(t, 50, overall.NetProfitRate, "margen neto")

	a := findProfit(res.Items, "product", "A")
	require.NotNil(t, a)
	assertDec(t, 2, a.UnitCost, "costo unitario")
	assertDec(t, 25, a.ShippingCost, "envío por unidad")
	assertDec(t, 15, a.NetProfit, "utilidad neta de A")

	cat := findProfit(res.Items, "category", "bebidas")
	require.NotNil(t, cat)
	assertDec(t, 5, cat.NetProfit, "utilidad neta de bebidas")
	assertDec(t, 50, cat.AverageOrderValue, "valor promedio por orden")
}

// Una línea de un producto que ya no está en el catálogo no aporta ventas ni costo y se reporta.
func TestProfitCalculate_LineasFueraDelCatalogoSeOmiten(t *testing.T) {
	store := seedStore()
	store.AddOrder(
		entity.Order{OrderNo: "ORD-3", OrderDate: day(6), Status: entity.OrderStatusCompleted, Total: dec(95), ShippingFee: dec(5)},
		entity.OrderItem{ProductID: "A", Quantity: dec(5), Total: dec(50)},
		entity.OrderItem{ProductID: "GONE", Quantity: dec(2), Total: dec(40)},
	)
	uc := newProfit(store, nil)
	ctx := context.Background()

	summary, err := uc.Calculate(ctx, day(6), period.Daily)
	require.NoError(t, err)
	// C sin categoría + la línea de GONE
	assert.Equal(t, 2, summary.Skipped)
	assert.Contains(t, summary.Warnings, "1 línea(s) de venta de productos fuera del catálogo excluidas (importe 40)")

	res, err := uc.List(ctx, dto.SnapshotListQuery{Scope: "overall"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	overall := res.Items[0]
	assertDec(t, 55, overall.SalesAmount, "ventas sin la línea desconocida")
	assertDec(t, 10, overall.ProductCost, "costo de producto")
	assertDec(t, 45, overall.GrossProfit, "utilidad bruta")
	// 55 - (10 + 5 envío + 10 operación + 5 otros)
	assertDec(t, 25, overall.NetProfit, "utilidad neta")
	assertDec(t, 5, overall.SalesQuantity, "unidades")
}

func TestTurnoverCalculate_LineasFueraDelCatalogoSeOmiten(t *testing.T) {
	store := seedStore()
	store.AddOrder(
		entity.Order{OrderNo: "ORD-3", OrderDate: day(6), Status: entity.OrderStatusCompleted, Total: dec(100)},
		entity.OrderItem{ProductID: "GONE", Quantity: dec(1), Total: dec(100)},
	)
	uc := newTurnover(store, nil, nil)
	ctx := context.Background()

	summary, err := uc.Calculate(ctx, day(6), period.Daily)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, summary.Warnings, 2)

	res, err := uc.List(ctx, dto.SnapshotListQuery{Scope: "overall"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].SalesAmount.IsZero())
	assert.True(t, res.Items[0].TurnoverRate.IsZero())
}

func TestProfitList_RangoDeMargenNeto(t *testing.T) {
	store := seedStore()
	uc := newProfit(store, nil)
	ctx := context.Background()
	_, err := uc.Calculate(ctx, day(4), period.Daily)
	require.NoError(t, err)

	// overall 50 %, A 30 %, bebidas 10 %, C sin ventas 0 %
	res, err := uc.List(ctx, dto.SnapshotListQuery{MinProfitRate: "20"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "overall", res.Items[0].Scope)
	assert.Equal(t, "A", res.Items[1].ScopeKey)

	res, err = uc.List(ctx, dto.SnapshotListQuery{MinProfitRate: "10", MaxProfitRate: "30", Scope: "category"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "bebidas", res.Items[0].ScopeKey)

	_, err = uc.List(ctx, dto.SnapshotListQuery{MinProfitRate: "40", MaxProfitRate: "30"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.SnapshotListQuery{MaxProfitRate: "mucho"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProfitCalculate_FalloDeLecturaAborta(t *testing.T) {
	store := seedStore()
	uc := newProfit(store, brokenSales{SalesRepository: store})

	summary, err := uc.Calculate(context.Background(), day(4), period.Daily)
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Processed)

	res, err := uc.List(context.Background(), dto.SnapshotListQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestProfitSummary_TendenciaYRankings(t *testing.T) {
	store := seedStore()
	uc := newProfit(store, nil)
	ctx := context.Background()
	for _, d := range []int{4, 5} {
		_, err := uc.Calculate(ctx, day(d), period.Daily)
		require.NoError(t, err)
	}

	sum, err := uc.Summary(ctx, day(4), day(5), period.Daily)
	require.NoError(t, err)
	require.Len(t, sum.Trend, 2)
	assert.Equal(t, "2024-03-04", sum.Trend[0].Date)
	assert.True(t, sum.Trend[1].SalesAmount.IsZero())
	assert.Equal(t, 1, sum.TotalOrders)
	assertDec(t, 60, sum.TotalSales, "ventas")
	assertDec(t, 30, sum.NetProfit, "utilidad neta")

	require.NotEmpty(t, sum.TopProducts)
	assert.Equal(t, "A", sum.TopProducts[0].ProductID)
	assert.Equal(t, "Agua", sum.TopProducts[0].Name)
	assert.Equal(t, "C", sum.BottomProducts[0].ProductID)

	require.Len(t, sum.Categories, 1)
	assertDec(t, 5, sum.Categories[0].NetProfit, "utilidad de la categoría")
	assertDec(t, 50, sum.Categories[0].AvgOrderValue, "valor promedio por orden")
}

func TestProfitSummary_RangoInvalido(t *testing.T) {
	uc := newProfit(seedStore(), nil)
	_, err := uc.Summary(context.Background(), day(5), day(4), period.Daily)
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
