package timeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/timeline"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
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

func newUseCase(store *memory.Store, ledger repository.LedgerRepository, movements repository.StockMovementRepository, opts timeline.Options) *timeline.TimelineUseCase {
	if ledger == nil {
		ledger = store
	}
	if movements == nil {
		movements = store
	}
	return timeline.NewTimelineUseCase(store, movements, store, ledger, lock.NewLocalLocker(), opts, zerolog.Nop())
}

func seedProduct(store *memory.Store, id string) {
	store.AddProduct(entity.Product{ID: id, SKU: "SKU-" + id, Name: id, Category: "general", Status: entity.ProductStatusActive})
}

// failingLedger falla la escritura de una fecha concreta.
type failingLedger struct {
	*memory.Store
	failOn time.Time
}

func (f failingLedger) Upsert(ctx context.Context, row entity.DailyLedgerRow) error {
	if row.Date.Equal(f.failOn) {
		return errors.New("disco lleno")
	}
	return f.Store.Upsert(ctx, row)
}

// cancelAfterFirstChunk cancela el contexto en la primera lectura de movimientos.
type cancelAfterFirstChunk struct {
	*memory.Store
	cancel context.CancelFunc
	calls  int
}

func (c *cancelAfterFirstChunk) ListBetween(ctx context.Context, from, to time.Time) ([]entity.StockMovement, error) {
	c.calls++
	if c.calls == 1 {
		c.cancel()
	}
	return c.Store.ListBetween(ctx, from, to)
}

type brokenMovements struct{ *memory.Store }

func (brokenMovements) ListBetween(context.Context, time.Time, time.Time) ([]entity.StockMovement, error) {
	return nil, errors.New("conexión perdida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Generate
// ──────────────────────────────────────────────────────────────────────────────

// IN +100 el día 1, OUT -30 el día 2, nada el día 3 → (0,100), (100,70), (70,70).
func TestGenerate_ArrastraCierreComoApertura(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementIn, Quantity: dec(100), OccurredOn: day(1)})
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementOut, Quantity: dec(-30), OccurredOn: day(2)})

	uc := newUseCase(store, nil, nil, timeline.Options{ChunkDays: 2})
	summary, err := uc.Generate(context.Background(), day(1), day(3))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.DatesCompleted)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)

	rows, err := store.ListByProduct(context.Background(), "P", day(1), day(3))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	want := [][2]int64{{0, 100}, {100, 70}, {70, 70}}
	for i, r := range rows {
		assertDec(t, want[i][0], r.OpeningStock, "apertura")
		assertDec(t, want[i][1], r.ClosingStock, "cierre")
		// closing = opening + incoming - outgoing + adjustments
		assert.True(t, r.ClosingStock.Equal(r.OpeningStock.Add(r.Incoming).Sub(r.Outgoing).Add(r.Adjustments)))
	}
	assertDec(t, 30, rows[1].Outgoing, "salida en magnitud")
}

func TestGenerate_AperturaDesdeFilaPrevia(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	require.NoError(t, store.Upsert(context.Background(), entity.DailyLedgerRow{ProductID: "P", Date: day(9), ClosingStock: dec(50)}))

	uc := newUseCase(store, nil, nil, timeline.Options{})
	_, err := uc.Generate(context.Background(), day(10), day(10))
	require.NoError(t, err)

	row, err := store.GetRow(context.Background(), "P", day(10))
	require.NoError(t, err)
	require.NotNil(t, row)
	assertDec(t, 50, row.OpeningStock, "apertura")
	assertDec(t, 50, row.ClosingStock, "cierre")
}

func TestGenerate_AjustesConservanSigno(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementIn, Quantity: dec(20), OccurredOn: day(1)})
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementAdjust, Quantity: dec(-5), OccurredOn: day(1)})
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementCount, Quantity: dec(2), OccurredOn: day(1)})

	uc := newUseCase(store, nil, nil, timeline.Options{})
	_, err := uc.Generate(context.Background(), day(1), day(1))
	require.NoError(t, err)

	row, err := store.GetRow(context.Background(), "P", day(1))
	require.NoError(t, err)
	assertDec(t, -3, row.Adjustments, "ajustes")
	assertDec(t, 17, row.ClosingStock, "cierre")
}

func TestGenerate_EnTransito(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	eta := day(3)
	store.AddTransit(entity.TransitShipment{ProductID: "P", SourceShipmentID: "PL-1", Quantity: dec(40), ShippedOn: day(1), EstimatedArrival: &eta, Mode: entity.TransitModeSea, Status: entity.TransitStatusInTransit})
	store.AddTransit(entity.TransitShipment{ProductID: "P", SourceShipmentID: "PL-2", Quantity: dec(10), ShippedOn: day(2), Mode: entity.TransitModeAir, Status: entity.TransitStatusInTransit})
	store.AddTransit(entity.TransitShipment{ProductID: "P", SourceShipmentID: "PL-3", Quantity: dec(99), ShippedOn: day(1), Mode: entity.TransitModeAir, Status: entity.TransitStatusArrived})

	uc := newUseCase(store, nil, nil, timeline.Options{ChunkDays: 1})
	_, err := uc.Generate(context.Background(), day(1), day(4))
	require.NoError(t, err)

	rows, err := store.ListByProduct(context.Background(), "P", day(1), day(4))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assertDec(t, 40, rows[0].InTransitQuantity, "día 1")
	assertDec(t, 50, rows[1].InTransitQuantity, "día 2")
	// El día de llegada estimada ya no cuenta.
	assertDec(t, 10, rows[2].InTransitQuantity, "día 3")
	assertDec(t, 10, rows[3].InTransitQuantity, "día 4")
	require.Len(t, rows[1].InTransitDetail, 2)
	assert.Equal(t, "PL-1", rows[1].InTransitDetail[0].SourceShipmentID)
	assert.Equal(t, entity.TransitModeAir, rows[1].InTransitDetail[1].Mode)
}

func TestGenerate_MovimientoDeProductoDesconocido(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	store.AddMovement(entity.StockMovement{ProductID: "FANTASMA", Kind: entity.MovementIn, Quantity: dec(5), OccurredOn: day(1)})

	uc := newUseCase(store, nil, nil, timeline.Options{})
	summary, err := uc.Generate(context.Background(), day(1), day(2))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Processed)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "FANTASMA")
}

func TestGenerate_ValidaRango(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store, nil, nil, timeline.Options{MaxRangeDays: 366})

	_, err := uc.Generate(context.Background(), day(5), day(4))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = uc.Generate(context.Background(), day(1), day(1).AddDate(1, 0, 1))
	assert.ErrorIs(t, err, domain.ErrRangeTooLong)
	assert.Zero(t, store.LedgerSize(), "no se escribe nada si el rango es inválido")
}

func TestGenerate_FalloDeEscrituraNoDetieneLaCorrida(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementIn, Quantity: dec(10), OccurredOn: day(1)})
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementIn, Quantity: dec(5), OccurredOn: day(2)})

	uc := newUseCase(store, failingLedger{Store: store, failOn: day(2)}, nil, timeline.Options{})
	summary, err := uc.Generate(context.Background(), day(1), day(3))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Processed)

	row, err := store.GetRow(context.Background(), "P", day(3))
	require.NoError(t, err)
	require.NotNil(t, row)
	assertDec(t, 15, row.OpeningStock, "el arrastre en memoria no se pierde")
}

func TestGenerate_CancelacionDejaPrefijoCompleto(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "A")
	seedProduct(store, "B")
	seedProduct(store, "C")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	movements := &cancelAfterFirstChunk{Store: store, cancel: cancel}

	uc := newUseCase(store, nil, movements, timeline.Options{ChunkDays: 2, Workers: 2})
	summary, err := uc.Generate(ctx, day(1), day(6))
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Equal(t, 2, summary.DatesCompleted)
	assert.Equal(t, 6, summary.Processed, "3 productos × 2 días")
	assert.Equal(t, 6, store.LedgerSize())

	for _, id := range []string{"A", "B", "C"} {
		rows, err := store.ListByProduct(context.Background(), id, day(1), day(6))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, day(1), rows[0].Date)
		assert.Equal(t, day(2), rows[1].Date)
	}
}

func TestGenerate_LecturaFallidaAborta(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")

	uc := newUseCase(store, nil, brokenMovements{store}, timeline.Options{})
	summary, err := uc.Generate(context.Background(), day(1), day(3))
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Zero(t, summary.Processed)
	assert.Zero(t, store.LedgerSize())
}

func TestGenerate_LockOcupado(t *testing.T) {
	store := memory.NewStore()
	locker := lock.NewLocalLocker()
	release, err := locker.TryAcquire(context.Background(), timeline.LockKey, time.Minute)
	require.NoError(t, err)
	defer func() { _ = release(context.Background()) }()

	uc := timeline.NewTimelineUseCase(store, store, store, store, locker, timeline.Options{}, zerolog.Nop())
	_, err = uc.Generate(context.Background(), day(1), day(1))
	assert.ErrorIs(t, err, domain.ErrCalculationInProgress)
}

func TestGenerate_Idempotente(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	store.AddMovement(entity.StockMovement{ProductID: "P", Kind: entity.MovementIn, Quantity: dec(7), OccurredOn: day(2)})

	uc := newUseCase(store, nil, nil, timeline.Options{})
	_, err := uc.Generate(context.Background(), day(1), day(5))
	require.NoError(t, err)
	first, err := store.ListByProduct(context.Background(), "P", day(1), day(5))
	require.NoError(t, err)

	_, err = uc.Generate(context.Background(), day(1), day(5))
	require.NoError(t, err)
	second, err := store.ListByProduct(context.Background(), "P", day(1), day(5))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 5, store.LedgerSize())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetTimeline(t *testing.T) {
	store := memory.NewStore()
	seedProduct(store, "P")
	eta := day(9)
	store.AddTransit(entity.TransitShipment{ProductID: "P", SourceShipmentID: "PL-1", Quantity: dec(3), ShippedOn: day(1), EstimatedArrival: &eta, Mode: entity.TransitModeSea, Status: entity.TransitStatusInTransit})

	uc := newUseCase(store, nil, nil, timeline.Options{})
	_, err := uc.Generate(context.Background(), day(1), day(2))
	require.NoError(t, err)

	resp, err := uc.GetTimeline(context.Background(), "P", day(1), day(2))
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "2024-03-01", resp.Rows[0].Date)
	require.Len(t, resp.Rows[0].InTransitDetail, 1)
	require.NotNil(t, resp.Rows[0].InTransitDetail[0].EstimatedArrival)
	assert.Equal(t, "2024-03-09", *resp.Rows[0].InTransitDetail[0].EstimatedArrival)

	_, err = uc.GetTimeline(context.Background(), "", day(1), day(2))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransitSummary(t *testing.T) {
	store := memory.NewStore()
	store.AddTransit(entity.TransitShipment{ProductID: "A", Quantity: dec(10), ShippedOn: day(1), Mode: entity.TransitModeSea, Status: entity.TransitStatusInTransit})
	store.AddTransit(entity.TransitShipment{ProductID: "A", Quantity: dec(5), ShippedOn: day(1), Mode: entity.TransitModeAir, Status: entity.TransitStatusInTransit})
	store.AddTransit(entity.TransitShipment{ProductID: "B", Quantity: dec(7), ShippedOn: day(1), Mode: entity.TransitModeSea, Status: entity.TransitStatusInTransit})
	store.AddTransit(entity.TransitShipment{ProductID: "B", Quantity: dec(100), ShippedOn: day(1), Mode: entity.TransitModeSea, Status: entity.TransitStatusCancelled})

	uc := newUseCase(store, nil, nil, timeline.Options{})

	all, err := uc.TransitSummary(context.Background(), "")
	require.NoError(t, err)
	assertDec(t, 22, all.TotalQuantity, "total")
	assert.Equal(t, 3, all.TotalRecords)
	require.Len(t, all.ByMode, 2)
	assert.Equal(t, entity.TransitModeAir, all.ByMode[0].Mode)
	assertDec(t, 17, all.ByMode[1].Quantity, "SEA")

	onlyA, err := uc.TransitSummary(context.Background(), "A")
	require.NoError(t, err)
	assertDec(t, 15, onlyA.TotalQuantity, "producto A")
}

func TestListTransit_FiltrosYOrden(t *testing.T) {
	store := memory.NewStore()
	store.AddTransit(entity.TransitShipment{ID: "t1", ProductID: "A", SourceShipmentID: "PL-1", Quantity: dec(10), ShippedOn: day(1), Mode: entity.TransitModeSea, Status: entity.TransitStatusInTransit})
	store.AddTransit(entity.TransitShipment{ID: "t2", ProductID: "A", SourceShipmentID: "PL-2", Quantity: dec(5), ShippedOn: day(3), Mode: entity.TransitModeAir, Status: entity.TransitStatusArrived})
	store.AddTransit(entity.TransitShipment{ID: "t3", ProductID: "B", SourceShipmentID: "PL-2", Quantity: dec(7), ShippedOn: day(2), Mode: entity.TransitModeSea, Status: entity.TransitStatusCancelled})
	uc := newUseCase(store, nil, nil, timeline.Options{})
	ctx := context.Background()

	all, err := uc.ListTransit(ctx, dto.TransitListQuery{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3, "incluye llegados y cancelados")
	assert.Equal(t, "t2", all.Items[0].ID, "despacho más reciente primero")
	assert.Equal(t, "2024-03-03", all.Items[0].ShippedOn)
	assert.Equal(t, 100, all.Page.Limit)

	pl2, err := uc.ListTransit(ctx, dto.TransitListQuery{SourceShipmentID: "PL-2", Mode: entity.TransitModeSea})
	require.NoError(t, err)
	require.Len(t, pl2.Items, 1)
	assert.Equal(t, "t3", pl2.Items[0].ID)

	ranged, err := uc.ListTransit(ctx, dto.TransitListQuery{StartDate: "2024-03-01", EndDate: "2024-03-02", Status: entity.TransitStatusInTransit})
	require.NoError(t, err)
	require.Len(t, ranged.Items, 1)
	assert.Equal(t, "t1", ranged.Items[0].ID)

	paged, err := uc.ListTransit(ctx, dto.TransitListQuery{PageRequest: dto.PageRequest{Limit: 1, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "t1", paged.Items[0].ID)

	_, err = uc.ListTransit(ctx, dto.TransitListQuery{StartDate: "2024-03-05", EndDate: "2024-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
