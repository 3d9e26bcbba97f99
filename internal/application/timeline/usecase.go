// Package timeline reconstruye el ledger diario por producto a partir de movimientos
// de stock y envíos en tránsito.
package timeline

import (
	"context"
	"fmt"
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
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// LockKey clave del lock de generación del timeline (una corrida a la vez).
const LockKey = "rollup:timeline"

var tracer = otel.Tracer("github.com/jhoicas/inventario-ledger/internal/application/timeline")

// Options parámetros de una corrida.
type Options struct {
	MaxRangeDays int
	ChunkDays    int
	Workers      int
	LockTTL      time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRangeDays <= 0 {
		o.MaxRangeDays = 366
	}
	if o.ChunkDays <= 0 {
		o.ChunkDays = 7
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Minute
	}
	return o
}

// TimelineUseCase genera y consulta el ledger diario.
type TimelineUseCase struct {
	catalog   repository.CatalogRepository
	movements repository.StockMovementRepository
	transits  repository.TransitShipmentRepository
	ledger    repository.LedgerRepository
	locker    ports.Locker
	opts      Options
	log       zerolog.Logger
}

// NewTimelineUseCase construye el caso de uso.
func NewTimelineUseCase(
	catalog repository.CatalogRepository,
	movements repository.StockMovementRepository,
	transits repository.TransitShipmentRepository,
	ledger repository.LedgerRepository,
	locker ports.Locker,
	opts Options,
	log zerolog.Logger,
) *TimelineUseCase {
	return &TimelineUseCase{
		catalog:   catalog,
		movements: movements,
		transits:  transits,
		ledger:    ledger,
		locker:    locker,
		opts:      opts.withDefaults(),
		log:       log,
	}
}

// cursor estado de un producto durante la corrida. Cada cursor lo toca un solo worker por bloque.
type cursor struct {
	productID string
	opening   decimal.Decimal
}

// Generate reconstruye las filas de [start, end] para todos los productos del catálogo.
//
// El rango se procesa en bloques de ChunkDays. Dentro de un bloque cada producto avanza
// día a día en orden ascendente y los productos corren en paralelo (Workers). La cancelación
// de ctx se observa entre bloques: un bloque iniciado termina completo, de modo que las filas
// escritas siempre forman un prefijo de días completo.
//
// Errores de escritura de una fila se cuentan en Failed y la corrida continúa. Errores de lectura
// de las fuentes abortan la corrida y se devuelven junto con el resumen parcial.
func (uc *TimelineUseCase) Generate(ctx context.Context, start, end time.Time) (*dto.RunSummaryDTO, error) {
	start, end = period.Day(start), period.Day(end)
	if err := period.ValidateRange(start, end, uc.opts.MaxRangeDays); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "timeline.Generate", trace.WithAttributes(
		attribute.String("start_date", start.Format(period.DateLayout)),
		attribute.String("end_date", end.Format(period.DateLayout)),
	))
	defer span.End()

	release, err := uc.locker.TryAcquire(ctx, LockKey, uc.opts.LockTTL)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Msg("timeline: liberar lock")
		}
	}()

	t := run.NewTally("timeline", start, end)
	began := time.Now()

	summary, err := uc.generate(ctx, start, end, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(
		attribute.Int("processed", summary.Processed),
		attribute.Int("skipped", summary.Skipped),
		attribute.Int("failed", summary.Failed),
		attribute.Bool("cancelled", summary.Cancelled),
	)
	uc.log.Info().
		Str("start_date", summary.StartDate).
		Str("end_date", summary.EndDate).
		Int("dates_completed", summary.DatesCompleted).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Bool("cancelled", summary.Cancelled).
		Dur("elapsed", time.Since(began)).
		Err(err).
		Msg("timeline generado")
	return summary, err
}

func (uc *TimelineUseCase) generate(ctx context.Context, start, end time.Time, t *run.Tally) (*dto.RunSummaryDTO, error) {
	products, err := uc.catalog.ListProducts(ctx)
	if err != nil {
		return t.Summary(), fmt.Errorf("timeline: listar catálogo: %w", err)
	}

	cursors := make([]*cursor, 0, len(products))
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
		cursors = append(cursors, &cursor{productID: p.ID})
	}

	// Stock de apertura del primer día: cierre del día anterior o 0.
	prev := start.AddDate(0, 0, -1)
	for _, c := range cursors {
		row, err := uc.ledger.GetRow(ctx, c.productID, prev)
		if err != nil {
			return t.Summary(), fmt.Errorf("timeline: fila previa de %s: %w", c.productID, err)
		}
		c.opening = decimal.Zero
		if row != nil {
			c.opening = row.ClosingStock
		}
	}

	for from := start; !from.After(end); {
		if ctx.Err() != nil {
			t.Cancel()
			break
		}
		to := from.AddDate(0, 0, uc.opts.ChunkDays-1)
		if to.After(end) {
			to = end
		}
		if err := uc.processChunk(ctx, cursors, known, from, to, t); err != nil {
			return t.Summary(), err
		}
		from = to.AddDate(0, 0, 1)
	}
	return t.Summary(), nil
}

// processChunk lee las fuentes de [from, to] y reproduce el bloque para todos los cursores.
func (uc *TimelineUseCase) processChunk(ctx context.Context, cursors []*cursor, known map[string]struct{}, from, to time.Time, t *run.Tally) error {
	movements, err := uc.movements.ListBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("timeline: movimientos %s..%s: %w", from.Format(period.DateLayout), to.Format(period.DateLayout), err)
	}
	shipments, err := uc.transits.ListInTransitOverlapping(ctx, from, to)
	if err != nil {
		return fmt.Errorf("timeline: tránsito %s..%s: %w", from.Format(period.DateLayout), to.Format(period.DateLayout), err)
	}

	moves := make(map[string]map[time.Time][]entity.StockMovement)
	for _, m := range movements {
		if _, ok := known[m.ProductID]; !ok {
			t.Skipped(fmt.Sprintf("movimiento %s del %s: producto %s no existe en el catálogo",
				m.ID, m.OccurredOn.Format(period.DateLayout), m.ProductID))
			continue
		}
		byDay, ok := moves[m.ProductID]
		if !ok {
			byDay = make(map[time.Time][]entity.StockMovement)
			moves[m.ProductID] = byDay
		}
		day := period.Day(m.OccurredOn)
		byDay[day] = append(byDay[day], m)
	}

	transits := make(map[string][]entity.TransitShipment)
	for _, s := range shipments {
		transits[s.ProductID] = append(transits[s.ProductID], s)
	}

	// El bloque termina aunque ctx se cancele mientras corre.
	work := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(uc.opts.Workers)
	for _, c := range cursors {
		g.Go(func() error {
			uc.replayCursor(work, c, from, to, moves[c.productID], transits[c.productID], t)
			return nil
		})
	}
	_ = g.Wait()

	t.DatesCompleted(period.DaysBetween(from, to))
	return nil
}

func (uc *TimelineUseCase) replayCursor(ctx context.Context, c *cursor, from, to time.Time, moves map[time.Time][]entity.StockMovement, transits []entity.TransitShipment, t *run.Tally) {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		row := ReplayDay(c.productID, d, c.opening, moves[d], transits)
		if err := uc.ledger.Upsert(ctx, row); err != nil {
			uc.log.Warn().Err(err).Str("product_id", c.productID).Str("date", d.Format(period.DateLayout)).Msg("timeline: escribir fila")
			t.Failed(fmt.Sprintf("fila %s del %s: %v", c.productID, d.Format(period.DateLayout), err))
		} else {
			t.Processed()
		}
		// El cierre en memoria sigue siendo correcto aunque la escritura haya fallado.
		c.opening = row.ClosingStock
	}
}

// GetTimeline devuelve las filas de un producto en [start, end].
func (uc *TimelineUseCase) GetTimeline(ctx context.Context, productID string, start, end time.Time) (*dto.TimelineResponse, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	start, end = period.Day(start), period.Day(end)
	if err := period.ValidateRange(start, end, uc.opts.MaxRangeDays); err != nil {
		return nil, err
	}
	rows, err := uc.ledger.ListByProduct(ctx, productID, start, end)
	if err != nil {
		return nil, fmt.Errorf("timeline: consultar filas: %w", err)
	}
	out := &dto.TimelineResponse{
		ProductID: productID,
		StartDate: start.Format(period.DateLayout),
		EndDate:   end.Format(period.DateLayout),
		Rows:      make([]dto.LedgerRowDTO, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, ToLedgerRowDTO(r))
	}
	return out, nil
}

// TransitSummary totales en tránsito por modo de transporte. productID vacío = todos los productos.
func (uc *TimelineUseCase) TransitSummary(ctx context.Context, productID string) (*dto.TransitSummaryDTO, error) {
	totals, err := uc.transits.TotalsByMode(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("timeline: resumen de tránsito: %w", err)
	}
	out := &dto.TransitSummaryDTO{
		ProductID:     productID,
		TotalQuantity: decimal.Zero,
		ByMode:        make([]dto.TransitModeDTO, 0, len(totals)),
	}
	for _, m := range totals {
		out.TotalQuantity = out.TotalQuantity.Add(m.Quantity)
		out.TotalRecords += m.Records
		out.ByMode = append(out.ByMode, dto.TransitModeDTO{Mode: m.Mode, Quantity: m.Quantity, Records: m.Records})
	}
	return out, nil
}

// ListTransit envíos de cualquier estado, del despacho más reciente al más antiguo.
func (uc *TimelineUseCase) ListTransit(ctx context.Context, q dto.TransitListQuery) (*dto.TransitListResponse, error) {
	q.DefaultPage()
	f := repository.TransitFilter{
		ProductID:        q.ProductID,
		SourceShipmentID: q.SourceShipmentID,
		Mode:             q.Mode,
		Status:           q.Status,
		Limit:            q.Limit,
		Offset:           q.Offset,
	}
	var err error
	if q.StartDate != "" {
		if f.From, err = period.ParseDate(q.StartDate); err != nil {
			return nil, err
		}
	}
	if q.EndDate != "" {
		if f.To, err = period.ParseDate(q.EndDate); err != nil {
			return nil, err
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() {
		if err := period.ValidateRange(f.From, f.To, 0); err != nil {
			return nil, err
		}
	}
	shipments, err := uc.transits.ListShipments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("timeline: listar tránsito: %w", err)
	}
	items := make([]dto.TransitShipmentDTO, 0, len(shipments))
	for _, t := range shipments {
		items = append(items, ToTransitShipmentDTO(t))
	}
	return &dto.TransitListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Count: len(items)},
	}, nil
}
