package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/analysis"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

// AnalysisHandler endpoints de snapshots de rotación y rentabilidad.
type AnalysisHandler struct {
	turnover *analysis.TurnoverUseCase
	profit   *analysis.ProfitUseCase
}

// NewAnalysisHandler construye el handler.
func NewAnalysisHandler(turnover *analysis.TurnoverUseCase, profit *analysis.ProfitUseCase) *AnalysisHandler {
	return &AnalysisHandler{turnover: turnover, profit: profit}
}

type calculateFunc func(ctx context.Context, ref time.Time, g period.Granularity) (*dto.RunSummaryDTO, error)

func calculate(c *fiber.Ctx, fn calculateFunc) error {
	var req dto.CalculateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}
	if err := validateStruct(req); err != nil {
		return respondError(c, err)
	}
	ref, err := period.ParseDate(req.Date)
	if err != nil {
		return respondError(c, err)
	}
	g, err := period.ParseGranularity(req.Granularity)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := fn(c.UserContext(), ref, g)
	if err != nil {
		return respondRunError(c, err, summary)
	}
	return c.JSON(summary)
}

func parseListQuery(c *fiber.Ctx) (dto.SnapshotListQuery, error) {
	var q dto.SnapshotListQuery
	if err := c.QueryParser(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "parámetros de consulta inválidos")
	}
	return q, validateStruct(q)
}

func parseSummaryQuery(c *fiber.Ctx) (time.Time, time.Time, period.Granularity, error) {
	var q dto.SummaryQuery
	if err := c.QueryParser(&q); err != nil {
		return time.Time{}, time.Time{}, "", fiber.NewError(fiber.StatusBadRequest, "parámetros de consulta inválidos")
	}
	if err := validateStruct(q); err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	from, to, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	g, err := period.ParseGranularity(q.Granularity)
	return from, to, g, err
}

// queryError responde los errores de parseo de query; fiber.Error conserva su código.
func queryError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: fe.Message})
	}
	return respondError(c, err)
}

// CalculateTurnover godoc
// @Summary      Calcula snapshots de rotación para la ventana de una fecha
// @Description  Genera el snapshot general, uno por producto activo y uno por categoría.
// @Tags         analysis
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalculateRequest  true  "Fecha de referencia y granularidad"
// @Success      200  {object}  dto.RunSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/analysis/turnover/calculate [post]
func (h *AnalysisHandler) CalculateTurnover(c *fiber.Ctx) error {
	return calculate(c, h.turnover.Calculate)
}

// ListTurnover godoc
// @Summary      Lista snapshots de rotación
// @Tags         analysis
// @Security     Bearer
// @Produce      json
// @Param        scope        query  string  false  "overall | product | category"
// @Param        key          query  string  false  "ID de producto o categoría"
// @Param        granularity  query  string  false  "daily | weekly | monthly"
// @Param        start_date   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date     query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit        query  int     false  "Máximo de filas (default 100, max 500)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Param        category      query  string  false  "Categoría de los productos, o clave del alcance category"
// @Param        stock_status  query  string  false  "stockout | overstock | normal"
// @Success      200  {object}  dto.TurnoverListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analysis/turnover [get]
func (h *AnalysisHandler) ListTurnover(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return queryError(c, err)
	}
	res, err := h.turnover.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// TurnoverSummary godoc
// @Summary      Resumen de rotación de un rango
// @Tags         analysis
// @Security     Bearer
// @Produce      json
// @Param        granularity  query  string  true  "daily | weekly | monthly"
// @Param        start_date   query  string  true  "Desde (YYYY-MM-DD)"
// @Param        end_date     query  string  true  "Hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.TurnoverSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analysis/turnover/summary [get]
func (h *AnalysisHandler) TurnoverSummary(c *fiber.Ctx) error {
	from, to, g, err := parseSummaryQuery(c)
	if err != nil {
		return queryError(c, err)
	}
	res, err := h.turnover.Summary(c.UserContext(), from, to, g)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// CalculateProfit godoc
// @Summary      Calcula snapshots de rentabilidad para la ventana de una fecha
// @Tags         analysis
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalculateRequest  true  "Fecha de referencia y granularidad"
// @Success      200  {object}  dto.RunSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/analysis/profit/calculate [post]
func (h *AnalysisHandler) CalculateProfit(c *fiber.Ctx) error {
	return calculate(c, h.profit.Calculate)
}

// ListProfit godoc
// @Summary      Lista snapshots de rentabilidad
// @Tags         analysis
// @Security     Bearer
// @Produce      json
// @Param        scope        query  string  false  "overall | product | category"
// @Param        key          query  string  false  "ID de producto o categoría"
// @Param        granularity  query  string  false  "daily | weekly | monthly"
// @Param        start_date   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date     query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit        query  int     false  "Máximo de filas (default 100, max 500)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Param        category         query  string  false  "Categoría de los productos, o clave del alcance category"
// @Param        min_profit_rate  query  number  false  "Margen neto mínimo (%)"
// @Param        max_profit_rate  query  number  false  "Margen neto máximo (%)"
// @Success      200  {object}  dto.ProfitListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analysis/profit [get]
func (h *AnalysisHandler) ListProfit(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return queryError(c, err)
	}
	res, err := h.profit.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ProfitSummary godoc
// @Summary      Resumen de rentabilidad de un rango
// @Tags         analysis
// @Security     Bearer
// @Produce      json
// @Param        granularity  query  string  true  "daily | weekly | monthly"
// @Param        start_date   query  string  true  "Desde (YYYY-MM-DD)"
// @Param        end_date     query  string  true  "Hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.ProfitSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analysis/profit/summary [get]
func (h *AnalysisHandler) ProfitSummary(c *fiber.Ctx) error {
	from, to, g, err := parseSummaryQuery(c)
	if err != nil {
		return queryError(c, err)
	}
	res, err := h.profit.Summary(c.UserContext(), from, to, g)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
