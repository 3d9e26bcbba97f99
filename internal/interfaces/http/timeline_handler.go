package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/timeline"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

// TimelineHandler endpoints del ledger diario y del resumen de tránsito.
type TimelineHandler struct {
	uc *timeline.TimelineUseCase
}

// NewTimelineHandler construye el handler.
func NewTimelineHandler(uc *timeline.TimelineUseCase) *TimelineHandler {
	return &TimelineHandler{uc: uc}
}

// Generate godoc
// @Summary      Genera el ledger diario de un rango de fechas
// @Description  Recalcula una fila por producto y día en [start_date, end_date]. Idempotente.
// @Tags         timeline
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateTimelineRequest  true  "Rango de fechas"
// @Success      200  {object}  dto.RunSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.RunErrorResponse
// @Router       /api/timeline/generate [post]
func (h *TimelineHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateTimelineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}
	if err := validateStruct(req); err != nil {
		return respondError(c, err)
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return respondError(c, err)
	}
	summary, err := h.uc.Generate(c.UserContext(), start, end)
	if err != nil {
		return respondRunError(c, err, summary)
	}
	return c.JSON(summary)
}

// Get godoc
// @Summary      Filas del ledger de un producto
// @Tags         timeline
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Param        start_date  query  string  true  "Inicio (YYYY-MM-DD)"
// @Param        end_date    query  string  true  "Fin (YYYY-MM-DD)"
// @Success      200  {object}  dto.TimelineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/timeline [get]
func (h *TimelineHandler) Get(c *fiber.Ctx) error {
	var q dto.TimelineQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := validateStruct(q); err != nil {
		return respondError(c, err)
	}
	start, end, err := parseRange(q.StartDate, q.EndDate)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.GetTimeline(c.UserContext(), q.ProductID, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// TransitSummary godoc
// @Summary      Mercancía en tránsito por modo de transporte
// @Tags         transit
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtra por producto"
// @Success      200  {object}  dto.TransitSummaryDTO
// @Router       /api/transit/summary [get]
func (h *TimelineHandler) TransitSummary(c *fiber.Ctx) error {
	res, err := h.uc.TransitSummary(c.UserContext(), c.Query("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ListTransit godoc
// @Summary      Envíos en tránsito
// @Description  Envíos de cualquier estado, del despacho más reciente al más antiguo.
// @Tags         transit
// @Security     Bearer
// @Produce      json
// @Param        product_id          query  string  false  "Filtra por producto"
// @Param        source_shipment_id  query  string  false  "Packing list de origen"
// @Param        mode                query  string  false  "SEA o AIR"
// @Param        status              query  string  false  "IN_TRANSIT, ARRIVED o CANCELLED"
// @Param        start_date          query  string  false  "Despacho desde (YYYY-MM-DD)"
// @Param        end_date            query  string  false  "Despacho hasta (YYYY-MM-DD)"
// @Param        limit               query  int     false  "Tamaño de página"
// @Param        offset              query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransitListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transit [get]
func (h *TimelineHandler) ListTransit(c *fiber.Ctx) error {
	var q dto.TransitListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	if err := validateStruct(q); err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.ListTransit(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// parseRange interpreta un par de fechas YYYY-MM-DD.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := period.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := period.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
