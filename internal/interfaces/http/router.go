package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/analysis"
	"github.com/jhoicas/inventario-ledger/internal/application/timeline"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Timeline  *timeline.TimelineUseCase
	Turnover  *analysis.TurnoverUseCase
	Profit    *analysis.ProfitUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; los disparadores de cálculo
// además requieren rol admin o bodeguero.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	writer := RequireRole(RoleAdmin, RoleBodeguero)

	timelineHandler := NewTimelineHandler(deps.Timeline)
	api.Post("/timeline/generate", writer, timelineHandler.Generate)
	api.Get("/timeline", timelineHandler.Get)
	api.Get("/transit", timelineHandler.ListTransit)
	api.Get("/transit/summary", timelineHandler.TransitSummary)

	analysisHandler := NewAnalysisHandler(deps.Turnover, deps.Profit)
	turnover := api.Group("/analysis/turnover")
	turnover.Post("/calculate", writer, analysisHandler.CalculateTurnover)
	turnover.Get("/summary", analysisHandler.TurnoverSummary)
	turnover.Get("/", analysisHandler.ListTurnover)

	profit := api.Group("/analysis/profit")
	profit.Post("/calculate", writer, analysisHandler.CalculateProfit)
	profit.Get("/summary", analysisHandler.ProfitSummary)
	profit.Get("/", analysisHandler.ListProfit)
}
