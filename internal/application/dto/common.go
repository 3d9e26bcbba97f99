package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RunSummaryDTO resultado de una corrida de timeline o de cálculo de snapshots.
// Processed cuenta filas/snapshots escritos; Skipped, entradas descartadas por datos de referencia
// faltantes; Failed, unidades cuya escritura falló.
type RunSummaryDTO struct {
	Operation      string   `json:"operation"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Granularity    string   `json:"granularity,omitempty"`
	DatesCompleted int      `json:"dates_completed"`
	Processed      int      `json:"processed"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
	Cancelled      bool     `json:"cancelled"`
	Warnings       []string `json:"warnings"`
}

// RunErrorResponse error de una corrida que alcanzó a procesar parte del rango.
type RunErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Summary *RunSummaryDTO `json:"summary"`
}
