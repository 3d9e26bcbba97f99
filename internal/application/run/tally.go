// Package run acumula el resultado de una corrida (timeline o cálculo de snapshots)
// desde varios workers.
package run

import (
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
)

// MaxWarnings tope de advertencias devueltas; los contadores siguen siendo exactos.
const MaxWarnings = 50

// Tally contadores de una corrida, seguro para uso concurrente.
type Tally struct {
	mu  sync.Mutex
	sum dto.RunSummaryDTO
}

// NewTally inicia el resumen de la operación sobre [start, end].
func NewTally(operation string, start, end time.Time) *Tally {
	return &Tally{sum: dto.RunSummaryDTO{
		Operation: operation,
		StartDate: start.Format(period.DateLayout),
		EndDate:   end.Format(period.DateLayout),
		Warnings:  []string{},
	}}
}

// SetGranularity registra la granularidad de un cálculo de snapshots.
func (t *Tally) SetGranularity(g period.Granularity) {
	t.mu.Lock()
	t.sum.Granularity = string(g)
	t.mu.Unlock()
}

// Processed cuenta una unidad escrita.
func (t *Tally) Processed() {
	t.mu.Lock()
	t.sum.Processed++
	t.mu.Unlock()
}

// Failed cuenta una unidad cuya escritura falló.
func (t *Tally) Failed(warning string) {
	t.mu.Lock()
	t.sum.Failed++
	t.warnLocked(warning)
	t.mu.Unlock()
}

// Skipped cuenta una entrada descartada por datos de referencia faltantes.
func (t *Tally) Skipped(warning string) {
	t.mu.Lock()
	t.sum.Skipped++
	t.warnLocked(warning)
	t.mu.Unlock()
}

func (t *Tally) warnLocked(w string) {
	if w != "" && len(t.sum.Warnings) < MaxWarnings {
		t.sum.Warnings = append(t.sum.Warnings, w)
	}
}

// DatesCompleted suma n días completos.
func (t *Tally) DatesCompleted(n int) {
	t.mu.Lock()
	t.sum.DatesCompleted += n
	t.mu.Unlock()
}

// Cancel marca la corrida como cancelada.
func (t *Tally) Cancel() {
	t.mu.Lock()
	t.sum.Cancelled = true
	t.mu.Unlock()
}

// Summary copia del resumen actual.
func (t *Tally) Summary() *dto.RunSummaryDTO {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.sum
	out.Warnings = append([]string{}, t.sum.Warnings...)
	return &out
}
