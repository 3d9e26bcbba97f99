// Package period resuelve fechas de referencia a ventanas de calendario (día, semana, mes).
// Todas las fechas se manipulan como fechas civiles: medianoche UTC.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// DateLayout formato de fecha usado en la API y en la CLI.
const DateLayout = "2006-01-02"

// Granularity tamaño de la ventana de agregación.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity normaliza el texto recibido y valida que sea una granularidad conocida.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, s)
	}
	return g, nil
}

// Valid indica si g es una de las granularidades soportadas.
func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Bucket ventana cerrada [Start, End] derivada de una fecha y una granularidad.
type Bucket struct {
	Granularity Granularity
	Start       time.Time
	End         time.Time
}

// Days número de días de la ventana (siempre >= 1).
func (b Bucket) Days() int {
	return DaysBetween(b.Start, b.End)
}

// Contains indica si la fecha cae dentro de la ventana.
func (b Bucket) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(b.Start) && !d.After(b.End)
}

// Resolve calcula la ventana que contiene date para la granularidad g.
//   - daily: el mismo día
//   - weekly: lunes a domingo
//   - monthly: primer a último día del mes
func Resolve(date time.Time, g Granularity) (Bucket, error) {
	d := Day(date)
	switch g {
	case Daily:
		return Bucket{Granularity: g, Start: d, End: d}, nil
	case Weekly:
		// time.Weekday arranca en domingo (0); la semana arranca en lunes.
		offset := (int(d.Weekday()) + 6) % 7
		start := d.AddDate(0, 0, -offset)
		return Bucket{Granularity: g, Start: start, End: start.AddDate(0, 0, 6)}, nil
	case Monthly:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		// time.Date normaliza el mes 13 al enero siguiente.
		end := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		return Bucket{Granularity: g, Start: start, End: end}, nil
	default:
		return Bucket{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedGranularity, string(g))
	}
}

// Day trunca t a su fecha civil en UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta una fecha YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// DaysBetween cantidad de días de [start, end] inclusive. Devuelve 0 si end < start.
func DaysBetween(start, end time.Time) int {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// ValidateRange valida que end >= start y que el rango no exceda maxDays (0 = sin tope).
func ValidateRange(start, end time.Time, maxDays int) error {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return fmt.Errorf("%w: %s > %s", domain.ErrInvalidRange, s.Format(DateLayout), e.Format(DateLayout))
	}
	if maxDays > 0 {
		if n := DaysBetween(s, e); n > maxDays {
			return fmt.Errorf("%w: %d días (máximo %d)", domain.ErrRangeTooLong, n, maxDays)
		}
	}
	return nil
}
