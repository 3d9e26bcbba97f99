package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de stock.
type MovementKind string

// Tipos de movimiento. IN y OUT se acumulan en magnitud; ADJUST y COUNT conservan el signo.
const (
	MovementIn     MovementKind = "IN"     // entrada
	MovementOut    MovementKind = "OUT"    // salida
	MovementAdjust MovementKind = "ADJUST" // ajuste manual
	MovementCount  MovementKind = "COUNT"  // conteo físico (diferencia con el sistema)
)

// StockMovement movimiento de stock inmutable registrado por el sistema de inventario.
type StockMovement struct {
	ID            string
	ProductID     string
	Kind          MovementKind
	Quantity      decimal.Decimal // con signo: OUT suele venir negativo
	PreviousStock decimal.Decimal
	CurrentStock  decimal.Decimal
	OccurredOn    time.Time // fecha civil
	Reference     string    // orden, guía, nota de ajuste, etc.
}
