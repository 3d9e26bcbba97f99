package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidRange           = errors.New("rango de fechas inválido: la fecha final es anterior a la inicial")
	ErrRangeTooLong           = errors.New("rango de fechas demasiado largo")
	ErrUnsupportedGranularity = errors.New("granularidad no soportada")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrCalculationInProgress  = errors.New("ya hay un cálculo en curso para esta clave")
)
