package ports

import (
	"context"
	"time"
)

// Locker puerto de salida para serializar corridas concurrentes sobre la misma clave
// (timeline o cálculo de un período). Adaptadores: Redis (multi-instancia) y en proceso.
type Locker interface {
	// TryAcquire intenta tomar la clave sin esperar. Si ya está tomada devuelve
	// domain.ErrCalculationInProgress. release libera la clave y es seguro llamarla una sola vez.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
