package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

var _ ports.Locker = (*RedisLocker)(nil)

// RedisLocker lock distribuido sobre Redis para varias instancias del servicio.
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

// NewRedisLocker construye el adaptador. prefix se antepone a todas las claves.
func NewRedisLocker(rdb redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), prefix: prefix}
}

// TryAcquire toma la clave con un TTL; sin reintentos. Mientras no se libere, el TTL se renueva
// cada ttl/2 para que un cálculo largo no pierda la clave a mitad de camino.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lk, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCalculationInProgress, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}

	refreshCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		keepAlive(refreshCtx, lk, ttl)
	}()

	return func(ctx context.Context) error {
		stop()
		<-done
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("liberar lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// refreshEvery intervalo de renovación; 0 si el TTL es demasiado corto para renovar.
func refreshEvery(ttl time.Duration) time.Duration {
	if ttl < 2*time.Millisecond {
		return 0
	}
	return ttl / 2
}

// keepAlive renueva el TTL hasta que ctx se cancele o la clave deje de ser nuestra.
func keepAlive(ctx context.Context, lk *redislock.Lock, ttl time.Duration) {
	every := refreshEvery(ttl)
	if every == 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lk.Refresh(ctx, ttl, nil); errors.Is(err, redislock.ErrNotObtained) {
				return
			}
		}
	}
}

// NewRedisClient abre el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}
