package lock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
)

// Requiere un Redis real: REDIS_TEST_ADDR=localhost:6379 go test ./internal/infrastructure/lock/
func TestRedisLocker_ClaveOcupada(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR no definido")
	}
	ctx := context.Background()
	rdb, err := lock.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	l := lock.NewRedisLocker(rdb, "test:"+t.Name()+":")
	release, err := l.TryAcquire(ctx, "rollup:timeline", 10*time.Second)
	require.NoError(t, err)

	_, err = l.TryAcquire(ctx, "rollup:timeline", 10*time.Second)
	assert.ErrorIs(t, err, domain.ErrCalculationInProgress)

	require.NoError(t, release(ctx))
	// Liberar un lock ya liberado no es error.
	require.NoError(t, release(ctx))

	again, err := l.TryAcquire(ctx, "rollup:timeline", 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

// Un cálculo que dura más que el TTL conserva la clave.
func TestRedisLocker_RenuevaMientrasSeSostiene(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR no definido")
	}
	ctx := context.Background()
	rdb, err := lock.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	l := lock.NewRedisLocker(rdb, "test:"+t.Name()+":")
	release, err := l.TryAcquire(ctx, "rollup:profit:2024-03-04:daily", 200*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(700 * time.Millisecond)
	_, err = l.TryAcquire(ctx, "rollup:profit:2024-03-04:daily", time.Second)
	assert.ErrorIs(t, err, domain.ErrCalculationInProgress, "el TTL se renovó")

	require.NoError(t, release(ctx))
	again, err := l.TryAcquire(ctx, "rollup:profit:2024-03-04:daily", time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestNewRedisClient_SinServidor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := lock.NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
