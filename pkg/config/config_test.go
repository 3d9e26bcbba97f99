package config_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StoragePostgres, cfg.App.Storage)
	assert.Equal(t, 366, cfg.Ledger.MaxRangeDays)
	assert.Equal(t, 7, cfg.Ledger.ChunkDays)
	assert.Equal(t, 4, cfg.Ledger.Workers)
	assert.True(t, decimal.NewFromInt(5).Equal(cfg.Ledger.ShippingPerUnit))
	assert.True(t, decimal.NewFromInt(10).Equal(cfg.Ledger.OperationPerOrder))
	assert.True(t, decimal.NewFromInt(5).Equal(cfg.Ledger.OtherPerOrder))
	assert.Equal(t, 300*time.Second, cfg.Redis.LockTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_SobrescribeDesdeEnv(t *testing.T) {
	t.Setenv("APP_STORAGE", "MEMORY")
	t.Setenv("LEDGER_WORKERS", "8")
	t.Setenv("COST_SHIPPING_PER_UNIT", "7.5")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.App.Storage)
	assert.Equal(t, 8, cfg.Ledger.Workers)
	assert.True(t, decimal.RequireFromString("7.5").Equal(cfg.Ledger.ShippingPerUnit))
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_CostoInvalido(t *testing.T) {
	t.Setenv("COST_OPERATION_PER_ORDER", "diez")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_StorageDesconocido(t *testing.T) {
	t.Setenv("APP_STORAGE", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
