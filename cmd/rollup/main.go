// rollup dispara las corridas sin pasar por la API (cron, jobs de despliegue).
//
// Uso:
//
//	go run ./cmd/rollup timeline -start 2024-01-01 -end 2024-01-31
//	go run ./cmd/rollup turnover -date 2024-01-15 -granularity weekly
//	go run ./cmd/rollup profit -date 2024-01-15 -granularity monthly
//
// Imprime el resumen de la corrida como JSON en stdout. Sale con código 1 si la corrida
// falla o se cancela (SIGINT/SIGTERM), y con 2 ante argumentos inválidos.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/bootstrap"
	"github.com/jhoicas/inventario-ledger/internal/domain/period"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var errUsage = errors.New("uso: rollup timeline -start YYYY-MM-DD [-end YYYY-MM-DD] | turnover|profit [-date YYYY-MM-DD] -granularity daily|weekly|monthly")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, errUsage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "rollup"})
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("rollup con APP_STORAGE=memory no persiste nada")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		cleanup()
		log.Fatal().Err(err).Msg("inicializar servicios")
	}

	summary, err := dispatch(ctx, svc, os.Args[1], os.Args[2:])
	cleanup()
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, errUsage)
		os.Exit(2)
	}
	if summary != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(summary)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", os.Args[1]).Msg("corrida fallida")
		os.Exit(1)
	}
	if summary.Cancelled {
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, svc *bootstrap.Services, cmd string, args []string) (*dto.RunSummaryDTO, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	today := time.Now().UTC().Format(period.DateLayout)

	switch cmd {
	case "timeline":
		start := fs.String("start", "", "fecha inicial (YYYY-MM-DD)")
		end := fs.String("end", today, "fecha final (YYYY-MM-DD)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if *start == "" {
			return nil, errUsage
		}
		from, err := period.ParseDate(*start)
		if err != nil {
			return nil, err
		}
		to, err := period.ParseDate(*end)
		if err != nil {
			return nil, err
		}
		return svc.Timeline.Generate(ctx, from, to)

	case "turnover", "profit":
		date := fs.String("date", today, "fecha de referencia (YYYY-MM-DD)")
		gran := fs.String("granularity", "", "daily | weekly | monthly")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		ref, err := period.ParseDate(*date)
		if err != nil {
			return nil, err
		}
		g, err := period.ParseGranularity(*gran)
		if err != nil {
			return nil, err
		}
		if cmd == "turnover" {
			return svc.Turnover.Calculate(ctx, ref, g)
		}
		return svc.Profit.Calculate(ctx, ref, g)
	}
	return nil, errUsage
}
