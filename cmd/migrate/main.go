// migrate aplica o revierte el esquema de PostgreSQL embebido en el binario.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [n]   (sin n revierte todo)
//	go run ./cmd/migrate version
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func usage() {
	fmt.Fprintln(os.Stderr, "uso: migrate up | down [n] | version")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		n := 0
		if len(os.Args) > 2 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n < 0 {
				usage()
			}
		}
		err = m.Down(n)
	case "version":
	default:
		usage()
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", os.Args[1]).Msg("migración fallida")
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Error().Err(err).Msg("leer versión")
		os.Exit(1)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Str("cmd", os.Args[1]).Msg("esquema al día")
}
