// Command migrate aplica o revierte las migraciones embebidas contra la base configurada.
//
// Uso:
//
//	migrate up | down | version | force N | steps N
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
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
		err = m.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	case "force", "steps":
		if len(os.Args) < 3 {
			usage()
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Fatal().Err(convErr).Str("arg", os.Args[2]).Msg("N debe ser entero")
		}
		if os.Args[1] == "force" {
			err = m.Force(n)
		} else {
			err = m.Steps(n)
		}
	default:
		usage()
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", os.Args[1]).Msg("migración fallida")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: migrate up | down | version | force N | steps N")
	os.Exit(2)
}
