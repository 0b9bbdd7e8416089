// migrate aplica las migraciones embebidas sobre la base configurada en DATABASE_URL / DB_*.
//
// Uso: go run ./cmd/migrate [-log-level info] <up|down|steps N|version|force V>
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/inventario-lotes/internal/infrastructure/migrations"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Nivel de log (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: "development", Level: logLevel})

	m, err := migrations.New(cfg.DB.ConnectionString(), log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	if err := run(m, args); err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("migración fallida")
		os.Exit(1)
	}
}

func run(m *migrations.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		return nil
	default:
		printUsage()
		return fmt.Errorf("comando desconocido %q", args[0])
	}
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requiere un argumento numérico", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("%s: argumento inválido %q", args[0], args[1])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Uso: migrate [-log-level nivel] <comando>

Comandos:
  up          aplica todas las migraciones pendientes
  down        revierte todas las migraciones
  steps N     aplica N pasos (negativo revierte)
  version     muestra la versión actual
  force V     fija la versión sin ejecutar SQL (estado dirty)`)
}
