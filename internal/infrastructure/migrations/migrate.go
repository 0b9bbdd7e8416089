// Package migrations aplica el esquema embebido con golang-migrate sobre el driver pgx/v5.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var files embed.FS

// Migrator envuelve una instancia de migrate con el esquema embebido.
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// New crea el migrador para la URL postgres:// (o postgresql://) indicada.
func New(databaseURL string, log zerolog.Logger) (*Migrator, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones embebidas: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, driverURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("crear instancia de migrate: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// driverURL cambia el esquema al registrado por el driver pgx/v5 de migrate.
func driverURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

// Up aplica todas las migraciones pendientes.
func (g *Migrator) Up() error {
	err := g.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		g.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return g.logVersion("migraciones aplicadas")
}

// Down revierte todas las migraciones.
func (g *Migrator) Down() error {
	err := g.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		g.log.Info().Msg("sin migraciones que revertir")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	g.log.Info().Msg("migraciones revertidas")
	return nil
}

// Steps aplica n pasos (positivo sube, negativo baja).
func (g *Migrator) Steps(n int) error {
	err := g.m.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate steps %d: %w", n, err)
	}
	return g.logVersion("pasos de migración aplicados")
}

// Version versión actual; 0 si la base no tiene migraciones.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrate version: %w", err)
	}
	return v, dirty, nil
}

// Force fija la versión sin ejecutar migraciones (reparar estado dirty).
func (g *Migrator) Force(version int) error {
	g.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := g.m.Force(version); err != nil {
		return fmt.Errorf("migrate force %d: %w", version, err)
	}
	return nil
}

// Close libera la fuente y la conexión.
func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (g *Migrator) logVersion(msg string) error {
	v, dirty, err := g.Version()
	if err != nil {
		return err
	}
	g.log.Info().Uint("version", v).Bool("dirty", dirty).Msg(msg)
	return nil
}
