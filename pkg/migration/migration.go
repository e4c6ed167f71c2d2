// Package migration applies versioned SQL migrations with golang-migrate.
package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
)

// ErrDirty means a previous migration failed half way. The schema has to be
// repaired by hand and the version forced before migrating again.
var ErrDirty = errors.New("schema is dirty")

// Config locates the migrations and the database. Source takes precedence
// over Dir, which may be a bare directory or any golang-migrate source URL.
type Config struct {
	Source      fs.FS
	Dir         string
	DatabaseURL string
	Logger      *slog.Logger
}

// Migrator holds one golang-migrate instance. It must be closed.
type Migrator struct {
	m   *migrate.Migrate
	log *slog.Logger
}

func Open(cfg Config) (*Migrator, error) {
	log := logger.OrDiscard(cfg.Logger).With("component", "migration")

	var (
		m   *migrate.Migrate
		err error
	)
	if cfg.Source != nil {
		src, srcErr := iofs.New(cfg.Source, ".")
		if srcErr != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, cfg.DatabaseURL)
	} else {
		m, err = migrate.New(sourceURL(cfg.Dir), cfg.DatabaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("open migrator: %w", err)
	}
	m.Log = migrateLogger{log: log}
	return &Migrator{m: m, log: log}, nil
}

func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Version returns 0 for a database that has never been migrated.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return v, dirty, nil
}

// Up applies every pending migration and returns the versions before and
// after.
func (g *Migrator) Up() (from, to uint, err error) {
	from, dirty, err := g.Version()
	if err != nil {
		return 0, 0, err
	}
	if dirty {
		return from, from, fmt.Errorf("%w at version %d", ErrDirty, from)
	}

	if err := g.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, from, fmt.Errorf("migrate up from %d: %w", from, err)
	}
	to, _, err = g.Version()
	if err != nil {
		return from, from, err
	}
	if to == from {
		g.log.Info("schema up to date", "version", to)
	} else {
		g.log.Info("schema migrated", "from", from, "to", to)
	}
	return from, to, nil
}

// Down reverts the most recent migration.
func (g *Migrator) Down() error {
	err := g.m.Steps(-1)
	if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, migrate.ErrNilVersion) || errors.Is(err, fs.ErrNotExist) {
		g.log.Info("nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	g.log.Info("rolled back one migration")
	return nil
}

// Force records version as applied and clears the dirty flag without
// running any SQL.
func (g *Migrator) Force(version int) error {
	g.log.Warn("forcing schema version", "version", version)
	if err := g.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// AutoMigrate brings the schema up to date on server start.
func AutoMigrate(cfg Config) error {
	g, err := Open(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	_, _, err = g.Up()
	return err
}

func sourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + dir
}

// migrateLogger forwards golang-migrate's progress lines to slog at debug
// level.
type migrateLogger struct {
	log *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return false }
