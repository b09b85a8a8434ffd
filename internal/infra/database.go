package infra

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"trazabilidad/internal/model"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver for migrations
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const sqlitePrefix = "sqlite://"

// NewDatabase opens the store named by dsn and brings its schema up to date.
//
//   - postgres://... : schema is managed exclusively by the embedded SQL
//     migrations (golang-migrate); GORM AutoMigrate is never run against it.
//   - sqlite://path  : single-site installs and tests. AutoMigrate creates the
//     tables, then applySQLitePatches adds what GORM cannot express (the lot
//     number trigger and the one-origin-line partial index).
func NewDatabase(dsn string, maxOpenConns int) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return openSQLite(strings.TrimPrefix(dsn, sqlitePrefix))
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded SQL migrations to a Postgres database.
// It uses its own connection so closing the migrator never touches the GORM pool.
func RunMigrations(dsn string) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = conn.Close()
		return err
	}
	driver, err := migratepg.WithInstance(conn, &migratepg.Config{})
	if err != nil {
		_ = conn.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func openSQLite(path string) (*gorm.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_foreign_keys=on&_busy_timeout=5000"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.Alergeno{},
		&model.Unidad{},
		&model.TipoElaborado{},
		&model.Ingrediente{},
		&model.Elaborado{},
		&model.ElaboradoIngrediente{},
		&model.Lote{},
		&model.LoteIngrediente{},
		&model.LoteCierre{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySQLitePatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}
	return db, nil
}

// applySQLitePatches runs idempotent DDL that GORM AutoMigrate cannot express.
// The Postgres equivalents live in migrations/000001_esquema_inicial.up.sql.
func applySQLitePatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"one origin line per elaborado", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_elaborado_origen_unico
    ON elaborados_ingredientes (elaborado_id)
    WHERE es_origen = 1`},
		{"immutable lot number", `
CREATE TRIGGER IF NOT EXISTS trg_lotes_numero_inmutable
BEFORE UPDATE OF numero ON lotes
FOR EACH ROW WHEN NEW.numero IS NOT OLD.numero
BEGIN
    SELECT RAISE(ABORT, 'el numero de lote es inmutable');
END`},
		{"ingredient owner cleared with its recipe", `
CREATE TRIGGER IF NOT EXISTS trg_elaborados_libera_ingredientes
AFTER DELETE ON elaborados
FOR EACH ROW
BEGIN
    UPDATE ingredients SET elaborado_origen_id = NULL WHERE elaborado_origen_id = OLD.id;
END`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
