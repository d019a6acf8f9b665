package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// VersionTable is where tern records the applied schema version.
const VersionTable = "schema_version"

// MigrationStatus compares the schema version recorded in the database with
// the newest embedded migration.
type MigrationStatus struct {
	Current int32 `json:"current"`
	Latest  int32 `json:"latest"`
}

// Pending is the number of migrations Migrate would apply.
func (s MigrationStatus) Pending() int32 {
	if s.Latest <= s.Current {
		return 0
	}
	return s.Latest - s.Current
}

// UpToDate reports whether the schema needs no migration.
func (s MigrationStatus) UpToDate() bool {
	return s.Pending() == 0
}

// versionTableExistsSQL checks the catalog without creating anything.
const versionTableExistsSQL = "SELECT to_regclass($1) IS NOT NULL"

// Migrate applies every pending embedded migration.
//
// The articles table is created with IF NOT EXISTS, so this is safe on
// every startup, including against a table that predates the version table.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	conn, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := newMigrator(ctx, conn)
	if err != nil {
		return err
	}

	status, err := migrationStatus(ctx, m)
	if err != nil {
		return err
	}

	if status.UpToDate() {
		logger.Info().Int32("version", status.Current).Msg("database schema up to date")
		return nil
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("applying database migrations: %w", err)
	}

	logger.Info().
		Int32("from", status.Current).
		Int32("to", status.Latest).
		Msg("migrated database schema")
	return nil
}

// Status reports the schema version. It only reads: on a database that was
// never migrated it returns version 0 without creating the version table,
// which tern's migrator would otherwise do.
func Status(ctx context.Context, cfg *config.Config) (MigrationStatus, error) {
	conn, err := connect(ctx, cfg)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, versionTableExistsSQL, VersionTable).Scan(&exists); err != nil {
		return MigrationStatus{}, fmt.Errorf("looking up %s: %w", VersionTable, err)
	}

	if !exists {
		latest, err := embeddedMigrationCount()
		return MigrationStatus{Latest: latest}, err
	}

	m, err := newMigrator(ctx, conn)
	if err != nil {
		return MigrationStatus{}, err
	}
	return migrationStatus(ctx, m)
}

// connect opens a dedicated connection; the pool is not used for schema work.
func connect(ctx context.Context, cfg *config.Config) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("connecting for migrations: %w", err)
	}
	return conn, nil
}

// newMigrator builds a tern migrator with the embedded migrations loaded.
// It creates the version table when missing.
func newMigrator(ctx context.Context, conn *pgx.Conn) (*tern.Migrator, error) {
	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	if err := m.LoadMigrations(subtree); err != nil {
		return nil, fmt.Errorf("loading database migrations: %w", err)
	}

	return m, nil
}

// embeddedMigrationCount is the latest version, as tern numbers one
// migration file per version.
func embeddedMigrationCount() (int32, error) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return 0, fmt.Errorf("listing database migrations: %w", err)
	}
	return int32(len(files)), nil
}

func migrationStatus(ctx context.Context, m *tern.Migrator) (MigrationStatus, error) {
	current, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("retrieving current database migration version: %w", err)
	}
	return MigrationStatus{Current: current, Latest: int32(len(m.Migrations))}, nil
}
