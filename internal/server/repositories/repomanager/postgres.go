// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/migrations"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/vaults"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Vaults returns a vaults.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Vaults(db dbx.DBTX) vaults.Repository {
	return vaults.NewPostgresRepository(db)
}

// AuditLogs returns an auditlogs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) AuditLogs(db dbx.DBTX) auditlogs.Repository {
	return auditlogs.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection. Only the primary is migrated.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// OpenDB opens a pgx-backed *sql.DB and verifies it with a ping.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
