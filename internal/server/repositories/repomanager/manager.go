package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/vaults"
)

// RepositoryManager vends repositories bound to a connection or transaction
// and owns the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Vaults(db dbx.DBTX) vaults.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}
