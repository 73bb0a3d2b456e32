// Package storage is the gateway between orchestrators and the database.
// Reads go to the replica through a Reader; writes go to the primary
// through a request-scoped UnitOfWork.
package storage

import (
	"context"
	"database/sql"
	"math"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Gateway holds the primary and replica pools.
type Gateway struct {
	primary *sql.DB
	replica *sql.DB
	repos   repomanager.RepositoryManager
	reader  *Reader
}

// NewGateway builds a gateway. A nil replica routes reads to the primary.
func NewGateway(primary, replica *sql.DB, repos repomanager.RepositoryManager) *Gateway {
	if replica == nil {
		replica = primary
	}
	return &Gateway{
		primary: primary,
		replica: replica,
		repos:   repos,
		reader:  &Reader{db: replica, repos: repos},
	}
}

// Reader returns the read port.
func (g *Gateway) Reader() *Reader { return g.reader }

// NewUnitOfWork starts a request-scoped write port on the primary.
func (g *Gateway) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{uow: dbx.NewUnitOfWork(g.primary, nil), repos: g.repos}
}

// Ping checks both pools.
func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.primary.PingContext(ctx); err != nil {
		return err
	}
	if g.replica != g.primary {
		return g.replica.PingContext(ctx)
	}
	return nil
}

// Reader serves queries from the replica. It may lag the primary.
type Reader struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func (r *Reader) GetVaultByID(ctx context.Context, id uuid.UUID) (*models.Vault, error) {
	return r.repos.Vaults(r.db).GetByID(ctx, id)
}

func (r *Reader) GetVaultsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Vault, error) {
	return r.repos.Vaults(r.db).ListByOwner(ctx, ownerID)
}

// GetAuditLogs returns one page (1-based) of userID's audit trail.
func (r *Reader) GetAuditLogs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if pageSize > 0 && page-1 > math.MaxInt/pageSize {
		return nil, common.NewValidationError("page", "is out of range")
	}
	return r.repos.AuditLogs(r.db).ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
}
