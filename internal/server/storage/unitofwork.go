package storage

import (
	"context"

	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/dmitrijs2005/vaultguard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UnitOfWork is the write port. Mutations are staged and reach the
// database on SaveChanges or Commit. Reads made through it see the open
// transaction.
type UnitOfWork struct {
	uow   *dbx.UnitOfWork
	repos repomanager.RepositoryManager
}

// GetVaultByID loads the aggregate from the primary.
func (w *UnitOfWork) GetVaultByID(ctx context.Context, id uuid.UUID) (*models.Vault, error) {
	return w.repos.Vaults(w.uow.Conn()).GetByID(ctx, id)
}

func (w *UnitOfWork) AddVault(v *models.Vault) {
	w.uow.Stage(func(ctx context.Context, tx dbx.DBTX) error {
		return w.repos.Vaults(tx).Insert(ctx, v)
	})
}

func (w *UnitOfWork) UpdateVault(v *models.Vault) {
	w.uow.Stage(func(ctx context.Context, tx dbx.DBTX) error {
		return w.repos.Vaults(tx).Update(ctx, v)
	})
}

// MarkVaultDeleted soft-deletes v and stages the write.
func (w *UnitOfWork) MarkVaultDeleted(v *models.Vault) error {
	if err := v.Delete(); err != nil {
		return err
	}
	w.UpdateVault(v)
	return nil
}

func (w *UnitOfWork) AddAuditLog(a *models.AuditLog) {
	w.uow.Stage(func(ctx context.Context, tx dbx.DBTX) error {
		return w.repos.AuditLogs(tx).Insert(ctx, a)
	})
}

func (w *UnitOfWork) SaveChanges(ctx context.Context) (int, error) { return w.uow.SaveChanges(ctx) }
func (w *UnitOfWork) BeginTransaction(ctx context.Context) error    { return w.uow.BeginTransaction(ctx) }
func (w *UnitOfWork) Commit(ctx context.Context) error              { return w.uow.Commit(ctx) }
func (w *UnitOfWork) Rollback(ctx context.Context) error            { return w.uow.Rollback(ctx) }
