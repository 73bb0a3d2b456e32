package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

// ReadPort serves queries. It may be backed by a lagging replica.
type ReadPort interface {
	GetVaultByID(ctx context.Context, id uuid.UUID) (*models.Vault, error)
	GetVaultsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Vault, error)
	GetAuditLogs(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AuditLog, error)
}

// UnitOfWork is the request-scoped write port. Add/Update/MarkDeleted
// stage changes; nothing reaches the primary before SaveChanges or Commit.
type UnitOfWork interface {
	GetVaultByID(ctx context.Context, id uuid.UUID) (*models.Vault, error)
	AddVault(v *models.Vault)
	UpdateVault(v *models.Vault)
	MarkVaultDeleted(v *models.Vault) error
	AddAuditLog(a *models.AuditLog)

	BeginTransaction(ctx context.Context) error
	SaveChanges(ctx context.Context) (int, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory opens a fresh unit of work. Each command gets its own.
type UnitOfWorkFactory func() UnitOfWork

// Presigner hands out time-limited object storage URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
	PresignGet(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}

// Observer receives operation outcomes. Implementations must not block.
type Observer interface {
	CacheLookup(query string, hit bool)
	CommandFinished(op string, elapsed time.Duration, err error)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) CacheLookup(string, bool)                     {}
func (NopObserver) CommandFinished(string, time.Duration, error) {}
