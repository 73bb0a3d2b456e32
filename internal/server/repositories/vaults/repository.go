package vaults

import (
	"context"

	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

// Repository persists Vault aggregates together with their items.
// Reads never return soft-deleted vaults or items.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vault, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Vault, error)
	Insert(ctx context.Context, v *models.Vault) error
	Update(ctx context.Context, v *models.Vault) error
}
