package auditlogs

import (
	"context"

	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, a *models.AuditLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}
