package services

import (
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

// Projections are what callers see and what the cache stores, so every
// field round-trips through JSON.

type VaultSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemSummary struct {
	ID             uuid.UUID        `json:"id"`
	VaultID        uuid.UUID        `json:"vault_id"`
	Type           models.ItemType  `json:"type"`
	Payload        EncryptedPayload `json:"payload"`
	Metadata       *string          `json:"metadata,omitempty"`
	Version        int              `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	LastAccessedAt *time.Time       `json:"last_accessed_at,omitempty"`
}

// CreatedItem is the result of CreateItem: the new item and the vault it
// now belongs to.
type CreatedItem struct {
	Item  ItemSummary  `json:"item"`
	Vault VaultSummary `json:"vault"`
}

type AuditLogSummary struct {
	ID        uuid.UUID          `json:"id"`
	Action    models.AuditAction `json:"action"`
	Metadata  string             `json:"metadata,omitempty"`
	IPAddress string             `json:"ip_address,omitempty"`
	UserAgent string             `json:"user_agent,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func toVaultSummary(v *models.Vault) VaultSummary {
	return VaultSummary{
		ID:        v.ID(),
		Name:      v.Name(),
		Version:   v.Version(),
		ItemCount: v.ItemCount(),
		CreatedAt: v.CreatedAt(),
		UpdatedAt: v.UpdatedAt(),
	}
}

func toItemSummary(i *models.VaultItem) ItemSummary {
	p := i.Payload()
	return ItemSummary{
		ID:             i.ID(),
		VaultID:        i.VaultID(),
		Type:           i.Type(),
		Payload:        EncryptedPayload{CipherText: p.CipherText(), IV: p.IV()},
		Metadata:       i.Metadata(),
		Version:        i.Version(),
		CreatedAt:      i.CreatedAt(),
		UpdatedAt:      i.UpdatedAt(),
		LastAccessedAt: i.LastAccessedAt(),
	}
}

func toAuditLogSummary(a *models.AuditLog) AuditLogSummary {
	return AuditLogSummary{
		ID:        a.ID(),
		Action:    a.Action(),
		Metadata:  a.Metadata(),
		IPAddress: a.IPAddress(),
		UserAgent: a.UserAgent(),
		CreatedAt: a.CreatedAt(),
	}
}
