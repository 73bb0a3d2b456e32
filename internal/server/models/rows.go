package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VaultRow is the persisted shape of a vault.
type VaultRow struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	KeyCipherText string
	KeyIV         string
	Version       int
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VaultItemRow is the persisted shape of a vault item.
type VaultItemRow struct {
	ID                uuid.UUID
	VaultID           uuid.UUID
	Type              ItemType
	PayloadCipherText string
	PayloadIV         string
	Metadata          *string
	Version           int
	IsDeleted         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastAccessedAt    *time.Time
}

// AuditLogRow is the persisted shape of an audit record.
type AuditLogRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Action    AuditAction
	Metadata  string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// RestoreVault rebuilds a stored aggregate. The result is clean: its
// persisted version equals its version.
func RestoreVault(row VaultRow, items []VaultItemRow) (*Vault, error) {
	key, err := NewEncryptedData(row.KeyCipherText, row.KeyIV)
	if err != nil {
		return nil, fmt.Errorf("vault %s key: %w", row.ID, err)
	}
	v := &Vault{
		id:               row.ID,
		ownerID:          row.OwnerID,
		name:             row.Name,
		vaultKey:         key,
		version:          row.Version,
		deleted:          row.IsDeleted,
		createdAt:        row.CreatedAt,
		updatedAt:        row.UpdatedAt,
		persistedVersion: row.Version,
		items:            make([]*VaultItem, 0, len(items)),
	}
	for _, ir := range items {
		if ir.VaultID != row.ID {
			return nil, fmt.Errorf("item %s belongs to vault %s, not %s", ir.ID, ir.VaultID, row.ID)
		}
		it, err := restoreItem(ir)
		if err != nil {
			return nil, err
		}
		v.items = append(v.items, it)
	}
	return v, nil
}

func restoreItem(r VaultItemRow) (*VaultItem, error) {
	payload, err := NewEncryptedData(r.PayloadCipherText, r.PayloadIV)
	if err != nil {
		return nil, fmt.Errorf("item %s payload: %w", r.ID, err)
	}
	return &VaultItem{
		id:               r.ID,
		vaultID:          r.VaultID,
		itemType:         r.Type,
		payload:          payload,
		metadata:         cloneString(r.Metadata),
		version:          r.Version,
		deleted:          r.IsDeleted,
		createdAt:        r.CreatedAt,
		updatedAt:        r.UpdatedAt,
		lastAccessedAt:   cloneTime(r.LastAccessedAt),
		persistedVersion: r.Version,
	}, nil
}

func (v *Vault) Row() VaultRow {
	return VaultRow{
		ID:            v.id,
		OwnerID:       v.ownerID,
		Name:          v.name,
		KeyCipherText: v.vaultKey.cipherText,
		KeyIV:         v.vaultKey.iv,
		Version:       v.version,
		IsDeleted:     v.deleted,
		CreatedAt:     v.createdAt,
		UpdatedAt:     v.updatedAt,
	}
}

func (i *VaultItem) Row() VaultItemRow {
	return VaultItemRow{
		ID:                i.id,
		VaultID:           i.vaultID,
		Type:              i.itemType,
		PayloadCipherText: i.payload.cipherText,
		PayloadIV:         i.payload.iv,
		Metadata:          cloneString(i.metadata),
		Version:           i.version,
		IsDeleted:         i.deleted,
		CreatedAt:         i.createdAt,
		UpdatedAt:         i.updatedAt,
		LastAccessedAt:    cloneTime(i.lastAccessedAt),
	}
}

// RestoreAuditLog rebuilds a stored audit record.
func RestoreAuditLog(r AuditLogRow) *AuditLog {
	return &AuditLog{
		id:        r.ID,
		userID:    r.UserID,
		action:    r.Action,
		metadata:  r.Metadata,
		ipAddress: r.IPAddress,
		userAgent: r.UserAgent,
		createdAt: r.CreatedAt,
	}
}

func (a *AuditLog) Row() AuditLogRow {
	return AuditLogRow{
		ID:        a.id,
		UserID:    a.userID,
		Action:    a.action,
		Metadata:  a.metadata,
		IPAddress: a.ipAddress,
		UserAgent: a.userAgent,
		CreatedAt: a.createdAt,
	}
}
