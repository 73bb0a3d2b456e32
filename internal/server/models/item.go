package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/google/uuid"
)

// VaultItem is a single encrypted secret inside a vault. It carries its own
// version, independent of the owning vault.
type VaultItem struct {
	id             uuid.UUID
	vaultID        uuid.UUID
	itemType       ItemType
	payload        EncryptedData
	metadata       *string
	version        int
	deleted        bool
	createdAt      time.Time
	updatedAt      time.Time
	lastAccessedAt *time.Time

	persistedVersion int
	dirty            bool
}

// NewVaultItem creates an item at version 1.
func NewVaultItem(vaultID uuid.UUID, itemType ItemType, payload EncryptedData, metadata *string) (*VaultItem, error) {
	ve := &common.ValidationError{}
	if vaultID == uuid.Nil {
		ve.Add("vault_id", "cannot be empty")
	}
	if !itemType.Valid() {
		ve.Add("type", "is not a supported item type")
	}
	if payload.IsZero() {
		ve.Add("payload", "cannot be empty")
	}
	if !ve.Empty() {
		return nil, ve
	}

	t := now()
	return &VaultItem{
		id:        uuid.New(),
		vaultID:   vaultID,
		itemType:  itemType,
		payload:   payload,
		metadata:  cloneString(metadata),
		version:   1,
		createdAt: t,
		updatedAt: t,
		dirty:     true,
	}, nil
}

// Read-only accessors. Metadata and LastAccessedAt return copies.
func (i *VaultItem) ID() uuid.UUID              { return i.id }
func (i *VaultItem) VaultID() uuid.UUID         { return i.vaultID }
func (i *VaultItem) Type() ItemType             { return i.itemType }
func (i *VaultItem) Payload() EncryptedData     { return i.payload }
func (i *VaultItem) Metadata() *string          { return cloneString(i.metadata) }
func (i *VaultItem) Version() int               { return i.version }
func (i *VaultItem) IsDeleted() bool            { return i.deleted }
func (i *VaultItem) CreatedAt() time.Time       { return i.createdAt }
func (i *VaultItem) UpdatedAt() time.Time       { return i.updatedAt }
func (i *VaultItem) LastAccessedAt() *time.Time { return cloneTime(i.lastAccessedAt) }

// Update replaces the payload and metadata. A deleted item cannot be
// updated, whatever the new payload looks like.
func (i *VaultItem) Update(payload EncryptedData, metadata *string) error {
	if i.deleted {
		return fmt.Errorf("%w: cannot update a deleted item", common.ErrorInvalidState)
	}
	if payload.IsZero() {
		return common.NewValidationError("payload", "cannot be empty")
	}
	i.payload = payload
	i.metadata = cloneString(metadata)
	i.touch()
	return nil
}

// MarkAccessed records a read of the item. It does not change the version.
func (i *VaultItem) MarkAccessed() {
	t := now()
	i.lastAccessedAt = &t
	i.dirty = true
}

func (i *VaultItem) markDeleted() error {
	if i.deleted {
		return fmt.Errorf("%w: item already deleted", common.ErrorInvalidState)
	}
	i.deleted = true
	i.touch()
	return nil
}

func (i *VaultItem) touch() {
	i.version++
	i.updatedAt = now()
	i.dirty = true
}

// PersistedVersion is the version the item had when it was loaded, or 0 for
// an item that has never been stored.
func (i *VaultItem) PersistedVersion() int { return i.persistedVersion }

// IsNew reports whether the item has never been stored.
func (i *VaultItem) IsNew() bool { return i.persistedVersion == 0 }

// Dirty reports whether the item changed since it was loaded or stored.
func (i *VaultItem) Dirty() bool { return i.dirty }

// MarkPersisted is called by the storage layer after a successful write.
func (i *VaultItem) MarkPersisted() {
	i.persistedVersion = i.version
	i.dirty = false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
