package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/google/uuid"
)

// Vault is the aggregate root: a named, owner-scoped container of encrypted
// items. Version starts at 1 and grows by one on every structural change
// (rename, item added, item removed, delete).
type Vault struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	vaultKey  EncryptedData
	version   int
	deleted   bool
	items     []*VaultItem
	createdAt time.Time
	updatedAt time.Time

	persistedVersion int
}

// NewVault creates an empty vault owned by ownerID.
func NewVault(ownerID uuid.UUID, name string, vaultKey EncryptedData) (*Vault, error) {
	ve := &common.ValidationError{}
	if ownerID == uuid.Nil {
		ve.Add("owner_id", "cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		ve.Add("name", "cannot be empty")
	}
	if vaultKey.IsZero() {
		ve.Add("vault_key", "cannot be empty")
	}
	if !ve.Empty() {
		return nil, ve
	}

	t := now()
	return &Vault{
		id:        uuid.New(),
		ownerID:   ownerID,
		name:      name,
		vaultKey:  vaultKey,
		version:   1,
		createdAt: t,
		updatedAt: t,
	}, nil
}

// Read-only accessors.
func (v *Vault) ID() uuid.UUID           { return v.id }
func (v *Vault) OwnerID() uuid.UUID      { return v.ownerID }
func (v *Vault) Name() string            { return v.name }
func (v *Vault) VaultKey() EncryptedData { return v.vaultKey }
func (v *Vault) Version() int            { return v.version }
func (v *Vault) IsDeleted() bool         { return v.deleted }
func (v *Vault) CreatedAt() time.Time    { return v.createdAt }
func (v *Vault) UpdatedAt() time.Time    { return v.updatedAt }

// Items returns every item held by the aggregate in insertion order,
// including ones removed during the current unit of work.
func (v *Vault) Items() []*VaultItem {
	out := make([]*VaultItem, len(v.items))
	copy(out, v.items)
	return out
}

// LiveItems returns the items that are not soft-deleted.
func (v *Vault) LiveItems() []*VaultItem {
	out := make([]*VaultItem, 0, len(v.items))
	for _, it := range v.items {
		if !it.deleted {
			out = append(out, it)
		}
	}
	return out
}

// ItemCount is the number of live items.
func (v *Vault) ItemCount() int {
	n := 0
	for _, it := range v.items {
		if !it.deleted {
			n++
		}
	}
	return n
}

// Item looks up a live item by id.
func (v *Vault) Item(itemID uuid.UUID) (*VaultItem, error) {
	for _, it := range v.items {
		if it.id == itemID && !it.deleted {
			return it, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, common.ErrorNotFound)
}

// EnsureOwnership fails with ErrorAccessDenied unless callerID owns the vault.
func (v *Vault) EnsureOwnership(callerID uuid.UUID) error {
	if v.ownerID != callerID {
		return fmt.Errorf("%w: user does not own vault %s", common.ErrorAccessDenied, v.id)
	}
	return nil
}

// Rename changes the display name.
func (v *Vault) Rename(name string) error {
	if err := v.ensureLive(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("name", "cannot be empty")
	}
	v.name = name
	v.touch()
	return nil
}

// AddItem creates a new item inside the vault.
func (v *Vault) AddItem(itemType ItemType, payload EncryptedData, metadata *string) (*VaultItem, error) {
	if err := v.ensureLive(); err != nil {
		return nil, err
	}
	item, err := NewVaultItem(v.id, itemType, payload, metadata)
	if err != nil {
		return nil, err
	}
	v.items = append(v.items, item)
	v.touch()
	return item, nil
}

// UpdateItem replaces an item's payload. The vault version is unchanged;
// the item's own version is bumped.
func (v *Vault) UpdateItem(itemID uuid.UUID, payload EncryptedData, metadata *string) (*VaultItem, error) {
	if err := v.ensureLive(); err != nil {
		return nil, err
	}
	for _, it := range v.items {
		if it.id == itemID {
			if err := it.Update(payload, metadata); err != nil {
				return nil, err
			}
			return it, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, common.ErrorNotFound)
}

// RemoveItem soft-deletes an item.
func (v *Vault) RemoveItem(itemID uuid.UUID) error {
	if err := v.ensureLive(); err != nil {
		return err
	}
	item, err := v.Item(itemID)
	if err != nil {
		return err
	}
	if err := item.markDeleted(); err != nil {
		return err
	}
	v.touch()
	return nil
}

// Delete soft-deletes the vault. Deleted vaults are invisible to every read.
func (v *Vault) Delete() error {
	if err := v.ensureLive(); err != nil {
		return err
	}
	v.deleted = true
	v.touch()
	return nil
}

func (v *Vault) ensureLive() error {
	if v.deleted {
		return fmt.Errorf("%w: vault %s is deleted", common.ErrorInvalidState, v.id)
	}
	return nil
}

func (v *Vault) touch() {
	v.version++
	v.updatedAt = now()
}

// PersistedVersion is the version the vault row had when it was loaded, or
// 0 for a vault that has never been stored.
func (v *Vault) PersistedVersion() int { return v.persistedVersion }

// IsNew reports whether the vault has never been stored.
func (v *Vault) IsNew() bool { return v.persistedVersion == 0 }

// Dirty reports whether the vault row itself changed since it was loaded.
func (v *Vault) Dirty() bool { return v.version != v.persistedVersion }

// MarkPersisted is called by the storage layer after a successful write of
// the vault and its items.
func (v *Vault) MarkPersisted() {
	v.persistedVersion = v.version
	for _, it := range v.items {
		it.MarkPersisted()
	}
}
