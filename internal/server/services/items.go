package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/cache"
	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
)

func (s *VaultService) CreateItem(ctx context.Context, caller identity.Caller, req CreateItemRequest) (res CreatedItem, err error) {
	defer s.observe("create_item", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return CreatedItem{}, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return CreatedItem{}, err
	}
	itemType, err := models.ParseItemType(req.Type)
	if err != nil {
		return CreatedItem{}, err
	}
	payload, err := models.NewEncryptedData(req.Payload.CipherText, req.Payload.IV)
	if err != nil {
		return CreatedItem{}, err
	}

	var item *models.VaultItem
	v, err := s.runVaultCommand(ctx, caller, vaultCommand{
		vaultID: req.VaultID,
		mutate: func(v *models.Vault) (auditEntry, error) {
			var err error
			item, err = v.AddItem(itemType, payload, req.Metadata)
			if err != nil {
				return auditEntry{}, err
			}
			return auditEntry{models.AuditVaultItemCreated,
				fmt.Sprintf("Item '%s' added to vault '%s'", item.Type(), v.Name())}, nil
		},
		invalidateItems: true,
		invalidateOwner: true,
	})
	if err != nil {
		return CreatedItem{}, err
	}
	return CreatedItem{Item: toItemSummary(item), Vault: toVaultSummary(v)}, nil
}

// ListItems returns the live items of a vault in insertion order.
func (s *VaultService) ListItems(ctx context.Context, caller identity.Caller, req ListItemsRequest) (res []ItemSummary, err error) {
	defer s.observe("list_items", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	key := itemListKey(req.VaultID, caller.UserID)
	if cached, ok := cache.Lookup[[]ItemSummary](ctx, s.cache, key); ok {
		s.observer.CacheLookup("list_items", true)
		return cached, nil
	}
	s.observer.CacheLookup("list_items", false)

	v, err := s.reader.GetVaultByID(ctx, req.VaultID)
	if err != nil {
		return nil, err
	}
	if err := v.EnsureOwnership(caller.UserID); err != nil {
		s.logger.Warn(ctx, "vault access denied", "vault_id", req.VaultID, "user_id", caller.UserID)
		return nil, err
	}

	live := v.LiveItems()
	res = make([]ItemSummary, 0, len(live))
	for _, it := range live {
		res = append(res, toItemSummary(it))
	}

	s.populate(ctx, key, res)
	return res, nil
}

// GetItem returns one item and records the access. It writes, so it runs
// as a command.
func (s *VaultService) GetItem(ctx context.Context, caller identity.Caller, req ItemRequest) (res ItemSummary, err error) {
	defer s.observe("get_item", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return ItemSummary{}, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return ItemSummary{}, err
	}

	var item *models.VaultItem
	_, err = s.runVaultCommand(ctx, caller, vaultCommand{
		vaultID: req.VaultID,
		mutate: func(v *models.Vault) (auditEntry, error) {
			var err error
			item, err = v.Item(req.ItemID)
			if err != nil {
				return auditEntry{}, err
			}
			item.MarkAccessed()
			return auditEntry{models.AuditVaultItemViewed,
				fmt.Sprintf("Item %s in vault '%s' viewed", item.ID(), v.Name())}, nil
		},
		invalidateItems: true,
	})
	if err != nil {
		return ItemSummary{}, err
	}
	return toItemSummary(item), nil
}

// UpdateItem replaces an item's payload and metadata. The item version is
// bumped; the vault version is not.
func (s *VaultService) UpdateItem(ctx context.Context, caller identity.Caller, req UpdateItemRequest) (res ItemSummary, err error) {
	defer s.observe("update_item", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return ItemSummary{}, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return ItemSummary{}, err
	}
	payload, err := models.NewEncryptedData(req.Payload.CipherText, req.Payload.IV)
	if err != nil {
		return ItemSummary{}, err
	}

	var item *models.VaultItem
	_, err = s.runVaultCommand(ctx, caller, vaultCommand{
		vaultID: req.VaultID,
		mutate: func(v *models.Vault) (auditEntry, error) {
			current, err := v.Item(req.ItemID)
			if err != nil {
				return auditEntry{}, err
			}
			if err := checkVersion("item", current.ID(), current.Version(), req.ExpectedVersion); err != nil {
				return auditEntry{}, err
			}
			item, err = v.UpdateItem(req.ItemID, payload, req.Metadata)
			if err != nil {
				return auditEntry{}, err
			}
			return auditEntry{models.AuditVaultItemUpdated,
				fmt.Sprintf("Item %s in vault '%s' updated", item.ID(), v.Name())}, nil
		},
		invalidateItems: true,
		invalidateOwner: true,
	})
	if err != nil {
		return ItemSummary{}, err
	}
	return toItemSummary(item), nil
}

// DeleteItem soft-deletes an item and bumps the vault version.
func (s *VaultService) DeleteItem(ctx context.Context, caller identity.Caller, req DeleteItemRequest) (res VaultSummary, err error) {
	defer s.observe("delete_item", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return VaultSummary{}, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return VaultSummary{}, err
	}

	v, err := s.runVaultCommand(ctx, caller, vaultCommand{
		vaultID: req.VaultID,
		mutate: func(v *models.Vault) (auditEntry, error) {
			current, err := v.Item(req.ItemID)
			if err != nil {
				return auditEntry{}, err
			}
			if err := checkVersion("item", current.ID(), current.Version(), req.ExpectedVersion); err != nil {
				return auditEntry{}, err
			}
			if err := v.RemoveItem(req.ItemID); err != nil {
				return auditEntry{}, err
			}
			return auditEntry{models.AuditVaultItemDeleted,
				fmt.Sprintf("Item %s removed from vault '%s'", req.ItemID, v.Name())}, nil
		},
		invalidateItems: true,
		invalidateOwner: true,
	})
	if err != nil {
		return VaultSummary{}, err
	}
	return toVaultSummary(v), nil
}
