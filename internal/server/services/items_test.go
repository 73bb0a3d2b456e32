package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateItem(context.Background(), callerFor(uuid.New()), CreateItemRequest{
		Type:    "banana",
		Payload: EncryptedPayload{CipherText: "Y3Q="},
	})
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "vault_id")
	assert.Contains(t, ve.Fields, "type")
	assert.Contains(t, ve.Fields, "payload.iv")
	assert.NotContains(t, ve.Fields, "payload.cipher_text")
}

func TestCreateItem_MissingVault(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateItem(context.Background(), callerFor(uuid.New()), CreateItemRequest{
		VaultID: uuid.New(), Type: "password", Payload: EncryptedPayload{CipherText: "a", IV: "b"},
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreateItem_KeepsMetadata(t *testing.T) {
	f := newFixture(t)
	owner := callerFor(uuid.New())
	vault := f.createVault(t, owner, "Personal")

	meta := "github.com"
	res, err := f.svc.CreateItem(context.Background(), owner, CreateItemRequest{
		VaultID: vault.ID, Type: "credit_card", Payload: EncryptedPayload{CipherText: "a", IV: "b"}, Metadata: &meta,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Item.Metadata)
	assert.Equal(t, "github.com", *res.Item.Metadata)
	assert.Equal(t, models.ItemTypeCreditCard, res.Item.Type)
	assert.Equal(t, vault.ID, res.Item.VaultID)
}

func TestUpdateItem_BumpsItemNotVault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := callerFor(uuid.New())
	vault := f.createVault(t, owner, "Personal")
	created := f.createItem(t, owner, vault.ID, "password")

	one := 1
	updated, err := f.svc.UpdateItem(ctx, owner, UpdateItemRequest{
		VaultID:         vault.ID,
		ItemID:          created.Item.ID,
		Payload:         EncryptedPayload{CipherText: "bmV3", IV: "aXYy"},
		ExpectedVersion: &one,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "bmV3", updated.Payload.CipherText)

	_, err = f.svc.UpdateItem(ctx, owner, UpdateItemRequest{
		VaultID:         vault.ID,
		ItemID:          created.Item.ID,
		Payload:         EncryptedPayload{CipherText: "b2xk", IV: "aXYz"},
		ExpectedVersion: &one,
	})
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	vaults, err := f.svc.ListVaults(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, created.Vault.Version, vaults[0].Version)

	items, err := f.svc.ListItems(ctx, owner, ListItemsRequest{VaultID: vault.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bmV3", items[0].Payload.CipherText)
	assert.Equal(t, 2, items[0].Version)
}

func TestDeleteItem_RemovesFromListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := callerFor(uuid.New())
	vault := f.createVault(t, owner, "Personal")
	a := f.createItem(t, owner, vault.ID, "password")
	b := f.createItem(t, owner, vault.ID, "secure_note")

	items, err := f.svc.ListItems(ctx, owner, ListItemsRequest{VaultID: vault.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)

	summary, err := f.svc.DeleteItem(ctx, owner, DeleteItemRequest{VaultID: vault.ID, ItemID: a.Item.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Version)
	assert.Equal(t, 1, summary.ItemCount)

	items, err = f.svc.ListItems(ctx, owner, ListItemsRequest{VaultID: vault.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.Item.ID, items[0].ID)

	_, err = f.svc.DeleteItem(ctx, owner, DeleteItemRequest{VaultID: vault.ID, ItemID: a.Item.ID})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = f.svc.UpdateItem(ctx, owner, UpdateItemRequest{
		VaultID: vault.ID, ItemID: a.Item.ID, Payload: EncryptedPayload{CipherText: "a", IV: "b"},
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	stored := f.store.vaults[vault.ID].items[0]
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, 2, stored.Version)
}

func TestGetItem_RecordsAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := callerFor(uuid.New())
	vault := f.createVault(t, owner, "Personal")
	created := f.createItem(t, owner, vault.ID, "identity")
	assert.Nil(t, created.Item.LastAccessedAt)

	listed, err := f.svc.ListItems(ctx, owner, ListItemsRequest{VaultID: vault.ID})
	require.NoError(t, err)
	assert.Nil(t, listed[0].LastAccessedAt)

	got, err := f.svc.GetItem(ctx, owner, ItemRequest{VaultID: vault.ID, ItemID: created.Item.ID})
	require.NoError(t, err)
	require.NotNil(t, got.LastAccessedAt)
	assert.Equal(t, 1, got.Version)

	listed, err = f.svc.ListItems(ctx, owner, ListItemsRequest{VaultID: vault.ID})
	require.NoError(t, err)
	assert.NotNil(t, listed[0].LastAccessedAt, "item list is invalidated by the access")

	_, err = f.svc.GetItem(ctx, owner, ItemRequest{VaultID: vault.ID, ItemID: uuid.New()})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	actions := f.store.auditActions(owner.UserID)
	assert.Equal(t, models.AuditVaultItemViewed, actions[len(actions)-1])
}

func TestAuditRecords_CarryCallerContext(t *testing.T) {
	f := newFixture(t)
	owner := callerFor(uuid.New())
	f.createVault(t, owner, "Personal")

	require.Len(t, f.store.audits, 1)
	a := f.store.audits[0]
	assert.Equal(t, owner.UserID, a.UserID())
	assert.Equal(t, "10.0.0.7", a.IPAddress())
	assert.Equal(t, "vaultguard-test", a.UserAgent())
	assert.Equal(t, "Vault 'Personal' created", a.Metadata())
}
