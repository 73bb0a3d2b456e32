package models

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T) EncryptedData {
	t.Helper()
	k, err := NewEncryptedData("a2V5", "aXY=")
	require.NoError(t, err)
	return k
}

func newTestVault(t *testing.T, owner uuid.UUID) *Vault {
	t.Helper()
	v, err := NewVault(owner, "Personal", mustKey(t))
	require.NoError(t, err)
	return v
}

func TestNewVault_Valid(t *testing.T) {
	owner := uuid.New()
	v := newTestVault(t, owner)

	assert.NotEqual(t, uuid.Nil, v.ID())
	assert.Equal(t, owner, v.OwnerID())
	assert.Equal(t, "Personal", v.Name())
	assert.Equal(t, 1, v.Version())
	assert.False(t, v.IsDeleted())
	assert.Empty(t, v.Items())
	assert.True(t, v.IsNew())
	assert.True(t, v.Dirty())
}

func TestNewVault_InvalidInput(t *testing.T) {
	key := mustKey(t)

	tests := []struct {
		name  string
		owner uuid.UUID
		vname string
		key   EncryptedData
		field string
	}{
		{"nil owner", uuid.Nil, "x", key, "owner_id"},
		{"blank name", uuid.New(), "   ", key, "name"},
		{"missing key", uuid.New(), "x", EncryptedData{}, "vault_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVault(tt.owner, tt.vname, tt.key)
			require.Nil(t, v)
			require.ErrorIs(t, err, common.ErrorValidation)

			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestVault_VersionCountsStructuralMutations(t *testing.T) {
	v := newTestVault(t, uuid.New())
	payload := mustKey(t)

	require.NoError(t, v.Rename("Work"))
	a, err := v.AddItem(ItemTypePassword, payload, nil)
	require.NoError(t, err)
	_, err = v.AddItem(ItemTypeSecureNote, payload, nil)
	require.NoError(t, err)
	require.NoError(t, v.RemoveItem(a.ID()))

	assert.Equal(t, 1+4, v.Version())
	assert.Equal(t, 1, v.ItemCount())
	assert.Len(t, v.Items(), 2, "removed item stays in the aggregate until persisted")
	assert.Len(t, v.LiveItems(), 1)
}

func TestVault_UpdateItemDoesNotBumpVaultVersion(t *testing.T) {
	v := newTestVault(t, uuid.New())
	item, err := v.AddItem(ItemTypePassword, mustKey(t), nil)
	require.NoError(t, err)

	before := v.Version()
	newPayload, err := NewEncryptedData("bmV3", "aXYy")
	require.NoError(t, err)

	meta := "github"
	updated, err := v.UpdateItem(item.ID(), newPayload, &meta)
	require.NoError(t, err)

	assert.Equal(t, before, v.Version())
	assert.Equal(t, 2, updated.Version())
	assert.True(t, updated.Payload().Equal(newPayload))
	require.NotNil(t, updated.Metadata())
	assert.Equal(t, "github", *updated.Metadata())
}

func TestVault_UpdateRemovedItem_InvalidState(t *testing.T) {
	v := newTestVault(t, uuid.New())
	item, err := v.AddItem(ItemTypePassword, mustKey(t), nil)
	require.NoError(t, err)
	require.NoError(t, v.RemoveItem(item.ID()))

	_, err = v.UpdateItem(item.ID(), mustKey(t), nil)
	assert.ErrorIs(t, err, common.ErrorInvalidState)
}

func TestVault_ItemLookups_NotFound(t *testing.T) {
	v := newTestVault(t, uuid.New())

	_, err := v.Item(uuid.New())
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, v.RemoveItem(uuid.New()), common.ErrorNotFound)

	_, err = v.UpdateItem(uuid.New(), mustKey(t), nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVault_EnsureOwnership(t *testing.T) {
	owner := uuid.New()
	v := newTestVault(t, owner)

	assert.NoError(t, v.EnsureOwnership(owner))

	err := v.EnsureOwnership(uuid.New())
	assert.ErrorIs(t, err, common.ErrorAccessDenied)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestVault_DeleteBlocksFurtherMutation(t *testing.T) {
	v := newTestVault(t, uuid.New())
	require.NoError(t, v.Delete())

	assert.True(t, v.IsDeleted())
	assert.Equal(t, 2, v.Version())

	assert.ErrorIs(t, v.Rename("x"), common.ErrorInvalidState)
	_, err := v.AddItem(ItemTypePassword, mustKey(t), nil)
	assert.ErrorIs(t, err, common.ErrorInvalidState)
	assert.ErrorIs(t, v.Delete(), common.ErrorInvalidState)
}

func TestVault_RenameBlank(t *testing.T) {
	v := newTestVault(t, uuid.New())
	err := v.Rename(" ")
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, 1, v.Version())
}

func TestVault_AddItemInvalidType(t *testing.T) {
	v := newTestVault(t, uuid.New())
	_, err := v.AddItem(ItemType(42), mustKey(t), nil)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, 1, v.Version())
	assert.Empty(t, v.Items())
}

func TestVault_RestoreAndPersistTracking(t *testing.T) {
	owner := uuid.New()
	vaultID := uuid.New()
	itemID := uuid.New()

	v, err := RestoreVault(
		VaultRow{ID: vaultID, OwnerID: owner, Name: "n", KeyCipherText: "c", KeyIV: "i", Version: 4},
		[]VaultItemRow{{ID: itemID, VaultID: vaultID, Type: ItemTypeIdentity, PayloadCipherText: "p", PayloadIV: "q", Version: 2}},
	)
	require.NoError(t, err)

	assert.False(t, v.IsNew())
	assert.False(t, v.Dirty())
	assert.Equal(t, 4, v.PersistedVersion())

	item, err := v.Item(itemID)
	require.NoError(t, err)
	assert.False(t, item.Dirty())

	require.NoError(t, v.Rename("m"))
	assert.True(t, v.Dirty())
	assert.Equal(t, 4, v.PersistedVersion())

	v.MarkPersisted()
	assert.False(t, v.Dirty())
	assert.Equal(t, 5, v.PersistedVersion())

	row := v.Row()
	assert.Equal(t, "m", row.Name)
	assert.Equal(t, 5, row.Version)
}

func TestRestoreVault_RejectsForeignItem(t *testing.T) {
	_, err := RestoreVault(
		VaultRow{ID: uuid.New(), OwnerID: uuid.New(), Name: "n", KeyCipherText: "c", KeyIV: "i", Version: 1},
		[]VaultItemRow{{ID: uuid.New(), VaultID: uuid.New(), Type: ItemTypePassword, PayloadCipherText: "p", PayloadIV: "q", Version: 1}},
	)
	assert.Error(t, err)
}
