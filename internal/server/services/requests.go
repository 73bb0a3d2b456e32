package services

import "github.com/google/uuid"

const defaultAuditPageSize = 50

// Length limits in the validate tags follow the column sizes of the
// persisted layout.

// EncryptedPayload is an opaque client-encrypted blob.
type EncryptedPayload struct {
	CipherText string `json:"cipher_text" validate:"required,max=10000"`
	IV         string `json:"iv" validate:"required,max=500"`
}

type CreateVaultRequest struct {
	Name               string `json:"name" validate:"notblank,max=100"`
	VaultKeyCipherText string `json:"vault_key_cipher_text" validate:"required,max=5000"`
	VaultKeyIV         string `json:"vault_key_iv" validate:"required,max=500"`
}

type RenameVaultRequest struct {
	VaultID         uuid.UUID `json:"vault_id" validate:"required"`
	Name            string    `json:"name" validate:"notblank,max=100"`
	ExpectedVersion *int      `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

type DeleteVaultRequest struct {
	VaultID         uuid.UUID `json:"vault_id" validate:"required"`
	ExpectedVersion *int      `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

type ListItemsRequest struct {
	VaultID uuid.UUID `json:"vault_id" validate:"required"`
}

type CreateItemRequest struct {
	VaultID  uuid.UUID        `json:"vault_id" validate:"required"`
	Type     string           `json:"type" validate:"required,itemtype"`
	Payload  EncryptedPayload `json:"payload"`
	Metadata *string          `json:"metadata,omitempty" validate:"omitempty,max=2000"`
}

// ItemRequest addresses a single item.
type ItemRequest struct {
	VaultID uuid.UUID `json:"vault_id" validate:"required"`
	ItemID  uuid.UUID `json:"item_id" validate:"required"`
}

type UpdateItemRequest struct {
	VaultID         uuid.UUID        `json:"vault_id" validate:"required"`
	ItemID          uuid.UUID        `json:"item_id" validate:"required"`
	Payload         EncryptedPayload `json:"payload"`
	Metadata        *string          `json:"metadata,omitempty" validate:"omitempty,max=2000"`
	ExpectedVersion *int             `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

type DeleteItemRequest struct {
	VaultID         uuid.UUID `json:"vault_id" validate:"required"`
	ItemID          uuid.UUID `json:"item_id" validate:"required"`
	ExpectedVersion *int      `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

// ListAuditLogsRequest pages through the caller's audit trail. Page is
// 1-based; zero values pick the first page and the default page size.
type ListAuditLogsRequest struct {
	Page     int `json:"page" validate:"min=0,max=1000000"`
	PageSize int `json:"page_size" validate:"min=0,max=100"`
}
