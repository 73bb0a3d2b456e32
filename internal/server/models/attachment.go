package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Attachment describes a presigned object-storage URL for the encrypted
// blob of a document item. The server hands out URLs; the client uploads
// and downloads the ciphertext directly.
type Attachment struct {
	// VaultID and ItemID identify the owning document item.
	VaultID uuid.UUID `json:"vault_id"`
	ItemID  uuid.UUID `json:"item_id"`
	// StorageKey is the object key of the ciphertext blob.
	StorageKey string `json:"storage_key"`
	// Method is the HTTP method the URL is signed for.
	Method string `json:"method"`
	// URL is the presigned request URL.
	URL string `json:"url"`
	// ExpiresAt is when the signature stops being valid.
	ExpiresAt time.Time `json:"expires_at"`
}

// AttachmentStorageKey is the object key for an item's blob.
func AttachmentStorageKey(vaultID, itemID uuid.UUID) string {
	return fmt.Sprintf("vaults/%s/items/%s", vaultID, itemID)
}
