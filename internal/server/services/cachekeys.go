package services

import (
	"fmt"

	"github.com/google/uuid"
)

// Cache keys. The part before ':' is the invalidation prefix: one per
// owner for vault lists and one per vault for item lists. Item lists are
// also keyed by caller so an entry is only ever served to the caller it
// was authorized for.

func vaultListPrefix(ownerID uuid.UUID) string { return fmt.Sprintf("vaults.%s", ownerID) }
func vaultListKey(ownerID uuid.UUID) string    { return vaultListPrefix(ownerID) + ":all" }

func itemListPrefix(vaultID uuid.UUID) string { return fmt.Sprintf("items.%s", vaultID) }
func itemListKey(vaultID, callerID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", itemListPrefix(vaultID), callerID)
}
