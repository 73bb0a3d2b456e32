package models

import "fmt"

// ItemType tags the kind of secret stored in a vault item. The server only
// stores the tag; it never looks inside the payload.
type ItemType int

const (
	ItemTypePassword ItemType = iota + 1
	ItemTypeSecureNote
	ItemTypeCreditCard
	ItemTypeIdentity
	ItemTypeDocument
)

var itemTypeNames = map[ItemType]string{
	ItemTypePassword:   "password",
	ItemTypeSecureNote: "secure_note",
	ItemTypeCreditCard: "credit_card",
	ItemTypeIdentity:   "identity",
	ItemTypeDocument:   "document",
}

func (t ItemType) Valid() bool {
	_, ok := itemTypeNames[t]
	return ok
}

func (t ItemType) String() string {
	if s, ok := itemTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("item_type(%d)", int(t))
}

// ParseItemType accepts the lower-case names returned by String.
func ParseItemType(s string) (ItemType, error) {
	for t, name := range itemTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q", s)
}

func (t ItemType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown item type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *ItemType) UnmarshalText(b []byte) error {
	v, err := ParseItemType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// AuditAction enumerates the security-relevant events recorded in the
// audit trail.
type AuditAction int

const (
	AuditVaultCreated AuditAction = iota + 1
	AuditVaultUpdated
	AuditVaultDeleted
	AuditVaultItemCreated
	AuditVaultItemUpdated
	AuditVaultItemDeleted
	AuditVaultItemViewed
	AuditVaultShared
	AuditLoginSuccess
	AuditLoginFailed
	AuditPasswordChanged
	AuditDeviceRegistered
)

var auditActionNames = map[AuditAction]string{
	AuditVaultCreated:     "vault_created",
	AuditVaultUpdated:     "vault_updated",
	AuditVaultDeleted:     "vault_deleted",
	AuditVaultItemCreated: "vault_item_created",
	AuditVaultItemUpdated: "vault_item_updated",
	AuditVaultItemDeleted: "vault_item_deleted",
	AuditVaultItemViewed:  "vault_item_viewed",
	AuditVaultShared:      "vault_shared",
	AuditLoginSuccess:     "login_success",
	AuditLoginFailed:      "login_failed",
	AuditPasswordChanged:  "password_changed",
	AuditDeviceRegistered: "device_registered",
}

func (a AuditAction) Valid() bool {
	_, ok := auditActionNames[a]
	return ok
}

func (a AuditAction) String() string {
	if s, ok := auditActionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("audit_action(%d)", int(a))
}

func (a AuditAction) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("unknown audit action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *AuditAction) UnmarshalText(b []byte) error {
	for k, name := range auditActionNames {
		if name == string(b) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown audit action %q", string(b))
}

// UserStatus is the lifecycle state of a user account.
type UserStatus int

const (
	UserActive UserStatus = iota + 1
	UserSuspended
	UserDeleted
)

func (s UserStatus) String() string {
	switch s {
	case UserActive:
		return "active"
	case UserSuspended:
		return "suspended"
	case UserDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("user_status(%d)", int(s))
	}
}
