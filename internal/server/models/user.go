package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/google/uuid"
)

// User is the account record maintained by the authentication service.
// The vault core only ever references users by id.
type User struct {
	ID                 uuid.UUID
	Email              string
	PasswordVerifier   string
	EncryptedMasterKey EncryptedData
	Status             UserStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewUser(email, passwordVerifier string, encryptedMasterKey EncryptedData) (*User, error) {
	ve := &common.ValidationError{}
	if strings.TrimSpace(email) == "" {
		ve.Add("email", "cannot be empty")
	}
	if strings.TrimSpace(passwordVerifier) == "" {
		ve.Add("password_verifier", "cannot be empty")
	}
	if encryptedMasterKey.IsZero() {
		ve.Add("encrypted_master_key", "cannot be empty")
	}
	if !ve.Empty() {
		return nil, ve
	}

	t := now()
	return &User{
		ID:                 uuid.New(),
		Email:              strings.ToLower(strings.TrimSpace(email)),
		PasswordVerifier:   passwordVerifier,
		EncryptedMasterKey: encryptedMasterKey,
		Status:             UserActive,
		CreatedAt:          t,
		UpdatedAt:          t,
	}, nil
}

func (u *User) Suspend() error {
	if u.Status == UserDeleted {
		return fmt.Errorf("%w: user is deleted", common.ErrorInvalidState)
	}
	u.Status = UserSuspended
	u.UpdatedAt = now()
	return nil
}

func (u *User) Activate() error {
	if u.Status == UserDeleted {
		return fmt.Errorf("%w: user is deleted", common.ErrorInvalidState)
	}
	u.Status = UserActive
	u.UpdatedAt = now()
	return nil
}

func (u *User) Delete() {
	u.Status = UserDeleted
	u.UpdatedAt = now()
}

// UpdatePasswordVerifier rotates the verifier and the wrapped master key
// together, as the client re-encrypts the key on password change.
func (u *User) UpdatePasswordVerifier(verifier string, encryptedMasterKey EncryptedData) error {
	if strings.TrimSpace(verifier) == "" {
		return common.NewValidationError("password_verifier", "cannot be empty")
	}
	if encryptedMasterKey.IsZero() {
		return common.NewValidationError("encrypted_master_key", "cannot be empty")
	}
	u.PasswordVerifier = verifier
	u.EncryptedMasterKey = encryptedMasterKey
	u.UpdatedAt = now()
	return nil
}

// Device is a client installation registered to a user.
type Device struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	DeviceInfo     string
	LastAccessedAt time.Time
	IsActive       bool
	CreatedAt      time.Time
}

func NewDevice(userID uuid.UUID, deviceInfo string) (*Device, error) {
	ve := &common.ValidationError{}
	if userID == uuid.Nil {
		ve.Add("user_id", "cannot be empty")
	}
	if strings.TrimSpace(deviceInfo) == "" {
		ve.Add("device_info", "cannot be empty")
	}
	if !ve.Empty() {
		return nil, ve
	}
	t := now()
	return &Device{
		ID:             uuid.New(),
		UserID:         userID,
		DeviceInfo:     deviceInfo,
		LastAccessedAt: t,
		IsActive:       true,
		CreatedAt:      t,
	}, nil
}

func (d *Device) UpdateLastAccess() { d.LastAccessedAt = now() }
func (d *Device) Deactivate()       { d.IsActive = false }
func (d *Device) Activate()         { d.IsActive = true }
