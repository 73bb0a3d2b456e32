// Package models defines the server-side vault aggregate and related records.
//
// The server never interprets secrets: every payload is an EncryptedData
// value produced by the client. Aggregates are created by factories and
// mutated only through their methods so that versioning and soft-delete
// invariants hold.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
)

// now is the clock used by aggregates; tests may replace it.
var now = func() time.Time { return time.Now().UTC() }

// EncryptedData is an opaque client-encrypted blob: cipher text plus the IV
// used to produce it. Two values are equal when both components are equal.
type EncryptedData struct {
	cipherText string
	iv         string
}

// NewEncryptedData validates that both components are present.
func NewEncryptedData(cipherText, iv string) (EncryptedData, error) {
	ve := &common.ValidationError{}
	if strings.TrimSpace(cipherText) == "" {
		ve.Add("cipher_text", "cannot be empty")
	}
	if strings.TrimSpace(iv) == "" {
		ve.Add("iv", "cannot be empty")
	}
	if !ve.Empty() {
		return EncryptedData{}, ve
	}
	return EncryptedData{cipherText: cipherText, iv: iv}, nil
}

// CipherText and IV return the base64 fields as stored.
func (e EncryptedData) CipherText() string { return e.cipherText }
func (e EncryptedData) IV() string         { return e.iv }

// IsZero reports whether e was never initialized by NewEncryptedData.
func (e EncryptedData) IsZero() bool { return e == EncryptedData{} }

// Equal reports structural equality.
func (e EncryptedData) Equal(o EncryptedData) bool { return e == o }
