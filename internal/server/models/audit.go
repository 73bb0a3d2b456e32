package models

import (
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/google/uuid"
)

// Column limits for server-generated audit strings.
const (
	auditMetadataMax  = 2000
	auditIPAddressMax = 50
	auditUserAgentMax = 500
)

// AuditLog is an append-only record of a security-relevant action.
// Optional fields are empty strings when absent.
type AuditLog struct {
	id        uuid.UUID
	userID    uuid.UUID
	action    AuditAction
	metadata  string
	ipAddress string
	userAgent string
	createdAt time.Time
}

// NewAuditLog records action for userID. Strings longer than their storage
// column are clipped.
func NewAuditLog(userID uuid.UUID, action AuditAction, metadata, ipAddress, userAgent string) (*AuditLog, error) {
	ve := &common.ValidationError{}
	if userID == uuid.Nil {
		ve.Add("user_id", "cannot be empty")
	}
	if !action.Valid() {
		ve.Add("action", "is not a supported audit action")
	}
	if !ve.Empty() {
		return nil, ve
	}

	return &AuditLog{
		id:        uuid.New(),
		userID:    userID,
		action:    action,
		metadata:  clip(metadata, auditMetadataMax),
		ipAddress: clip(ipAddress, auditIPAddressMax),
		userAgent: clip(userAgent, auditUserAgentMax),
		createdAt: now(),
	}, nil
}

// Read-only accessors.
func (a *AuditLog) ID() uuid.UUID        { return a.id }
func (a *AuditLog) UserID() uuid.UUID    { return a.userID }
func (a *AuditLog) Action() AuditAction  { return a.action }
func (a *AuditLog) Metadata() string     { return a.metadata }
func (a *AuditLog) IPAddress() string    { return a.ipAddress }
func (a *AuditLog) UserAgent() string    { return a.userAgent }
func (a *AuditLog) CreatedAt() time.Time { return a.createdAt }

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
