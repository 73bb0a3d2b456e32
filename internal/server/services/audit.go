package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
)

// AuditService exposes a user's own audit trail. It is never cached: the
// trail is append-only and read rarely.
type AuditService struct {
	reader   ReadPort
	observer Observer
}

func NewAuditService(reader ReadPort, observer Observer) *AuditService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &AuditService{reader: reader, observer: observer}
}

// ListAuditLogs returns one page of the caller's audit records, newest
// first.
func (s *AuditService) ListAuditLogs(ctx context.Context, caller identity.Caller, req ListAuditLogsRequest) (res []AuditLogSummary, err error) {
	start := time.Now()
	defer func() { s.observer.CommandFinished("list_audit_logs", time.Since(start), err) }()

	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size == 0 {
		size = defaultAuditPageSize
	}

	logs, err := s.reader.GetAuditLogs(ctx, caller.UserID, page, size)
	if err != nil {
		return nil, err
	}
	res = make([]AuditLogSummary, 0, len(logs))
	for _, a := range logs {
		res = append(res, toAuditLogSummary(a))
	}
	return res, nil
}
