// Package identity carries the authenticated caller through a request.
package identity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/google/uuid"
)

// Caller is the identity attached to a request by the transport.
// IPAddress and UserAgent are optional and only feed the audit trail.
type Caller struct {
	UserID        uuid.UUID
	Email         string
	Authenticated bool
	IPAddress     string
	UserAgent     string
}

// Validate fails with common.ErrorUnauthorized unless the caller is an
// authenticated user.
func (c Caller) Validate() error {
	if !c.Authenticated {
		return fmt.Errorf("%w: caller is not authenticated", common.ErrorUnauthorized)
	}
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: caller has no user id", common.ErrorUnauthorized)
	}
	return nil
}

type ctxKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller stored by WithCaller. The zero Caller
// (unauthenticated) is returned when none is present.
func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	return c, ok
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id of the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
