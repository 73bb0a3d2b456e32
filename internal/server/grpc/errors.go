package grpc

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps an error to the closed set of outcomes clients see. Only
// not-found, access-denied and validation failures carry specific text;
// everything else is a generic message with the request id.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch common.KindOf(err) {
	case common.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case common.KindAccessDenied:
		s.logger.Warn(ctx, "access denied", "method", method, "error", err)
		return status.Error(codes.PermissionDenied, err.Error())
	case common.KindValidation:
		return validationStatus(err)
	case common.KindUnauthenticated:
		return status.Error(codes.Unauthenticated, "unauthenticated")
	}

	code := codes.Internal
	switch {
	case common.KindOf(err) == common.KindConflict:
		code = codes.Aborted
	case common.KindOf(err) == common.KindInvalidState:
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}

	requestID := identity.RequestID(ctx)
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Warn(ctx, "request failed", "method", method, "error", err)
	}

	msg := fmt.Sprintf("request failed (request id %s)", requestID)
	if s.exposeErrorDetails {
		msg += ": " + err.Error()
	}
	return status.Error(code, msg)
}

func validationStatus(err error) error {
	st := status.New(codes.InvalidArgument, "invalid request")

	var ve *common.ValidationError
	if !errors.As(err, &ve) || ve.Empty() {
		return st.Err()
	}

	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		for _, msg := range ve.Fields[f] {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f,
				Description: msg,
			})
		}
	}

	detailed, derr := st.WithDetails(br)
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}
