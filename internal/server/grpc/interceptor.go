package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/dmitrijs2005/vaultguard/internal/server/auth"
	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"github.com/dmitrijs2005/vaultguard/internal/server/metrics"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// requestInterceptor tags the request with an id, authenticates it from
// the access_token metadata unless the method is public, and records the
// outcome.
func (s *GRPCServer) requestInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	start := time.Now()
	md, _ := metadata.FromIncomingContext(ctx)

	requestID := firstValue(md, common.RequestIDHeaderName)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = identity.WithRequestID(ctx, requestID)
	ctx = logging.WithFields(ctx, "request_id", requestID)
	// fails outside a real transport stream; the id is still logged
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	defer func() {
		code := status.Code(err)
		metrics.RecordGRPCRequest(info.FullMethod, code.String())
		s.logger.Debug(ctx, "grpc request",
			"method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
	}()

	if !publicMethods[info.FullMethod] {
		accessToken := firstValue(md, common.AccessTokenHeaderName)
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		id, err := auth.ParseToken(accessToken, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				return nil, status.Error(codes.Unauthenticated, "token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = identity.WithCaller(ctx, identity.Caller{
			UserID:        id.UserID,
			Email:         id.Email,
			Authenticated: true,
			IPAddress:     peerIP(ctx),
			UserAgent:     firstValue(md, common.UserAgentHeaderName),
		})
		ctx = logging.WithFields(ctx, "user_id", id.UserID)
	}

	return handler(ctx, req)
}

// errorInterceptor turns domain errors into status errors.
func (s *GRPCServer) errorInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, info.FullMethod, err)
	}
	return resp, nil
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
