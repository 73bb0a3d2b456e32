// Package grpc exposes the vault orchestrators as the gRPC service
// vaultguard.v1.VaultService. Messages travel as JSON.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/dmitrijs2005/vaultguard/internal/server/services"
	"google.golang.org/grpc"
)

// VaultAPI is the part of services.VaultService the transport calls.
type VaultAPI interface {
	CreateVault(ctx context.Context, caller identity.Caller, req services.CreateVaultRequest) (services.VaultSummary, error)
	ListVaults(ctx context.Context, caller identity.Caller) ([]services.VaultSummary, error)
	RenameVault(ctx context.Context, caller identity.Caller, req services.RenameVaultRequest) (services.VaultSummary, error)
	DeleteVault(ctx context.Context, caller identity.Caller, req services.DeleteVaultRequest) error
	CreateItem(ctx context.Context, caller identity.Caller, req services.CreateItemRequest) (services.CreatedItem, error)
	ListItems(ctx context.Context, caller identity.Caller, req services.ListItemsRequest) ([]services.ItemSummary, error)
	GetItem(ctx context.Context, caller identity.Caller, req services.ItemRequest) (services.ItemSummary, error)
	UpdateItem(ctx context.Context, caller identity.Caller, req services.UpdateItemRequest) (services.ItemSummary, error)
	DeleteItem(ctx context.Context, caller identity.Caller, req services.DeleteItemRequest) (services.VaultSummary, error)
}

type AuditAPI interface {
	ListAuditLogs(ctx context.Context, caller identity.Caller, req services.ListAuditLogsRequest) ([]services.AuditLogSummary, error)
}

type AttachmentAPI interface {
	UploadURL(ctx context.Context, caller identity.Caller, req services.ItemRequest) (*models.Attachment, error)
	DownloadURL(ctx context.Context, caller identity.Caller, req services.ItemRequest) (*models.Attachment, error)
}

type GRPCServer struct {
	address            string
	vaults             VaultAPI
	audit              AuditAPI
	attachments        AttachmentAPI
	logger             logging.Logger
	jwtSecret          []byte
	exposeErrorDetails bool
}

// NewGRPCServer builds the transport. exposeErrorDetails appends internal
// error text to generic failures and must stay off in production.
func NewGRPCServer(a string, l logging.Logger, secretKey string, exposeErrorDetails bool,
	vaults VaultAPI, audit AuditAPI, attachments AttachmentAPI) *GRPCServer {
	return &GRPCServer{
		address:            a,
		logger:             l.With("module", "grpc_server"),
		vaults:             vaults,
		audit:              audit,
		attachments:        attachments,
		jwtSecret:          []byte(secretKey),
		exposeErrorDetails: exposeErrorDetails,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestInterceptor, s.errorInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
