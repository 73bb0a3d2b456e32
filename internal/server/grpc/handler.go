package grpc

import (
	"context"

	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/dmitrijs2005/vaultguard/internal/server/services"
)

// Handlers pass the caller installed by requestInterceptor. A missing
// caller is the zero value, which the services reject as unauthenticated.

func caller(ctx context.Context) identity.Caller {
	c, _ := identity.FromContext(ctx)
	return c
}

func (s *GRPCServer) Ping(ctx context.Context, _ *Empty) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateVault(ctx context.Context, req *services.CreateVaultRequest) (*services.VaultSummary, error) {
	res, err := s.vaults.CreateVault(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) ListVaults(ctx context.Context, _ *Empty) (*ListVaultsResponse, error) {
	res, err := s.vaults.ListVaults(ctx, caller(ctx))
	if err != nil {
		return nil, err
	}
	return &ListVaultsResponse{Vaults: res}, nil
}

func (s *GRPCServer) RenameVault(ctx context.Context, req *services.RenameVaultRequest) (*services.VaultSummary, error) {
	res, err := s.vaults.RenameVault(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) DeleteVault(ctx context.Context, req *services.DeleteVaultRequest) (*Empty, error) {
	if err := s.vaults.DeleteVault(ctx, caller(ctx), *req); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *GRPCServer) CreateItem(ctx context.Context, req *services.CreateItemRequest) (*services.CreatedItem, error) {
	res, err := s.vaults.CreateItem(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) ListItems(ctx context.Context, req *services.ListItemsRequest) (*ListItemsResponse, error) {
	res, err := s.vaults.ListItems(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &ListItemsResponse{Items: res}, nil
}

func (s *GRPCServer) GetItem(ctx context.Context, req *services.ItemRequest) (*services.ItemSummary, error) {
	res, err := s.vaults.GetItem(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) UpdateItem(ctx context.Context, req *services.UpdateItemRequest) (*services.ItemSummary, error) {
	res, err := s.vaults.UpdateItem(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) DeleteItem(ctx context.Context, req *services.DeleteItemRequest) (*services.VaultSummary, error) {
	res, err := s.vaults.DeleteItem(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *GRPCServer) ListAuditLogs(ctx context.Context, req *services.ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	res, err := s.audit.ListAuditLogs(ctx, caller(ctx), *req)
	if err != nil {
		return nil, err
	}
	return &ListAuditLogsResponse{Logs: res}, nil
}

func (s *GRPCServer) AttachmentUploadURL(ctx context.Context, req *services.ItemRequest) (*models.Attachment, error) {
	return s.attachments.UploadURL(ctx, caller(ctx), *req)
}

func (s *GRPCServer) AttachmentDownloadURL(ctx context.Context, req *services.ItemRequest) (*models.Attachment, error) {
	return s.attachments.DownloadURL(ctx, caller(ctx), *req)
}
