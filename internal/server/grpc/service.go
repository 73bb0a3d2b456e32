package grpc

import (
	"context"

	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/dmitrijs2005/vaultguard/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vaultguard.v1.VaultService"

// Wire messages that are not plain service requests or projections.
type (
	Empty        struct{}
	PingResponse struct {
		Status string `json:"status"`
	}
	ListVaultsResponse struct {
		Vaults []services.VaultSummary `json:"vaults"`
	}
	ListItemsResponse struct {
		Items []services.ItemSummary `json:"items"`
	}
	ListAuditLogsResponse struct {
		Logs []services.AuditLogSummary `json:"logs"`
	}
)

// VaultServiceServer is the method set registered under ServiceName.
type VaultServiceServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	CreateVault(context.Context, *services.CreateVaultRequest) (*services.VaultSummary, error)
	ListVaults(context.Context, *Empty) (*ListVaultsResponse, error)
	RenameVault(context.Context, *services.RenameVaultRequest) (*services.VaultSummary, error)
	DeleteVault(context.Context, *services.DeleteVaultRequest) (*Empty, error)
	CreateItem(context.Context, *services.CreateItemRequest) (*services.CreatedItem, error)
	ListItems(context.Context, *services.ListItemsRequest) (*ListItemsResponse, error)
	GetItem(context.Context, *services.ItemRequest) (*services.ItemSummary, error)
	UpdateItem(context.Context, *services.UpdateItemRequest) (*services.ItemSummary, error)
	DeleteItem(context.Context, *services.DeleteItemRequest) (*services.VaultSummary, error)
	ListAuditLogs(context.Context, *services.ListAuditLogsRequest) (*ListAuditLogsResponse, error)
	AttachmentUploadURL(context.Context, *services.ItemRequest) (*models.Attachment, error)
	AttachmentDownloadURL(context.Context, *services.ItemRequest) (*models.Attachment, error)
}

// publicMethods skip token verification.
var publicMethods = map[string]bool{
	"/" + ServiceName + "/Ping": true,
}

// unary adapts a typed method to grpc.MethodHandler.
func unary[Req, Resp any](name string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
		}
		if interceptor == nil {
			return call(srv.(VaultServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary("Ping", VaultServiceServer.Ping)},
		{MethodName: "CreateVault", Handler: unary("CreateVault", VaultServiceServer.CreateVault)},
		{MethodName: "ListVaults", Handler: unary("ListVaults", VaultServiceServer.ListVaults)},
		{MethodName: "RenameVault", Handler: unary("RenameVault", VaultServiceServer.RenameVault)},
		{MethodName: "DeleteVault", Handler: unary("DeleteVault", VaultServiceServer.DeleteVault)},
		{MethodName: "CreateItem", Handler: unary("CreateItem", VaultServiceServer.CreateItem)},
		{MethodName: "ListItems", Handler: unary("ListItems", VaultServiceServer.ListItems)},
		{MethodName: "GetItem", Handler: unary("GetItem", VaultServiceServer.GetItem)},
		{MethodName: "UpdateItem", Handler: unary("UpdateItem", VaultServiceServer.UpdateItem)},
		{MethodName: "DeleteItem", Handler: unary("DeleteItem", VaultServiceServer.DeleteItem)},
		{MethodName: "ListAuditLogs", Handler: unary("ListAuditLogs", VaultServiceServer.ListAuditLogs)},
		{MethodName: "AttachmentUploadURL", Handler: unary("AttachmentUploadURL", VaultServiceServer.AttachmentUploadURL)},
		{MethodName: "AttachmentDownloadURL", Handler: unary("AttachmentDownloadURL", VaultServiceServer.AttachmentDownloadURL)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vaultguard/v1/vault.json",
}
