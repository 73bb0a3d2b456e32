package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
)

// AttachmentService hands out presigned URLs for the encrypted blob of a
// document item. The blob never passes through the server.
type AttachmentService struct {
	newUoW    UnitOfWorkFactory
	presigner Presigner
	observer  Observer
	logger    logging.Logger
}

func NewAttachmentService(newUoW UnitOfWorkFactory, presigner Presigner, observer Observer, logger logging.Logger) *AttachmentService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &AttachmentService{
		newUoW:    newUoW,
		presigner: presigner,
		observer:  observer,
		logger:    logger.With("module", "attachment_service"),
	}
}

func (s *AttachmentService) UploadURL(ctx context.Context, caller identity.Caller, req ItemRequest) (*models.Attachment, error) {
	return s.presign(ctx, "attachment_upload_url", http.MethodPut, caller, req, s.presigner.PresignPut)
}

func (s *AttachmentService) DownloadURL(ctx context.Context, caller identity.Caller, req ItemRequest) (*models.Attachment, error) {
	return s.presign(ctx, "attachment_download_url", http.MethodGet, caller, req, s.presigner.PresignGet)
}

type presignFunc func(ctx context.Context, key string) (string, time.Time, error)

func (s *AttachmentService) presign(ctx context.Context, op, method string, caller identity.Caller, req ItemRequest,
	sign presignFunc) (res *models.Attachment, err error) {
	start := time.Now()
	defer func() { s.observer.CommandFinished(op, time.Since(start), err) }()

	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return nil, err
	}

	// Primary, not replica: the item may have been created a moment ago.
	v, err := s.newUoW().GetVaultByID(ctx, req.VaultID)
	if err != nil {
		return nil, err
	}
	if err := v.EnsureOwnership(caller.UserID); err != nil {
		return nil, err
	}
	item, err := v.Item(req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Type() != models.ItemTypeDocument {
		return nil, fmt.Errorf("%w: item %s is a %s, not a document", common.ErrorInvalidState, item.ID(), item.Type())
	}

	key := models.AttachmentStorageKey(v.ID(), item.ID())
	url, expiresAt, err := sign(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign %s %s: %w", method, key, err)
	}

	s.logger.Debug(ctx, "attachment url issued", "method", method, "vault_id", v.ID(), "item_id", item.ID())
	return &models.Attachment{
		VaultID:    v.ID(),
		ItemID:     item.ID(),
		StorageKey: key,
		Method:     method,
		URL:        url,
		ExpiresAt:  expiresAt,
	}, nil
}
