// Package services holds the command and query orchestrators.
//
// Queries read through the cache and fall back to the read port. Commands
// run in their own unit of work: load the vault from the primary, check
// ownership, mutate the aggregate, stage the write and an audit record,
// commit, then drop the affected cache prefixes.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/cache"
	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/dmitrijs2005/vaultguard/internal/server/identity"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

const (
	// DefaultListTTL is how long list projections stay cached.
	DefaultListTTL = 5 * time.Minute

	invalidationTimeout = 2 * time.Second
)

type VaultService struct {
	reader   ReadPort
	newUoW   UnitOfWorkFactory
	cache    cache.Cache
	observer Observer
	logger   logging.Logger
	listTTL  time.Duration
}

// NewVaultService wires the orchestrator. A nil observer is replaced with
// NopObserver; a non-positive listTTL with DefaultListTTL.
func NewVaultService(reader ReadPort, newUoW UnitOfWorkFactory, c cache.Cache, observer Observer,
	logger logging.Logger, listTTL time.Duration) *VaultService {
	if observer == nil {
		observer = NopObserver{}
	}
	if listTTL <= 0 {
		listTTL = DefaultListTTL
	}
	return &VaultService{
		reader:   reader,
		newUoW:   newUoW,
		cache:    c,
		observer: observer,
		logger:   logger.With("module", "vault_service"),
		listTTL:  listTTL,
	}
}

// auditEntry is what a command records about itself.
type auditEntry struct {
	action   models.AuditAction
	metadata string
}

// vaultCommand is a mutation of one existing vault.
type vaultCommand struct {
	vaultID uuid.UUID
	// mutate changes v in memory and describes the change for the audit log.
	mutate func(v *models.Vault) (auditEntry, error)
	// stage queues the write. Nil means UpdateVault.
	stage func(uow UnitOfWork, v *models.Vault) error
	// invalidateItems also drops the vault's item lists.
	invalidateItems bool
	invalidateOwner bool
}

func (s *VaultService) CreateVault(ctx context.Context, caller identity.Caller, req CreateVaultRequest) (res VaultSummary, err error) {
	defer s.observe("create_vault", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return VaultSummary{}, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return VaultSummary{}, err
	}

	key, err := models.NewEncryptedData(req.VaultKeyCipherText, req.VaultKeyIV)
	if err != nil {
		return VaultSummary{}, err
	}
	v, err := models.NewVault(caller.UserID, req.Name, key)
	if err != nil {
		return VaultSummary{}, err
	}

	uow := s.newUoW()
	if err := uow.BeginTransaction(ctx); err != nil {
		return VaultSummary{}, err
	}
	done := false
	defer s.rollbackUnlessDone(ctx, uow, &done)

	if err := ctx.Err(); err != nil {
		return VaultSummary{}, err
	}
	uow.AddVault(v)
	if err := s.stageAudit(uow, caller, auditEntry{
		action:   models.AuditVaultCreated,
		metadata: fmt.Sprintf("Vault '%s' created", v.Name()),
	}); err != nil {
		return VaultSummary{}, err
	}
	if err := uow.Commit(context.WithoutCancel(ctx)); err != nil {
		return VaultSummary{}, err
	}
	done = true

	s.invalidate(ctx, vaultListPrefix(caller.UserID))
	s.logger.Info(ctx, "vault created", "vault_id", v.ID(), "user_id", caller.UserID)
	return toVaultSummary(v), nil
}

// ListVaults returns the caller's live vaults, oldest first.
func (s *VaultService) ListVaults(ctx context.Context, caller identity.Caller) (res []VaultSummary, err error) {
	defer s.observe("list_vaults", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return nil, err
	}

	key := vaultListKey(caller.UserID)
	if cached, ok := cache.Lookup[[]VaultSummary](ctx, s.cache, key); ok {
		s.observer.CacheLookup("list_vaults", true)
		return cached, nil
	}
	s.observer.CacheLookup("list_vaults", false)

	vaults, err := s.reader.GetVaultsByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	res = make([]VaultSummary, 0, len(vaults))
	for _, v := range vaults {
		if err := v.EnsureOwnership(caller.UserID); err != nil {
			return nil, err
		}
		res = append(res, toVaultSummary(v))
	}

	s.populate(ctx, key, res)
	return res, nil
}

func (s *VaultService) RenameVault(ctx context.Context, caller identity.Caller, req RenameVaultRequest) (res VaultSummary, err error) {
	defer s.observe("rename_vault", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return VaultSummary{}, err
	}
	if err := validateRequest(ctx, req); err != nil {
		return VaultSummary{}, err
	}

	v, err := s.runVaultCommand(ctx, caller, vaultCommand{
		vaultID: req.VaultID,
		mutate: func(v *models.Vault) (auditEntry, error) {
			if err := checkVersion("vault", v.ID(), v.Version(), req.ExpectedVersion); err != nil {
				return auditEntry{}, err
			}
			old := v.Name()
			if err := v.Rename(req.Name); err != nil {
				return auditEntry{}, err
			}
			return auditEntry{models.AuditVaultUpdated, fmt.Sprintf("Vault '%s' renamed to '%s'", old, v.Name())}, nil
		},
		invalidateItems: true,
		invalidateOwner: true,
	})
	if err != nil {
		return VaultSummary{}, err
	}
	return toVaultSummary(v), nil
}

// DeleteVault soft-deletes the vault. It disappears from every read.
func (s *VaultService) DeleteVault(ctx context.Context, caller identity.Caller, req DeleteVaultRequest) (err error) {
	defer s.observe("delete_vault", time.Now(), &err)

	if err := caller.Validate(); err != nil {
		return err
	}
	if err := validateRequest(ctx, req); err != nil {
		return err
	}

	_, err = s.runVaultCommand(ctx, caller, vaultCommand{
		vaultID: req.VaultID,
		mutate: func(v *models.Vault) (auditEntry, error) {
			if err := checkVersion("vault", v.ID(), v.Version(), req.ExpectedVersion); err != nil {
				return auditEntry{}, err
			}
			return auditEntry{models.AuditVaultDeleted, fmt.Sprintf("Vault '%s' deleted", v.Name())}, nil
		},
		stage: func(uow UnitOfWork, v *models.Vault) error {
			return uow.MarkVaultDeleted(v)
		},
		invalidateItems: true,
		invalidateOwner: true,
	})
	return err
}

// runVaultCommand is the shared command pipeline for an existing vault.
// Cancellation is honoured up to staging; once Commit starts it runs to
// completion.
func (s *VaultService) runVaultCommand(ctx context.Context, caller identity.Caller, cmd vaultCommand) (*models.Vault, error) {
	uow := s.newUoW()
	if err := uow.BeginTransaction(ctx); err != nil {
		return nil, err
	}
	done := false
	defer s.rollbackUnlessDone(ctx, uow, &done)

	v, err := uow.GetVaultByID(ctx, cmd.vaultID)
	if err != nil {
		return nil, err
	}
	if err := v.EnsureOwnership(caller.UserID); err != nil {
		s.logger.Warn(ctx, "vault access denied", "vault_id", cmd.vaultID, "user_id", caller.UserID)
		return nil, err
	}

	entry, err := cmd.mutate(v)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cmd.stage != nil {
		err = cmd.stage(uow, v)
	} else {
		uow.UpdateVault(v)
	}
	if err != nil {
		return nil, err
	}
	if err := s.stageAudit(uow, caller, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	done = true

	var prefixes []string
	if cmd.invalidateItems {
		prefixes = append(prefixes, itemListPrefix(v.ID()))
	}
	if cmd.invalidateOwner {
		prefixes = append(prefixes, vaultListPrefix(v.OwnerID()))
	}
	s.invalidate(ctx, prefixes...)
	return v, nil
}

func (s *VaultService) stageAudit(uow UnitOfWork, caller identity.Caller, e auditEntry) error {
	a, err := models.NewAuditLog(caller.UserID, e.action, e.metadata, caller.IPAddress, caller.UserAgent)
	if err != nil {
		return errors.Join(common.ErrorInternal, err)
	}
	uow.AddAuditLog(a)
	return nil
}

func (s *VaultService) rollbackUnlessDone(ctx context.Context, uow UnitOfWork, done *bool) {
	if *done {
		return
	}
	if err := uow.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "rollback failed", "error", err)
	}
}

// populate stores a projection. Failure only costs a future cache miss.
func (s *VaultService) populate(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.listTTL); err != nil {
		s.logger.Warn(ctx, "cache populate failed", "key", key, "error", err)
	}
}

// invalidate drops prefixes after a commit. It is detached from the
// caller's cancellation: the write already happened.
func (s *VaultService) invalidate(ctx context.Context, prefixes ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidationTimeout)
	defer cancel()
	for _, p := range prefixes {
		if err := s.cache.RemoveByPrefix(ctx, p); err != nil {
			s.logger.Warn(ctx, "cache invalidation failed", "prefix", p, "error", err)
		}
	}
}

func (s *VaultService) observe(op string, start time.Time, err *error) {
	s.observer.CommandFinished(op, time.Since(start), *err)
}

// checkVersion enforces an optional optimistic precondition.
func checkVersion(what string, id uuid.UUID, actual int, expected *int) error {
	if expected == nil || *expected == actual {
		return nil
	}
	return fmt.Errorf("%w: %s %s is at version %d, expected %d", common.ErrVersionConflict, what, id, actual, *expected)
}
