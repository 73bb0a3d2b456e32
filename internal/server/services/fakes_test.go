package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/cache"
	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

type storedVault struct {
	row   models.VaultRow
	items []models.VaultItemRow
}

// memStore is an in-memory primary and replica. Aggregates are copied in
// and out through their rows, the way the SQL repositories do.
type memStore struct {
	mu     sync.Mutex
	vaults map[uuid.UUID]*storedVault
	audits []*models.AuditLog

	readCalls  int
	writeLoads int

	commitErr error
	afterLoad func()

	units []*fakeUoW
}

func newMemStore() *memStore {
	return &memStore{vaults: make(map[uuid.UUID]*storedVault)}
}

func (m *memStore) factory() UnitOfWorkFactory {
	return func() UnitOfWork {
		m.mu.Lock()
		defer m.mu.Unlock()
		u := &fakeUoW{store: m}
		m.units = append(m.units, u)
		return u
	}
}

func (m *memStore) load(id uuid.UUID) (*models.Vault, error) {
	sv, ok := m.vaults[id]
	if !ok || sv.row.IsDeleted {
		return nil, common.ErrorNotFound
	}
	live := make([]models.VaultItemRow, 0, len(sv.items))
	for _, ir := range sv.items {
		if !ir.IsDeleted {
			live = append(live, ir)
		}
	}
	return models.RestoreVault(sv.row, live)
}

func (m *memStore) GetVaultByID(_ context.Context, id uuid.UUID) (*models.Vault, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++
	return m.load(id)
}

func (m *memStore) GetVaultsByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Vault, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++

	var out []*models.Vault
	for id, sv := range m.vaults {
		if sv.row.OwnerID != ownerID || sv.row.IsDeleted {
			continue
		}
		v, err := m.load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

func (m *memStore) GetAuditLogs(_ context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++

	var mine []*models.AuditLog
	for i := len(m.audits) - 1; i >= 0; i-- {
		if m.audits[i].UserID() == userID {
			mine = append(mine, m.audits[i])
		}
	}
	from := (page - 1) * pageSize
	if from >= len(mine) {
		return nil, nil
	}
	to := min(from+pageSize, len(mine))
	return mine[from:to], nil
}

func (m *memStore) auditActions(userID uuid.UUID) []models.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditAction
	for _, a := range m.audits {
		if a.UserID() == userID {
			out = append(out, a.Action())
		}
	}
	return out
}

func (m *memStore) insert(v *models.Vault) error {
	if _, ok := m.vaults[v.ID()]; ok {
		return common.ErrVersionConflict
	}
	sv := &storedVault{row: v.Row()}
	for _, it := range v.Items() {
		sv.items = append(sv.items, it.Row())
	}
	m.vaults[v.ID()] = sv
	v.MarkPersisted()
	return nil
}

func (m *memStore) update(v *models.Vault) error {
	sv, ok := m.vaults[v.ID()]
	if !ok {
		return common.ErrorNotFound
	}
	if v.Dirty() {
		if sv.row.Version != v.PersistedVersion() {
			return common.ErrVersionConflict
		}
		sv.row = v.Row()
	}
	for _, it := range v.Items() {
		switch {
		case it.IsNew():
			sv.items = append(sv.items, it.Row())
		case it.Dirty():
			for i := range sv.items {
				if sv.items[i].ID == it.ID() {
					if sv.items[i].Version != it.PersistedVersion() {
						return common.ErrVersionConflict
					}
					sv.items[i] = it.Row()
				}
			}
		}
	}
	v.MarkPersisted()
	return nil
}

type fakeUoW struct {
	store  *memStore
	staged []func() error

	began      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUoW) GetVaultByID(_ context.Context, id uuid.UUID) (*models.Vault, error) {
	u.store.mu.Lock()
	u.store.writeLoads++
	v, err := u.store.load(id)
	hook := u.store.afterLoad
	u.store.mu.Unlock()
	if hook != nil {
		hook()
	}
	return v, err
}

func (u *fakeUoW) AddVault(v *models.Vault) {
	u.staged = append(u.staged, func() error { return u.store.insert(v) })
}

func (u *fakeUoW) UpdateVault(v *models.Vault) {
	u.staged = append(u.staged, func() error { return u.store.update(v) })
}

func (u *fakeUoW) MarkVaultDeleted(v *models.Vault) error {
	if err := v.Delete(); err != nil {
		return err
	}
	u.UpdateVault(v)
	return nil
}

func (u *fakeUoW) AddAuditLog(a *models.AuditLog) {
	u.staged = append(u.staged, func() error {
		u.store.audits = append(u.store.audits, a)
		return nil
	})
}

func (u *fakeUoW) BeginTransaction(context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUoW) SaveChanges(context.Context) (int, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	ops := u.staged
	u.staged = nil
	for _, op := range ops {
		if err := op(); err != nil {
			return 0, err
		}
	}
	return len(ops), nil
}

func (u *fakeUoW) Commit(ctx context.Context) error {
	if u.store.commitErr != nil {
		u.staged = nil
		u.rolledBack = true
		return u.store.commitErr
	}
	if _, err := u.SaveChanges(ctx); err != nil {
		u.rolledBack = true
		return err
	}
	u.committed = true
	return nil
}

func (u *fakeUoW) Rollback(context.Context) error {
	u.staged = nil
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

// brokenCache misses every read and fails every write.
type brokenCache struct {
	cache.Cache
	invalidations int
}

func (c *brokenCache) Get(context.Context, string, any) bool { return false }
func (c *brokenCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("cache unavailable")
}
func (c *brokenCache) RemoveByPrefix(context.Context, string) error {
	c.invalidations++
	return errors.New("cache unavailable")
}

type observedCommand struct {
	op  string
	err error
}

type recordingObserver struct {
	mu       sync.Mutex
	hits     map[string]int
	misses   map[string]int
	commands []observedCommand
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{hits: map[string]int{}, misses: map[string]int{}}
}

func (o *recordingObserver) CacheLookup(query string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits[query]++
	} else {
		o.misses[query]++
	}
}

func (o *recordingObserver) CommandFinished(op string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commands = append(o.commands, observedCommand{op: op, err: err})
}

type fakePresigner struct {
	keys []string
	err  error
}

func (p *fakePresigner) sign(method, key string) (string, time.Time, error) {
	if p.err != nil {
		return "", time.Time{}, p.err
	}
	p.keys = append(p.keys, key)
	return "https://blobs.example/" + key + "?method=" + method, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (p *fakePresigner) PresignPut(_ context.Context, key string) (string, time.Time, error) {
	return p.sign("PUT", key)
}

func (p *fakePresigner) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	return p.sign("GET", key)
}
