// Package vaults provides the PostgreSQL repository for the vault aggregate.
package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements vault storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// The join keeps the aggregate whole: a vault is always loaded with all of
// its live items or not at all.
const selectVaults = `
	SELECT v.id, v.owner_id, v.name, v.vault_key_cipher_text, v.vault_key_iv,
		v.version, v.is_deleted, v.created_at, v.updated_at,
		i.id, i.item_type, i.payload_cipher_text, i.payload_iv, i.metadata,
		i.version, i.is_deleted, i.created_at, i.updated_at, i.last_accessed_at
	FROM vaults v
	LEFT JOIN vault_items i ON i.vault_id = v.id AND i.is_deleted = FALSE
`

// GetByID loads a live vault with its live items. A missing or deleted
// vault is common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vault, error) {
	query := selectVaults + `
	WHERE v.id = $1 AND v.is_deleted = FALSE
	ORDER BY i.seq`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	vaults, err := scanVaults(rows)
	if err != nil {
		return nil, err
	}
	if len(vaults) == 0 {
		return nil, fmt.Errorf("vault %s: %w", id, common.ErrorNotFound)
	}
	return vaults[0], nil
}

// ListByOwner loads every live vault of ownerID, oldest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Vault, error) {
	query := selectVaults + `
	WHERE v.owner_id = $1 AND v.is_deleted = FALSE
	ORDER BY v.created_at, v.id, i.seq`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	return scanVaults(rows)
}

// Insert stores a new vault and any items it already holds.
func (r *PostgresRepository) Insert(ctx context.Context, v *models.Vault) error {
	if !v.IsNew() {
		return fmt.Errorf("vault %s is already stored", v.ID())
	}
	row := v.Row()
	query := `
		INSERT INTO vaults (id, owner_id, name, vault_key_cipher_text, vault_key_iv, version, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.OwnerID, row.Name, row.KeyCipherText, row.KeyIV, row.Version, row.IsDeleted, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return dbx.WrapError(err)
	}

	for _, it := range v.Items() {
		if err := r.insertItem(ctx, it); err != nil {
			return err
		}
	}
	v.MarkPersisted()
	return nil
}

// Update writes the changed parts of a stored vault. The vault row and each
// changed item are compare-and-swapped on the version they were loaded with;
// a mismatch is common.ErrVersionConflict.
func (r *PostgresRepository) Update(ctx context.Context, v *models.Vault) error {
	if v.IsNew() {
		return fmt.Errorf("vault %s is not stored yet", v.ID())
	}

	if v.Dirty() {
		row := v.Row()
		query := `
			UPDATE vaults
			SET name = $1, vault_key_cipher_text = $2, vault_key_iv = $3, version = $4, is_deleted = $5, updated_at = $6
			WHERE id = $7 AND version = $8
		`
		res, err := r.db.ExecContext(ctx, query,
			row.Name, row.KeyCipherText, row.KeyIV, row.Version, row.IsDeleted, row.UpdatedAt,
			row.ID, v.PersistedVersion())
		if err != nil {
			return dbx.WrapError(err)
		}
		if err := expectOneRow(res); err != nil {
			return fmt.Errorf("vault %s: %w", v.ID(), err)
		}
	}

	for _, it := range v.Items() {
		var err error
		switch {
		case it.IsNew():
			err = r.insertItem(ctx, it)
		case it.Dirty():
			err = r.updateItem(ctx, it)
		}
		if err != nil {
			return err
		}
	}
	v.MarkPersisted()
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func scanVaults(rows *sql.Rows) ([]*models.Vault, error) {
	type acc struct {
		row   models.VaultRow
		items []models.VaultItemRow
	}
	var order []uuid.UUID
	byID := make(map[uuid.UUID]*acc)

	for rows.Next() {
		var (
			vr           models.VaultRow
			itemID       uuid.NullUUID
			itemType     sql.NullInt32
			payloadCT    sql.NullString
			payloadIV    sql.NullString
			metadata     sql.NullString
			itemVersion  sql.NullInt32
			itemDeleted  sql.NullBool
			itemCreated  sql.NullTime
			itemUpdated  sql.NullTime
			itemAccessed sql.NullTime
		)
		if err := rows.Scan(
			&vr.ID, &vr.OwnerID, &vr.Name, &vr.KeyCipherText, &vr.KeyIV,
			&vr.Version, &vr.IsDeleted, &vr.CreatedAt, &vr.UpdatedAt,
			&itemID, &itemType, &payloadCT, &payloadIV, &metadata,
			&itemVersion, &itemDeleted, &itemCreated, &itemUpdated, &itemAccessed,
		); err != nil {
			return nil, fmt.Errorf("scan vault: %w", err)
		}

		a, ok := byID[vr.ID]
		if !ok {
			a = &acc{row: vr}
			byID[vr.ID] = a
			order = append(order, vr.ID)
		}
		if !itemID.Valid {
			continue
		}

		ir := models.VaultItemRow{
			ID:                itemID.UUID,
			VaultID:           vr.ID,
			Type:              models.ItemType(itemType.Int32),
			PayloadCipherText: payloadCT.String,
			PayloadIV:         payloadIV.String,
			Version:           int(itemVersion.Int32),
			IsDeleted:         itemDeleted.Bool,
			CreatedAt:         itemCreated.Time,
			UpdatedAt:         itemUpdated.Time,
		}
		if metadata.Valid {
			ir.Metadata = &metadata.String
		}
		if itemAccessed.Valid {
			ir.LastAccessedAt = &itemAccessed.Time
		}
		a.items = append(a.items, ir)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}

	out := make([]*models.Vault, 0, len(order))
	for _, id := range order {
		a := byID[id]
		v, err := models.RestoreVault(a.row, a.items)
		if err != nil {
			return nil, errors.Join(common.ErrorInternal, err)
		}
		out = append(out, v)
	}
	return out, nil
}
