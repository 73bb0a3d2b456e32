package vaults

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
)

func (r *PostgresRepository) insertItem(ctx context.Context, it *models.VaultItem) error {
	row := it.Row()
	query := `
		INSERT INTO vault_items (id, vault_id, item_type, payload_cipher_text, payload_iv, metadata,
			version, is_deleted, created_at, updated_at, last_accessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.VaultID, int(row.Type), row.PayloadCipherText, row.PayloadIV, row.Metadata,
		row.Version, row.IsDeleted, row.CreatedAt, row.UpdatedAt, row.LastAccessedAt)
	if err != nil {
		return dbx.WrapError(err)
	}
	return nil
}

func (r *PostgresRepository) updateItem(ctx context.Context, it *models.VaultItem) error {
	row := it.Row()
	query := `
		UPDATE vault_items
		SET payload_cipher_text = $1, payload_iv = $2, metadata = $3, version = $4,
			is_deleted = $5, updated_at = $6, last_accessed_at = $7
		WHERE id = $8 AND vault_id = $9 AND version = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		row.PayloadCipherText, row.PayloadIV, row.Metadata, row.Version,
		row.IsDeleted, row.UpdatedAt, row.LastAccessedAt,
		row.ID, row.VaultID, it.PersistedVersion())
	if err != nil {
		return dbx.WrapError(err)
	}
	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("item %s: %w", row.ID, err)
	}
	return nil
}
