// Package auditlogs provides the append-only PostgreSQL audit trail.
package auditlogs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vaultguard/internal/dbx"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *models.AuditLog) error {
	row := a.Row()
	query := `
		INSERT INTO audit_logs (id, user_id, action, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.UserID, int(row.Action),
		nullIfEmpty(row.Metadata), nullIfEmpty(row.IPAddress), nullIfEmpty(row.UserAgent),
		row.CreatedAt)
	if err != nil {
		return dbx.WrapError(err)
	}
	return nil
}

// ListByUser returns userID's records, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, user_id, action, metadata, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, dbx.WrapError(err)
	}
	defer rows.Close()

	result := make([]*models.AuditLog, 0)
	for rows.Next() {
		var (
			row                     models.AuditLogRow
			action                  int
			metadata, ip, userAgent sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.UserID, &action, &metadata, &ip, &userAgent, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		row.Action = models.AuditAction(action)
		row.Metadata = metadata.String
		row.IPAddress = ip.String
		row.UserAgent = userAgent.String
		result = append(result, models.RestoreAuditLog(row))
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.WrapError(err)
	}
	return result, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
