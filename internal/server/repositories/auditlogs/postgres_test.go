package auditlogs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vaultguard/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a, err := models.NewAuditLog(uuid.New(), models.AuditVaultCreated, "Vault 'x' created", "", "cli/1.0")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO audit_logs \(id, user_id, action, metadata, ip_address, user_agent, created_at\)`).
		WithArgs(a.ID(), a.UserID(), 1, "Vault 'x' created", nil, "cli/1.0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), a))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	a, err := models.NewAuditLog(uuid.New(), models.AuditVaultDeleted, "", "", "")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnError(errors.New("db is down"))

	err = repo.Insert(context.Background(), a)
	assert.EqualError(t, err, "db error: db is down")
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	user := uuid.New()
	newer := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "metadata", "ip_address", "user_agent", "created_at"}).
		AddRow(uuid.NewString(), user.String(), int64(5), "Item updated in vault Personal", "10.0.0.1", nil, newer).
		AddRow(uuid.NewString(), user.String(), int64(1), nil, nil, nil, older)

	mock.ExpectQuery(`FROM audit_logs\s+WHERE user_id = \$1\s+ORDER BY created_at DESC, id\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(user, 20, 40).
		WillReturnRows(rows)

	logs, err := repo.ListByUser(context.Background(), user, 20, 40)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, models.AuditVaultItemUpdated, logs[0].Action())
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress())
	assert.Equal(t, "", logs[0].UserAgent())
	assert.Equal(t, newer, logs[0].CreatedAt())
	assert.Equal(t, models.AuditVaultCreated, logs[1].Action())
	assert.Equal(t, "", logs[1].Metadata())
}

func TestListByUser_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "metadata", "ip_address", "user_agent", "created_at"}).
		AddRow("not-a-uuid", uuid.NewString(), int64(1), nil, nil, nil, time.Now())
	mock.ExpectQuery(`FROM audit_logs`).WillReturnRows(rows)

	_, err := repo.ListByUser(context.Background(), uuid.New(), 10, 0)
	assert.Error(t, err)
}
