package dbx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

// WrapError annotates a driver error. Unique violations become
// common.ErrVersionConflict: the row was written concurrently.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrVersionConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}
