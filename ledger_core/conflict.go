package ledger_core

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// postgres serialization_failure, deadlock_detected, lock_not_available
var conflictCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
}

// IsConflict reports whether err is a lock or serialization failure that is
// safe to retry from the start of the unit.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return conflictCodes[pgErr.Code]
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return false
}
