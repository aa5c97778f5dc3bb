// Package sqlxrepos implements the domain repositories on Postgres
// with handwritten SQL.
package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core"
)

// pqUniqueViolation is the Postgres error code for unique-constraint violations.
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && string(pqErr.Code) == pqUniqueViolation
}

// getExec picks the transaction handed down by a service, falling back to
// the repository's own connection.
func getExec(db *sqlx.DB, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 {
		return exec[0]
	}
	return db
}

// trapNoRows maps psql "no rows" to the domain's not-found sentinel.
func trapNoRows(err, sentinel error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return sentinel
	}
	return errors.Wrap(err, msg)
}
