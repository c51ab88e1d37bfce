package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes used to classify store errors into the domain taxonomy.
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// isSetupRequired reports whether the error means the schema itself is
// missing, i.e. the system has never been provisioned.
func isSetupRequired(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable
}

// uniqueConstraint returns the violated unique constraint name, or "".
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
