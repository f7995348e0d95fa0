package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
)

// Postgres SQLSTATE codes.
const (
	pgUndefinedTable  = "42P01"
	pgUniqueViolation = "23505"
)

// IsUniqueViolation reports whether the error is a Postgres unique violation
// (SQLSTATE 23505), optionally on the named constraint. Drivers without
// structured errors fall back to message matching; those cannot report the
// constraint reliably, so the name check is best effort there.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		if pgxErr.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pgxErr.ConstraintName == constraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pqErr.Constraint == constraintName
	}

	msg := err.Error()
	// SQLite (tests) and generic drivers.
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsMissingTable reports whether the error means the queried table was never
// provisioned. Optional collections (e.g. campaign_products) rely on this to
// degrade to defaults instead of treating the failure as fatal.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUndefinedTable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedTable
	}

	msg := strings.ToLower(err.Error())
	// SQLite (tests) and generic drivers.
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "does not exist")
}

// StorageCode classifies a raw storage failure for the responses layer:
// COLLECTION_MISSING when the table was never provisioned, so callers can
// degrade or surface the condition distinctly, DEPENDENCY for everything
// else.
func StorageCode(err error) pkgerrors.Code {
	if IsMissingTable(err) {
		return pkgerrors.CodeCollectionMissing
	}
	return pkgerrors.CodeDependency
}
