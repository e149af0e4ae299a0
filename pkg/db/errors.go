package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

func isSerializationCode(code string) bool {
	return code == "40001" || code == "40P01"
}

// IsSerializationFailure reports whether the error carries a lock or
// serialization conflict worth retrying (40001/40P01 class failures)
// anywhere in its chain.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return isSerializationCode(pgxErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isSerializationCode(string(pqErr.Code))
	}

	// Untyped driver errors only leave the SQLSTATE in the text, and typed
	// wrappers print just their own code and message, so every level of the
	// chain gets inspected.
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "could not serialize access") ||
			strings.Contains(msg, "deadlock detected") ||
			strings.Contains(msg, "40001") ||
			strings.Contains(msg, "40P01") {
			return true
		}
	}
	return false
}
