package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the repositories react to.
const (
	PGUniqueViolation     = "23505"
	PGForeignKeyViolation = "23503"
	PGNumericOutOfRange   = "22003"
)

// ParsePGErrorCode returns the SQLSTATE of a postgres error, or "unknown".
func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return "unknown"
}

// ParsePGConstraint returns the violated constraint name, if any.
func ParsePGConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
	ErrConflict       = errors.New("conflict")
)

// Ledger
var (
	ErrReferenceNotFound = errors.New("referenced entity not found")
	ErrSerialConflict    = errors.New("serial number already allocated")
	ErrSerialExhausted   = errors.New("serial allocation retries exhausted")
	ErrNonPositiveAmount = errors.New("amount must be a positive integer")
	ErrAmountOverflow    = errors.New("amount sum out of range")
)

// Auth
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
