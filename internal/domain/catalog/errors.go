package catalog

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDuplicate   = errors.New("duplicate natural key")
	ErrNotFound    = errors.New("record not found")
	ErrUnknownKind = errors.New("unknown reference kind")
)

const (
	pgUniqueViolation = "23505"
)

// wrapWriteErr maps a unique violation to ErrDuplicate and keeps the driver
// error reachable for Reason.
func wrapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Reason is the message shown to an operator for a failed write: the
// Postgres message when there is one, else the error text.
func Reason(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Detail != "" {
			return pgErr.Message + ": " + pgErr.Detail
		}
		return pgErr.Message
	}
	return err.Error()
}

func (k RefKind) table() (string, error) {
	switch k {
	case RefCategories:
		return "categories", nil
	case RefBrands:
		return "brands", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}
