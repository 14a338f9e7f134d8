package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key failure.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// Translate maps driver errors onto httpx sentinels so handlers can render them.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return httpx.ErrNotFound
	case IsUniqueViolation(err):
		return httpx.Wrap(httpx.ErrDuplicate, "Resource already exists", err)
	case IsForeignKeyViolation(err):
		// Inserts and updates name a missing parent; deletes hit remaining children.
		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		if strings.Contains(pgErr.Detail, "is not present") {
			return httpx.Wrap(httpx.ErrValidation, "Referenced resource does not exist", err)
		}
		return httpx.Wrap(httpx.ErrDuplicate, "Resource is still in use", err)
	default:
		return err
	}
}
