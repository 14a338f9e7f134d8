package db

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))
	assert.ErrorIs(t, Translate(pgx.ErrNoRows), httpx.ErrNotFound)
	assert.ErrorIs(t, Translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), httpx.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "roles_name_key"}
	assert.True(t, IsUniqueViolation(dup))
	assert.ErrorIs(t, Translate(dup), httpx.ErrDuplicate)

	inUse := &pgconn.PgError{Code: "23503", Detail: `Key (name)=(auditor) is still referenced from table "users".`}
	assert.True(t, IsForeignKeyViolation(inUse))
	assert.ErrorIs(t, Translate(inUse), httpx.ErrDuplicate)
	status, code, msg := httpx.Classify(Translate(inUse))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", code)
	assert.Equal(t, "Resource is still in use", msg)

	missing := &pgconn.PgError{Code: "23503", Detail: `Key (partner_id)=(99) is not present in table "partners".`}
	status, code, _ = httpx.Classify(Translate(fmt.Errorf("insert client: %w", missing)))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", code)

	other := errors.New("connection reset")
	assert.Equal(t, other, Translate(other))
	assert.False(t, IsUniqueViolation(other))
}

func TestUpdatesStatement(t *testing.T) {
	var u Updates
	assert.True(t, u.Empty())
	u.Set("name", "Acme")
	u.Set("is_active", false)

	sql, args := u.Statement("clients", 9)
	assert.Equal(t, "UPDATE clients SET name = $1, is_active = $2, updated_at = NOW() WHERE id = $3", sql)
	assert.Equal(t, []any{"Acme", false, int64(9)}, args)
	assert.False(t, u.Empty())
}
