package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/partnerhub/partner-crm/internal/platform/db"
)

// ErrIdempotencyConflict indicates a key that was claimed but never completed,
// usually because the first request is still in flight or failed.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

// IdempotencyKey scopes a client-supplied key to a module.
type IdempotencyKey struct {
	Key    string
	Module string
}

func (k IdempotencyKey) valid() error {
	if k.Key == "" {
		return errors.New("idempotency key required")
	}
	if k.Module == "" {
		return errors.New("idempotency module required")
	}
	return nil
}

// Claim reserves k inside the caller's transaction. It returns the resource id
// recorded by a previous completed request with claimed=false, or claimed=true
// when this request owns the key. Concurrent claims block on the unique index
// until the first transaction finishes.
func Claim(ctx context.Context, q db.DBTX, k IdempotencyKey) (resourceID int64, claimed bool, err error) {
	if err := k.valid(); err != nil {
		return 0, false, err
	}
	tag, err := q.Exec(ctx, `INSERT INTO idempotency_keys (key, module, created_at) VALUES ($1, $2, NOW())
ON CONFLICT (module, key) DO NOTHING`, k.Key, k.Module)
	if err != nil {
		return 0, false, err
	}
	if tag.RowsAffected() == 1 {
		return 0, true, nil
	}
	var id *int64
	err = q.QueryRow(ctx, `SELECT resource_id FROM idempotency_keys WHERE module = $1 AND key = $2`, k.Module, k.Key).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, ErrIdempotencyConflict
		}
		return 0, false, err
	}
	if id == nil {
		return 0, false, ErrIdempotencyConflict
	}
	return *id, false, nil
}

// Complete attaches the created resource to a claimed key.
func Complete(ctx context.Context, q db.DBTX, k IdempotencyKey, resourceID int64) error {
	if err := k.valid(); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `UPDATE idempotency_keys SET resource_id = $3 WHERE module = $1 AND key = $2`, k.Module, k.Key, resourceID)
	return err
}

// IdempotencyStore runs maintenance over idempotency_keys.
type IdempotencyStore struct {
	db db.DBTX
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(q db.DBTX) *IdempotencyStore {
	return &IdempotencyStore{db: q}
}

// Cleanup removes entries older than retention.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-olderThan)
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
