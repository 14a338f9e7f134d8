package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement; satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder is what mutating services depend on.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Logger writes records into audit_logs.
type Logger struct {
	exec Execer
}

// NewLogger returns a new Logger.
func NewLogger(exec Execer) *Logger {
	return &Logger{exec: exec}
}

// Record persists the entry.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	if l == nil || l.exec == nil {
		return errors.New("audit logger not initialised")
	}
	return Write(ctx, l.exec, e)
}

// Write persists e through exec, letting callers join an open transaction.
func Write(ctx context.Context, exec Execer, e Entry) error {
	if e.Action == "" || e.Entity == "" || e.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(e.Meta)
	if err != nil {
		return err
	}
	var at any
	if !e.At.IsZero() {
		at = e.At.UTC()
	}
	_, err = exec.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))`,
		e.ActorID, e.Action, e.Entity, e.EntityID, metaJSON, at)
	return err
}
