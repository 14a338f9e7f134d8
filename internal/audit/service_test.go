package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
)

type stubWindow struct {
	rows   []Entry
	offset int
	limit  int
}

func (s *stubWindow) Window(ctx context.Context, f TimelineFilters, offset, limit int) ([]Entry, error) {
	s.offset, s.limit = offset, limit
	if len(s.rows) > limit {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubWindow{rows: make([]Entry, 30)}
	svc := NewService(repo)

	res, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.offset)
	assert.Equal(t, 11, repo.limit)
	assert.Len(t, res.Rows, 10)
	assert.True(t, res.Paging.HasNext)

	res, err = svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.offset)
	assert.Equal(t, maxPageSize+1, repo.limit)
	assert.False(t, res.Paging.HasNext)
	assert.Equal(t, 1, res.Paging.Page)
}

func TestTimelineEmpty(t *testing.T) {
	res, err := NewService(&stubWindow{}).Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Equal(t, defaultPageSize, res.Paging.PageSize)

	_, err = NewService(nil).Timeline(context.Background(), TimelineFilters{})
	assert.Error(t, err)
}

type recordingExec struct {
	sql  string
	args []any
	err  error
}

func (r *recordingExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestLoggerRecord(t *testing.T) {
	exec := &recordingExec{}
	logger := NewLogger(exec)

	err := logger.Record(context.Background(), Entry{ActorID: 3, Action: "role.create", Entity: "role", EntityID: "12", Meta: map[string]any{"name": "auditor"}})
	require.NoError(t, err)
	assert.Contains(t, exec.sql, "INSERT INTO audit_logs")
	assert.Equal(t, int64(3), exec.args[0])
	assert.JSONEq(t, `{"name":"auditor"}`, string(exec.args[4].([]byte)))
	assert.Nil(t, exec.args[5])

	assert.Error(t, logger.Record(context.Background(), Entry{Action: "role.create"}))

	exec.err = errors.New("boom")
	assert.Error(t, logger.Record(context.Background(), Entry{Action: "a", Entity: "b", EntityID: "c"}))

	var nilLogger *Logger
	assert.Error(t, nilLogger.Record(context.Background(), Entry{}))
}

func TestParseFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/audit-logs?from=2026-01-01&to=2026-02-01T00:00:00Z&actor_id=7&entity=role&page=2&per_page=5", nil)
	f, err := parseFilters(req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.ActorID)
	assert.Equal(t, "role", f.Entity)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.PageSize)
	assert.Equal(t, 2026, f.From.Year())

	_, err = parseFilters(httptest.NewRequest(http.MethodGet, "/audit-logs?from=2026-02-01&to=2026-01-01", nil))
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = parseFilters(httptest.NewRequest(http.MethodGet, "/audit-logs?actor_id=x", nil))
	assert.ErrorIs(t, err, httpx.ErrValidation)
}
