package audit

import (
	"context"
	"fmt"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// WindowReader is the query port behind Service.
type WindowReader interface {
	Window(ctx context.Context, f TimelineFilters, offset, limit int) ([]Entry, error)
}

// Service pages through the audit log.
type Service struct {
	repo WindowReader
}

// NewService creates a new audit timeline service.
func NewService(repo WindowReader) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of entries. It fetches one extra row to detect a
// following page.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	rows, err := s.repo.Window(ctx, filters, (page-1)*pageSize, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []Entry{}
	}
	return Result{Rows: rows, Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}}, nil
}
