package httpx

import (
	"math"
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	maxPage        = math.MaxInt32 / maxPerPage
)

// Page is a requested window of a listing.
type Page struct {
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	return (min(p.Page, maxPage) - 1) * min(p.PerPage, maxPerPage)
}

// ParsePage reads ?page= and ?per_page=, falling back to sane defaults.
func ParsePage(r *http.Request) Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if page <= 0 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Page{Page: page, PerPage: perPage}
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(p Page, total int) Pagination {
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
