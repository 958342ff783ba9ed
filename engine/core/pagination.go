package core

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// PageRequest carries page/limit query parameters for list endpoints.
type PageRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize clamps the request to the supported window.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the row offset for the normalized request.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Page wraps a list response with its pagination envelope.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// NewPage assembles a page envelope from a normalized request.
func NewPage[T any](data []T, req PageRequest, total int64) Page[T] {
	n := req.Normalize()
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Page: n.Page, Limit: n.Limit, Total: total}
}
