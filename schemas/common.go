// common.go - Shared request and response shapes

package schemas

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = 100000 // keeps (page-1)*size far from overflow
)

// PageQuery is the pagination part of a list request.
type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1,max=100000"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in defaults.
func (q PageQuery) Normalize() (page, size int) {
	page, size = q.Page, q.Size
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Paged wraps one page of results.
type Paged[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
}

// NewPaged guarantees records serialize as [] rather than null.
func NewPaged[T any](records []T, total int64, page, size int) Paged[T] {
	if records == nil {
		records = []T{}
	}
	return Paged[T]{Records: records, Total: total, Page: page, Size: size}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID uint `json:"id"`
}

// ModerationRequest changes the moderation state of a comment or message.
type ModerationRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}
