// Package pagination computes offsets and page metadata for list endpoints.
package pagination

// Defaults and limits applied to list queries.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Meta describes the position of a page within a result set.
type Meta struct {
	CurrentPage     int  `json:"current_page"`
	TotalPages      int  `json:"total_pages"`
	TotalItems      int  `json:"total_items"`
	ItemsPerPage    int  `json:"items_per_page"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// Result is one page of T plus its metadata.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// ValidateParams falls back to defaults for out-of-range values.
// A limit above MaxLimit falls back to DefaultLimit, not to MaxLimit.
func ValidateParams(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return page, limit
}

// Offset returns the row offset of page. page must be >= 1.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// NewResult wraps data with metadata derived from page, limit and total.
func NewResult[T any](data []T, page, limit, total int) Result[T] {
	if data == nil {
		data = make([]T, 0)
	}
	totalPages := TotalPages(total, limit)
	return Result[T]{
		Data: data,
		Pagination: Meta{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalItems:      total,
			ItemsPerPage:    limit,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}
