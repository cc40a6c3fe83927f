package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes the page count for total items at size per page.
// Page is clamped to at least one.
func NewPagination(page, size, total int) Pagination {
	if page < 1 {
		page = 1
	}
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{Page: page, PageSize: size, TotalCount: total, TotalPages: pages}
}

// Bounds returns the slice bounds of the current page within total items.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PageSize
	if start > p.TotalCount {
		start = p.TotalCount
	}
	end = start + p.PageSize
	if end > p.TotalCount {
		end = p.TotalCount
	}
	return start, end
}
