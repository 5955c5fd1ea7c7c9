package catalog

// Pagination describes the position of a page within the full result.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination derives page metadata. limit must be positive.
func NewPagination(page, limit int, total int64) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = DefaultPage
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:            page,
		Limit:           limit,
		TotalCount:      total,
		TotalPages:      pages,
		HasNextPage:     page < pages,
		HasPreviousPage: page > 1,
	}
}

// SearchResult is the response body of a catalog search.
type SearchResult struct {
	Sellers    []SellerView `json:"sellers"`
	Pagination Pagination   `json:"pagination"`
}
