package shared

// Pagination describes the pager of a listing page.
type Pagination struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// NewPagination builds pager data for page out of totalPages.
func NewPagination(page, totalPages int) Pagination {
	if page <= 0 {
		page = 1
	}
	return Pagination{
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Prev is the previous page number.
func (p Pagination) Prev() int {
	if p.Page <= 1 {
		return 1
	}
	return p.Page - 1
}

// Next is the next page number.
func (p Pagination) Next() int {
	if p.Page >= p.TotalPages {
		return p.Page
	}
	return p.Page + 1
}
