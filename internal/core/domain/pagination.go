package domain

const (
	DefaultPageSize       = 20
	NestedAnswersPageSize = 4
)

// PageMeta describes a page of a larger listing.
type PageMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

// PageRequest is a normalised 1-indexed page selector.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest clamps page to >= 1 and falls back to defaultSize for non-positive sizes.
func NewPageRequest(page, perPage, defaultSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultSize
	}
	return PageRequest{Page: page, PerPage: perPage}
}

// Offset is the number of items preceding the page.
func (p PageRequest) Offset() int64 {
	return int64(p.Page-1) * int64(p.PerPage)
}

func (p PageRequest) Meta(total int64) PageMeta {
	return PageMeta{Total: total, CurrentPage: p.Page, PerPage: p.PerPage}
}

// Paginate slices items to the requested page. A page past the end yields an
// empty, non-nil slice; the total is always reported.
func Paginate[T any](items []T, page, perPage int) ([]T, PageMeta) {
	req := NewPageRequest(page, perPage, DefaultPageSize)
	total := len(items)
	start := int(req.Offset())
	if start >= total {
		return []T{}, req.Meta(int64(total))
	}
	end := start + req.PerPage
	if end > total {
		end = total
	}
	return items[start:end], req.Meta(int64(total))
}
