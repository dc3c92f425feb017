package store

const (
	DefaultSessionPageSize = 20
	DefaultMessagePageSize = 50
)

// Pagination selects one page of an ordered listing. Page is 1-based.
type Pagination struct {
	Page int
	Size int
}

// Normalize clamps page and size to at least 1.
func (p *Pagination) Normalize() {
	p.Page = max(p.Page, 1)
	p.Size = max(p.Size, 1)
}

// Limit returns the SQL LIMIT for the page.
func (p *Pagination) Limit() int {
	return max(p.Size, 1)
}

// Offset returns the SQL OFFSET for the page.
func (p *Pagination) Offset() int {
	return (max(p.Page, 1) - 1) * max(p.Size, 1)
}
