package screen

import "github.com/tormodhaugland/lastimport/internal/model"

const DefaultPageSize = 10

// Pager exposes one page of the stock rows at a time. The current page is
// always valid for the current source: out of range requests are clamped.
type Pager struct {
	rows     []model.Stock
	page     int
	pageSize int
}

func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

// SetSource replaces the rows and re-clamps the current page.
func (p *Pager) SetSource(rows []model.Stock) {
	p.rows = rows
	p.clamp()
}

// Page returns rows[pageIndex*pageSize : pageIndex*pageSize+pageSize],
// cut to the available rows.
func (p *Pager) Page(pageIndex, pageSize int) []model.Stock {
	if pageSize <= 0 || len(p.rows) == 0 {
		return []model.Stock{}
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	// compare before multiplying so huge indices cannot overflow
	if pageIndex > (len(p.rows)-1)/pageSize {
		return []model.Stock{}
	}
	start := pageIndex * pageSize
	end := len(p.rows)
	if pageSize < end-start {
		end = start + pageSize
	}
	return p.rows[start:end:end]
}

// PageCount is ceil(len/pageSize) but never less than 1, so an empty
// table still has a page to show.
func (p *Pager) PageCount(pageSize int) int {
	if pageSize <= 0 || len(p.rows) == 0 {
		return 1
	}
	return (len(p.rows)-1)/pageSize + 1
}

func (p *Pager) CurrentPage() int { return p.page }
func (p *Pager) PageSize() int    { return p.pageSize }
func (p *Pager) Len() int         { return len(p.rows) }
func (p *Pager) Offset() int      { return p.page * p.pageSize }
func (p *Pager) TotalPages() int  { return p.PageCount(p.pageSize) }

// Rows returns the current page.
func (p *Pager) Rows() []model.Stock {
	return p.Page(p.page, p.pageSize)
}

func (p *Pager) SetPage(i int) {
	p.page = i
	p.clamp()
}

func (p *Pager) NextPage() bool {
	before := p.page
	p.SetPage(p.page + 1)
	return p.page != before
}

func (p *Pager) PrevPage() bool {
	before := p.page
	p.SetPage(p.page - 1)
	return p.page != before
}

func (p *Pager) FirstPage() { p.SetPage(0) }
func (p *Pager) LastPage()  { p.SetPage(p.TotalPages() - 1) }

// SetPageSize changes the page size, keeping the first visible row on
// the new current page.
func (p *Pager) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	offset := p.Offset()
	p.pageSize = n
	p.page = offset / n
	p.clamp()
}

func (p *Pager) clamp() {
	last := p.TotalPages() - 1
	if p.page > last {
		p.page = last
	}
	if p.page < 0 {
		p.page = 0
	}
}
