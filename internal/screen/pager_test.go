package screen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/lastimport/internal/model"
)

func TestPagerSingleStockScenario(t *testing.T) {
	p := NewPager(10)
	aaa := stock("AAA",
		model.Indicator{Name: "preco_atual", Value: 10.5},
		model.Indicator{Name: "_id", Value: "x"},
	)
	p.SetSource([]model.Stock{aaa})

	page := p.Page(0, 10)
	require.Len(t, page, 1)
	assert.Equal(t, "AAA", page[0].Code)
	assert.Equal(t, 1, p.PageCount(10))
}

func TestPagerEmptySource(t *testing.T) {
	p := NewPager(10)
	p.SetSource([]model.Stock{})

	for _, size := range []int{1, 3, 10, 100} {
		assert.Equal(t, 1, p.PageCount(size), "pageCount(%d)", size)
		assert.Empty(t, p.Page(0, size), "page(0, %d)", size)
	}
	assert.Equal(t, 0, p.CurrentPage())
	assert.Equal(t, 0, p.Offset())
}

func TestPagerPagesCoverAllRows(t *testing.T) {
	for n := 0; n <= 37; n++ {
		for size := 1; size <= 12; size++ {
			p := NewPager(size)
			p.SetSource(numbered(n))

			total := 0
			for i := 0; i < p.PageCount(size); i++ {
				page := p.Page(i, size)
				if len(page) > size {
					t.Fatalf("n=%d size=%d: page %d has %d rows", n, size, i, len(page))
				}
				total += len(page)
			}
			if total != n {
				t.Fatalf("n=%d size=%d: pages hold %d rows", n, size, total)
			}
		}
	}
}

func TestPagerPageClampsRequests(t *testing.T) {
	p := NewPager(2)
	p.SetSource(stocks("A", "B", "C"))

	assert.Equal(t, []string{"C"}, codes(p.Page(1, 2)))
	assert.Empty(t, p.Page(2, 2), "start past the end")
	assert.Equal(t, []string{"A", "B"}, codes(p.Page(-4, 2)), "negative index clamps to 0")
	assert.Empty(t, p.Page(0, 0))
	assert.Equal(t, 1, p.PageCount(0))
}

func TestPagerPageHugeIndex(t *testing.T) {
	p := NewPager(10)
	p.SetSource(numbered(25))

	tests := []struct {
		index, size int
	}{
		{math.MaxInt/2 + 1, 3},
		{math.MaxInt/4 + 1, 8},
		{math.MaxInt, 1},
		{1, math.MaxInt},
	}
	for _, tt := range tests {
		assert.NotPanics(t, func() {
			assert.Empty(t, p.Page(tt.index, tt.size), "Page(%d, %d)", tt.index, tt.size)
		})
	}

	assert.Len(t, p.Page(0, math.MaxInt), 25)
	assert.Equal(t, 1, p.PageCount(math.MaxInt))
}

func TestPagerNavigation(t *testing.T) {
	p := NewPager(2)
	p.SetSource(stocks("A", "B", "C", "D", "E"))
	assert.Equal(t, 3, p.TotalPages())

	assert.False(t, p.PrevPage())
	assert.True(t, p.NextPage())
	assert.Equal(t, []string{"C", "D"}, codes(p.Rows()))
	assert.True(t, p.NextPage())
	assert.False(t, p.NextPage(), "already on last page")
	assert.Equal(t, []string{"E"}, codes(p.Rows()))

	p.FirstPage()
	assert.Equal(t, 0, p.CurrentPage())
	p.LastPage()
	assert.Equal(t, 2, p.CurrentPage())

	p.SetPage(99)
	assert.Equal(t, 2, p.CurrentPage())
	p.SetPage(-1)
	assert.Equal(t, 0, p.CurrentPage())
}

func TestPagerSetSourceReclamps(t *testing.T) {
	p := NewPager(10)
	p.SetSource(numbered(35))
	p.LastPage()
	require.Equal(t, 3, p.CurrentPage())
	require.Equal(t, 30, p.Offset())

	p.SetSource(numbered(12))
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, 10, p.Offset())

	p.SetSource(nil)
	assert.Equal(t, 0, p.CurrentPage())
	assert.Equal(t, 0, p.Offset())
}

func TestPagerOffsetAlwaysOnPageBoundary(t *testing.T) {
	p := NewPager(4)
	for _, n := range []int{0, 1, 4, 5, 17, 3, 0, 9} {
		p.SetSource(numbered(n))
		p.SetPage(n)
		off := p.Offset()
		limit := n
		if limit < 1 {
			limit = 1
		}
		assert.Zero(t, off%p.PageSize(), "offset multiple of page size (n=%d)", n)
		assert.GreaterOrEqual(t, off, 0)
		assert.Less(t, off, limit, "offset within rows (n=%d)", n)
	}
}

func TestPagerSetPageSizeKeepsFirstRow(t *testing.T) {
	p := NewPager(10)
	p.SetSource(numbered(50))
	p.SetPage(3)
	require.Equal(t, 30, p.Offset())

	p.SetPageSize(25)
	assert.Equal(t, 1, p.CurrentPage())
	assert.Equal(t, 25, p.Offset())

	p.SetPageSize(0)
	assert.Equal(t, DefaultPageSize, p.PageSize())
}

func TestNewPagerDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewPager(0).PageSize())
	assert.Equal(t, DefaultPageSize, NewPager(-5).PageSize())
}

func codes(rows []model.Stock) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Code
	}
	return out
}
