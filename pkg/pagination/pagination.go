// Package pagination turns a raw page query value into a bounded page window.
package pagination

import (
	"strconv"

	"anoa.com/devsearch/pkg/dto"
)

const (
	ProjectsPerPage = 6
	ProfilesPerPage = 3

	// pages shown on either side of the current page
	windowBefore = 4
	windowAfter  = 5
)

// Page is the resolved position inside a result set.
type Page struct {
	Number   int
	NumPages int
	Limit    int
	Total    int64
}

// Resolve interprets raw the way the listing pages do: anything that is not
// an integer is page 1 and any integer outside 1..NumPages is the last page.
// An empty result still has one page.
func Resolve(raw string, total int64, limit int) Page {
	if limit < 1 {
		limit = 1
	}
	numPages := int((total + int64(limit) - 1) / int64(limit))
	if numPages < 1 {
		numPages = 1
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		page = 1
	}
	if page < 1 || page > numPages {
		page = numPages
	}

	return Page{Number: page, NumPages: numPages, Limit: limit, Total: total}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// CustomRange is the half-open window [max(1, page-4), min(numPages+1, page+5)).
func (p Page) CustomRange() []int {
	left := p.Number - windowBefore
	if left < 1 {
		left = 1
	}
	right := p.Number + windowAfter
	if right > p.NumPages+1 {
		right = p.NumPages + 1
	}

	out := make([]int, 0, right-left)
	for i := left; i < right; i++ {
		out = append(out, i)
	}
	return out
}

func (p Page) Meta() dto.PaginationMeta {
	return dto.PaginationMeta{
		CurrentPage: p.Number,
		TotalPages:  p.NumPages,
		TotalItems:  p.Total,
		Limit:       p.Limit,
		CustomRange: p.CustomRange(),
	}
}
