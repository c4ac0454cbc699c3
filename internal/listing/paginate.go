package listing

import (
	"strconv"
	"strings"
)

const (
	PageSize     = 10
	MaxPageLinks = 20
)

// Page is one slice of a record set plus the links shown around it.
type Page struct {
	Number int   `json:"page"`
	Pages  int   `json:"pages"`
	Total  int   `json:"total"`
	Size   int   `json:"limit"`
	Offset int   `json:"-"`
	Links  []int `json:"pages_range"`
}

// ParsePage returns the page number in raw, or 1 when raw is not a
// positive integer.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate clamps requested into [1, pages] for total records. An empty set
// still has one page.
func Paginate(total, requested, size int) Page {
	if size < 1 {
		size = PageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	n := requested
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}
	return Page{
		Number: n,
		Pages:  pages,
		Total:  total,
		Size:   size,
		Offset: (n - 1) * size,
		Links:  PageLinks(n, pages),
	}
}

// PageLinks returns a window of min(pages, MaxPageLinks) contiguous page
// numbers inside [1, pages] around current.
func PageLinks(current, pages int) []int {
	if pages < 1 {
		pages = 1
	}
	first, last := 1, pages
	if pages > MaxPageLinks {
		half := MaxPageLinks / 2
		switch {
		case current <= half:
			first, last = 1, MaxPageLinks
		case current >= pages-half:
			first, last = pages-MaxPageLinks+1, pages
		default:
			first, last = current-half, current+half-1
		}
	}
	links := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		links = append(links, i)
	}
	return links
}
