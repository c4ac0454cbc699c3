package listing

import (
	"context"
	"net/url"
	"strconv"

	"qcr/internal/session"
)

// Source is a filterable, sortable record set.
type Source[T any] interface {
	Count(ctx context.Context, p Predicate) (int, error)
	Fetch(ctx context.Context, p Predicate, s Sort, limit, offset int) ([]T, error)
}

// Result is a render-ready page of a list view.
type Result[T any] struct {
	Items         []T
	Page          Page
	Sort          Sort
	NextDirection Direction
	Filters       map[string]string
}

// List resolves filters, sort and page for e, queries src and returns the
// page with the updated session state. On error the input state is returned
// unchanged.
func List[T any](ctx context.Context, e Entity, src Source[T], st session.State, q url.Values) (Result[T], session.State, error) {
	out, pred := ResolveFilters(e, st, q)
	out, sort := ResolveSort(e, out, q)

	pageKey := e.key("page")
	raw := out[pageKey]
	switch {
	case q.Has(ParamPage):
		raw = q.Get(ParamPage)
	case touchesFilters(q):
		raw = "1"
	}

	total, err := src.Count(ctx, pred)
	if err != nil {
		return Result[T]{}, st, err
	}
	page := Paginate(total, ParsePage(raw), PageSize)
	out[pageKey] = strconv.Itoa(page.Number)

	items, err := src.Fetch(ctx, pred, sort, page.Size, page.Offset)
	if err != nil {
		return Result[T]{}, st, err
	}
	if items == nil {
		items = []T{}
	}

	return Result[T]{
		Items:         items,
		Page:          page,
		Sort:          sort,
		NextDirection: sort.Direction.Next(),
		Filters:       FilterValues(e, out),
	}, out, nil
}

// Current returns the predicate and sort stored for e without changing
// anything. Exports use it to reproduce what the list view shows.
func Current(e Entity, st session.State) (Predicate, Sort) {
	_, pred := ResolveFilters(e, st, nil)
	_, sort := ResolveSort(e, st, nil)
	return pred, sort
}
