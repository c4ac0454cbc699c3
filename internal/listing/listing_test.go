package listing_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"qcr/internal/listing"
	"qcr/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		current   int
		pages     int
		wantFirst int
		wantLast  int
	}{
		{"single page", 1, 1, 1, 1},
		{"fewer than window", 3, 7, 1, 7},
		{"exactly window", 20, 20, 1, 20},
		{"head of long list", 1, 50, 1, 20},
		{"edge of head", 10, 50, 1, 20},
		{"middle", 11, 50, 1, 20},
		{"deep middle", 25, 50, 15, 34},
		{"edge of tail", 40, 50, 31, 50},
		{"tail", 50, 50, 31, 50},
		{"just past window", 11, 21, 2, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			links := listing.PageLinks(tt.current, tt.pages)
			require.NotEmpty(t, links)
			assert.Equal(t, tt.wantFirst, links[0])
			assert.Equal(t, tt.wantLast, links[len(links)-1])
			assert.Len(t, links, min(tt.pages, listing.MaxPageLinks))
		})
	}
}

func TestPageLinksWindow(t *testing.T) {
	t.Parallel()
	for pages := 1; pages <= 60; pages++ {
		for current := 1; current <= pages; current++ {
			links := listing.PageLinks(current, pages)
			require.Len(t, links, min(pages, listing.MaxPageLinks), "pages=%d current=%d", pages, current)
			assert.GreaterOrEqual(t, links[0], 1)
			assert.LessOrEqual(t, links[len(links)-1], pages)
			assert.Contains(t, links, current)
			for i := 1; i < len(links); i++ {
				require.Equal(t, links[i-1]+1, links[i])
			}
		}
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, listing.ParsePage(""))
	assert.Equal(t, 1, listing.ParsePage("abc"))
	assert.Equal(t, 1, listing.ParsePage("0"))
	assert.Equal(t, 1, listing.ParsePage("-4"))
	assert.Equal(t, 7, listing.ParsePage("7"))
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	p := listing.Paginate(0, 5, listing.PageSize)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.Pages)
	assert.Equal(t, []int{1}, p.Links)

	p = listing.Paginate(95, 42, listing.PageSize)
	assert.Equal(t, 10, p.Number)
	assert.Equal(t, 10, p.Pages)
	assert.Equal(t, 90, p.Offset)

	p = listing.Paginate(100, 3, listing.PageSize)
	assert.Equal(t, 20, p.Offset)
	assert.Equal(t, 10, p.Size)
}

func TestResolveFiltersSearchAndClear(t *testing.T) {
	t.Parallel()

	q := url.Values{"search-client_name": {"  Acme "}, "search-client_sap_id": {"234"}}
	st, pred := listing.ResolveFilters(listing.Clients, session.State{}, q)
	assert.Equal(t, "Acme", st.Get("client:client_name"))
	assert.Equal(t, listing.Predicate{
		{Field: "client_sap_id", Op: listing.OpContains, Value: "234"},
		{Field: "client_name", Op: listing.OpContains, Value: "Acme"},
	}, pred)

	// stored values persist across requests without parameters
	_, pred = listing.ResolveFilters(listing.Clients, st, url.Values{})
	assert.Len(t, pred, 2)

	// clear wins over a search in the same request
	q = url.Values{"clear_filters": {""}, "search-client_name": {"Other"}}
	cleared, pred := listing.ResolveFilters(listing.Clients, st, q)
	assert.Empty(t, pred)
	assert.Equal(t, "", cleared.Get("client:client_name"))
	assert.Equal(t, "", cleared.Get("client:client_sap_id"))
	assert.Equal(t, "Acme", st.Get("client:client_name"), "input state must not change")
}

func TestResolveFiltersEmptyValueIsNoConstraint(t *testing.T) {
	t.Parallel()
	st := session.State{"product:index": "A-1"}
	st, pred := listing.ResolveFilters(listing.Products, st, url.Values{"search-index": {""}})
	assert.Empty(t, pred)
	assert.Equal(t, "", st.Get("product:index"))
}

func TestResolveFiltersDateRange(t *testing.T) {
	t.Parallel()

	st, pred := listing.ResolveFilters(listing.Orders, nil, url.Values{})
	assert.Empty(t, pred)
	assert.Equal(t, listing.MinDate, st.Get("order:start_date"))
	assert.Equal(t, listing.MaxDate, st.Get("order:end_date"))

	st, pred = listing.ResolveFilters(listing.Orders, st, url.Values{"search_start_date": {"2024-01-01"}})
	require.Len(t, pred, 1)
	assert.Equal(t, listing.Condition{Field: "date_of_production", Op: listing.OpBetween, Value: "2024-01-01", Upper: listing.MaxDate}, pred[0])

	// invalid bound ignored, stored one kept
	st, _ = listing.ResolveFilters(listing.Orders, st, url.Values{"search_start_date": {"yesterday"}})
	assert.Equal(t, "2024-01-01", st.Get("order:start_date"))

	// empty bound resets to sentinel
	st, pred = listing.ResolveFilters(listing.Orders, st, url.Values{"search_start_date": {""}})
	assert.Equal(t, listing.MinDate, st.Get("order:start_date"))
	assert.Empty(t, pred)
}

func TestResolveFiltersStatusIsExact(t *testing.T) {
	t.Parallel()
	_, pred := listing.ResolveFilters(listing.Orders, nil, url.Values{"search-status": {"open"}})
	require.Len(t, pred, 1)
	assert.Equal(t, listing.OpEqualFold, pred[0].Op)
}

func TestResolveSort(t *testing.T) {
	t.Parallel()

	st, s := listing.ResolveSort(listing.Orders, nil, url.Values{})
	assert.Equal(t, listing.Sort{Key: "id", Direction: listing.Asc}, s)

	st, s = listing.ResolveSort(listing.Orders, st, url.Values{"sort_by": {"client_name"}, "order_by": {"desc"}})
	assert.Equal(t, listing.Sort{Key: "client_name", Direction: listing.Desc}, s)
	assert.Equal(t, listing.Asc, s.Direction.Next())

	// non-whitelisted key leaves the stored key in place
	st, s = listing.ResolveSort(listing.Orders, st, url.Values{"sort_by": {"password_hash"}, "order_by": {"sideways"}})
	assert.Equal(t, listing.Sort{Key: "client_name", Direction: listing.Desc}, s)

	// clear wins
	_, s = listing.ResolveSort(listing.Orders, st, url.Values{"clear_filters": {"1"}, "sort_by": {"status"}, "order_by": {"desc"}})
	assert.Equal(t, listing.Sort{Key: "id", Direction: listing.Asc}, s)
	assert.Equal(t, listing.Desc, s.Direction.Next())
}

func TestResolveSortResetsInvalidStoredKey(t *testing.T) {
	t.Parallel()
	// a key valid for orders is not valid for clients
	st, s := listing.ResolveSort(listing.Clients, session.State{"client:sort_by": "date_of_production"}, nil)
	assert.Equal(t, "id", s.Key)
	assert.Equal(t, "id", st.Get("client:sort_by"))
}

type fakeSource struct {
	items    []int
	gotPred  listing.Predicate
	gotSort  listing.Sort
	gotLimit int
	gotOff   int
	err      error
}

func (f *fakeSource) Count(_ context.Context, p listing.Predicate) (int, error) {
	f.gotPred = p
	return len(f.items), f.err
}

func (f *fakeSource) Fetch(_ context.Context, p listing.Predicate, s listing.Sort, limit, offset int) ([]int, error) {
	f.gotSort, f.gotLimit, f.gotOff = s, limit, offset
	end := min(offset+limit, len(f.items))
	return f.items[offset:end], nil
}

func newFake(n int) *fakeSource {
	f := &fakeSource{}
	for i := 1; i <= n; i++ {
		f.items = append(f.items, i)
	}
	return f
}

func TestListPersistsPage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newFake(35)

	res, st, err := listing.List[int](ctx, listing.Clients, src, nil, url.Values{"page": {"3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Number)
	assert.Equal(t, []int{21, 22, 23, 24, 25, 26, 27, 28, 29, 30}, res.Items)
	assert.Equal(t, "3", st.Get("client:page"))

	// no page param reuses the stored page
	res, st, err = listing.List[int](ctx, listing.Clients, src, st, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Number)

	// a filter change resets to page 1
	res, st, err = listing.List[int](ctx, listing.Clients, src, st, url.Values{"search-client_name": {"x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.Number)
	assert.Equal(t, "1", st.Get("client:page"))
}

func TestListNonNumericPage(t *testing.T) {
	t.Parallel()
	res, _, err := listing.List[int](context.Background(), listing.Clients, newFake(35), nil, url.Values{"page": {"abc"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.Number)
	assert.Equal(t, listing.Desc, res.NextDirection)
}

func TestListClampsBeyondLastPage(t *testing.T) {
	t.Parallel()
	res, st, err := listing.List[int](context.Background(), listing.Clients, newFake(35), nil, url.Values{"page": {"99"}})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Page.Number)
	assert.Equal(t, []int{31, 32, 33, 34, 35}, res.Items)
	assert.Equal(t, "4", st.Get("client:page"))
}

func TestListErrorKeepsState(t *testing.T) {
	t.Parallel()
	src := newFake(0)
	src.err = errors.New("db down")
	in := session.State{"client:client_name": "keep"}

	_, st, err := listing.List[int](context.Background(), listing.Clients, src, in, url.Values{"clear_filters": {""}})
	require.Error(t, err)
	assert.Equal(t, "keep", st.Get("client:client_name"))
}

func TestListPassesPredicateAndSort(t *testing.T) {
	t.Parallel()
	src := newFake(3)
	res, _, err := listing.List[int](context.Background(), listing.Orders, src, nil,
		url.Values{"search-status": {"Open"}, "sort_by": {"description"}, "order_by": {"desc"}})
	require.NoError(t, err)
	assert.Equal(t, listing.Predicate{{Field: "status", Op: listing.OpEqualFold, Value: "Open"}}, src.gotPred)
	assert.Equal(t, listing.Sort{Key: "description", Direction: listing.Desc}, src.gotSort)
	assert.Equal(t, "Open", res.Filters["status"])
	assert.Equal(t, listing.MinDate, res.Filters["start_date"])
}

func TestCurrentDoesNotMutate(t *testing.T) {
	t.Parallel()
	st := session.State{"order:status": "Done", "order:sort_by": "status", "order:order_by": "desc"}
	pred, s := listing.Current(listing.Orders, st)
	assert.Len(t, pred, 1)
	assert.Equal(t, listing.Sort{Key: "status", Direction: listing.Desc}, s)
	assert.Len(t, st, 3)
}
