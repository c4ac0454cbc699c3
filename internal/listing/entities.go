// Package listing resolves the filter, sort and page of list views from
// request parameters and the user's persisted session state.
package listing

// Op is the comparison a filter applies to its field.
type Op int

const (
	// OpContains is a case-insensitive substring match on the field's text form.
	OpContains Op = iota
	// OpEqualFold is a case-insensitive exact match.
	OpEqualFold
	// OpBetween is an inclusive range on a YYYY-MM-DD date.
	OpBetween
)

// Filter declares one filterable field of an entity.
type Filter struct {
	Name string
	Op   Op
}

// Entity describes what a list view may filter and sort on. Field names are
// abstract; the store maps them onto columns.
type Entity struct {
	Name      string
	Filters   []Filter
	DateField string
	SortKeys  []string
}

// Request parameters understood by every list view.
const (
	ParamClear     = "clear_filters"
	ParamSortBy    = "sort_by"
	ParamOrderBy   = "order_by"
	ParamPage      = "page"
	ParamStartDate = "search_start_date"
	ParamEndDate   = "search_end_date"
	SearchPrefix   = "search-"
)

// Date range sentinels used when no bound is set.
const (
	MinDate = "0001-01-01"
	MaxDate = "9999-12-31"
)

// DefaultSortKey orders by primary key.
const DefaultSortKey = "id"

var Clients = Entity{
	Name: "client",
	Filters: []Filter{
		{Name: "client_sap_id", Op: OpContains},
		{Name: "client_name", Op: OpContains},
	},
	SortKeys: []string{"client_sap_id", "client_name"},
}

var Products = Entity{
	Name: "product",
	Filters: []Filter{
		{Name: "product_sap_id", Op: OpContains},
		{Name: "index", Op: OpContains},
		{Name: "description", Op: OpContains},
	},
	SortKeys: []string{"product_sap_id", "description", "index"},
}

var Orders = Entity{
	Name: "order",
	Filters: []Filter{
		{Name: "order_sap_id", Op: OpContains},
		{Name: "client_name", Op: OpContains},
		{Name: "product_sap_id", Op: OpContains},
		{Name: "description", Op: OpContains},
		{Name: "status", Op: OpEqualFold},
	},
	DateField: "date_of_production",
	SortKeys:  []string{"order_sap_id", "client_name", "product_sap_id", "date_of_production", "status", "description"},
}

func (e Entity) key(name string) string {
	return e.Name + ":" + name
}

// Sortable reports whether key is an accepted sort key for e.
func (e Entity) Sortable(key string) bool {
	if key == DefaultSortKey {
		return true
	}
	for _, k := range e.SortKeys {
		if k == key {
			return true
		}
	}
	return false
}
