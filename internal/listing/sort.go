package listing

import (
	"net/url"
	"strings"

	"qcr/internal/session"
)

// Direction is the sort direction of a list view.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Next returns the opposite direction, used for column header toggles.
func (d Direction) Next() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

func parseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// Sort is a resolved sort key and direction.
type Sort struct {
	Key       string
	Direction Direction
}

// ResolveSort applies sort parameters to the stored sort of e. Keys outside
// the entity's whitelist are ignored on input and reset to id when found in
// the stored state.
func ResolveSort(e Entity, st session.State, q url.Values) (session.State, Sort) {
	out := st.Clone()
	sortKey, orderKey := e.key("sort_by"), e.key("order_by")

	if q.Has(ParamClear) {
		out[sortKey] = DefaultSortKey
		out[orderKey] = string(Asc)
	} else {
		if v := strings.TrimSpace(q.Get(ParamSortBy)); v != "" && e.Sortable(v) {
			out[sortKey] = v
		}
		if d, ok := parseDirection(q.Get(ParamOrderBy)); ok {
			out[orderKey] = string(d)
		}
	}

	key := out[sortKey]
	if !e.Sortable(key) {
		key = DefaultSortKey
	}
	dir, ok := parseDirection(out[orderKey])
	if !ok {
		dir = Asc
	}
	out[sortKey] = key
	out[orderKey] = string(dir)
	return out, Sort{Key: key, Direction: dir}
}
