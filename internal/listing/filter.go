package listing

import (
	"net/url"
	"strings"

	"qcr/internal/session"
	"qcr/internal/validation"
)

// Condition is one term of a Predicate. Upper is only set for OpBetween.
type Condition struct {
	Field string
	Op    Op
	Value string
	Upper string
}

// Predicate is the conjunction of its conditions. An empty Predicate
// matches every record.
type Predicate []Condition

// ResolveFilters applies search parameters to the stored filter values of e
// and returns the new state with the predicate it describes. The input state
// is not modified.
func ResolveFilters(e Entity, st session.State, q url.Values) (session.State, Predicate) {
	out := st.Clone()
	cleared := q.Has(ParamClear)

	var pred Predicate
	for _, f := range e.Filters {
		k := e.key(f.Name)
		switch {
		case cleared:
			out[k] = ""
		case q.Has(SearchPrefix + f.Name):
			out[k] = strings.TrimSpace(q.Get(SearchPrefix + f.Name))
		}
		if v := out[k]; v != "" {
			pred = append(pred, Condition{Field: f.Name, Op: f.Op, Value: v})
		}
	}

	if e.DateField == "" {
		return out, pred
	}

	start := resolveDate(out[e.key("start_date")], MinDate, cleared, q, ParamStartDate)
	end := resolveDate(out[e.key("end_date")], MaxDate, cleared, q, ParamEndDate)
	out[e.key("start_date")] = start
	out[e.key("end_date")] = end
	if start != MinDate || end != MaxDate {
		pred = append(pred, Condition{Field: e.DateField, Op: OpBetween, Value: start, Upper: end})
	}
	return out, pred
}

// resolveDate keeps the stored bound unless the request clears or replaces
// it. An unparsable replacement is ignored.
func resolveDate(stored, sentinel string, cleared bool, q url.Values, param string) string {
	if cleared {
		return sentinel
	}
	if q.Has(param) {
		v := strings.TrimSpace(q.Get(param))
		if v == "" {
			return sentinel
		}
		if validation.IsDate(v) {
			return v
		}
	}
	if stored == "" || !validation.IsDate(stored) {
		return sentinel
	}
	return stored
}

// FilterValues returns the current filter values of e keyed by field name.
func FilterValues(e Entity, st session.State) map[string]string {
	values := make(map[string]string, len(e.Filters)+2)
	for _, f := range e.Filters {
		values[f.Name] = st.Get(e.key(f.Name))
	}
	if e.DateField != "" {
		values["start_date"] = st.Get(e.key("start_date"))
		values["end_date"] = st.Get(e.key("end_date"))
	}
	return values
}

// touchesFilters reports whether q changes any filter.
func touchesFilters(q url.Values) bool {
	if q.Has(ParamClear) {
		return true
	}
	for k := range q {
		if strings.HasPrefix(k, SearchPrefix) || k == ParamStartDate || k == ParamEndDate {
			return true
		}
	}
	return false
}
