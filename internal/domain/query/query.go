package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

// MaxFilters caps the number of filters in a single query.
const MaxFilters = 16

// MaxValueLen caps a single filter value in runes.
const MaxValueLen = 80

// Field is an outlet column a query may reference.
type Field string

// Outlet fields.
const (
	FieldOutletID  Field = "outlet_id"
	FieldName      Field = "name"
	FieldAddress   Field = "address"
	FieldHours     Field = "hours"
	FieldAmenities Field = "amenities"
)

// AllFields lists every outlet field in projection order.
var AllFields = []Field{FieldOutletID, FieldName, FieldAddress, FieldHours, FieldAmenities}

// Operator is a predicate kind applied to a field.
type Operator string

// Operators.
const (
	OpEquals     Operator = "eq"
	OpSubstring  Operator = "substring"
	OpOverlap    Operator = "overlap"
	OpMembership Operator = "membership"
)

// Window is an hours predicate: open at some minute of Interval on any of Days.
// No days means any day.
type Window struct {
	Days     []outlet.Day
	Interval outlet.Interval
}

func (w Window) String() string {
	days := make([]string, len(w.Days))
	for i, d := range w.Days {
		days[i] = d.String()
	}
	if len(days) == 0 {
		days = []string{"any day"}
	}
	return strings.Join(days, "|") + " " + w.Interval.String()
}

// Filter is one (field, operator, value) entry.
type Filter struct {
	field  Field
	op     Operator
	values []string
	window Window
}

// NewEquals creates an exact (case-insensitive for text) match.
func NewEquals(field Field, value string) (Filter, error) {
	vals, err := cleanValues(field, []string{value})
	if err != nil {
		return Filter{}, err
	}
	return Filter{field: field, op: OpEquals, values: vals}, nil
}

// NewSubstring matches when the field contains any of the alternatives.
func NewSubstring(field Field, alternatives ...string) (Filter, error) {
	vals, err := cleanValues(field, alternatives)
	if err != nil {
		return Filter{}, err
	}
	return Filter{field: field, op: OpSubstring, values: vals}, nil
}

// NewMembership matches when the field set contains any of the values.
func NewMembership(field Field, values ...string) (Filter, error) {
	vals, err := cleanValues(field, values)
	if err != nil {
		return Filter{}, err
	}
	return Filter{field: field, op: OpMembership, values: vals}, nil
}

// NewOverlap matches when the hours overlap the window.
func NewOverlap(field Field, w Window) (Filter, error) {
	if w.Interval.Open < 0 || w.Interval.Close <= w.Interval.Open {
		return Filter{}, fmt.Errorf("%w: empty hours window for %s", domain.ErrInvalidArgument, field)
	}
	for _, d := range w.Days {
		if !d.Valid() {
			return Filter{}, fmt.Errorf("%w: invalid day %d", domain.ErrInvalidArgument, int(d))
		}
	}
	days := make([]outlet.Day, len(w.Days))
	copy(days, w.Days)
	return Filter{field: field, op: OpOverlap, window: Window{Days: days, Interval: w.Interval}}, nil
}

func cleanValues(field Field, raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if len([]rune(v)) > MaxValueLen {
			return nil, fmt.Errorf("%w: value for %s exceeds %d characters",
				domain.ErrInvalidArgument, field, MaxValueLen)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s filter needs a value", domain.ErrInvalidArgument, field)
	}
	return out, nil
}

// Field returns the filtered field.
func (f Filter) Field() Field { return f.field }

// Operator returns the predicate kind.
func (f Filter) Operator() Operator { return f.op }

// Values returns the text values (alternatives for substring, members for membership).
func (f Filter) Values() []string { return f.values }

// Window returns the hours window of an overlap filter.
func (f Filter) Window() Window { return f.window }

func (f Filter) String() string {
	if f.op == OpOverlap {
		return fmt.Sprintf("(%s %s %s)", f.field, f.op, f.window)
	}
	return fmt.Sprintf("(%s %s %q)", f.field, f.op, strings.Join(f.values, "|"))
}

// Query is a validated-shape, schema-bound outlet query: ordered filters ANDed
// together plus the fields to return.
type Query struct {
	filters    []Filter
	projection []Field
}

// New builds a query. At least one filter is required so that an empty query
// is never mistaken for a full-table scan. An empty projection returns every field.
func New(filters []Filter, projection ...Field) (Query, error) {
	if len(filters) == 0 {
		return Query{}, fmt.Errorf("%w: no filters", domain.ErrUnsupportedQuery)
	}
	if len(filters) > MaxFilters {
		return Query{}, fmt.Errorf("%w: too many filters (max %d)", domain.ErrInvalidArgument, MaxFilters)
	}
	fs := make([]Filter, len(filters))
	copy(fs, filters)

	var proj []Field
	seen := make(map[Field]bool, len(projection))
	for _, p := range projection {
		if !seen[p] {
			seen[p] = true
			proj = append(proj, p)
		}
	}
	return Query{filters: fs, projection: proj}, nil
}

// Filters returns the ordered filters.
func (q Query) Filters() []Filter { return q.filters }

// Projection returns the requested fields; empty means all.
func (q Query) Projection() []Field { return q.projection }

// Projects reports whether field is returned. The outlet id is always returned.
func (q Query) Projects(field Field) bool {
	if len(q.projection) == 0 || field == FieldOutletID {
		return true
	}
	for _, p := range q.projection {
		if p == field {
			return true
		}
	}
	return false
}

// Pairs returns "field:operator" for every filter, for audit logging.
func (q Query) Pairs() []string {
	out := make([]string, len(q.filters))
	for i, f := range q.filters {
		out[i] = string(f.field) + ":" + string(f.op)
	}
	return out
}

func (q Query) String() string {
	parts := make([]string, len(q.filters))
	for i, f := range q.filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, " AND ")
}
