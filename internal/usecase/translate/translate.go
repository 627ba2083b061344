package translate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

// MaxQuestionLen bounds the question text the translator inspects.
const MaxQuestionLen = 1000

var (
	hoursCue     = regexp.MustCompile(`\b(hours?|open|opens|opening|close|closes|closing|time|when|late|early|24/7)\b`)
	addressCue   = regexp.MustCompile(`\b(address|where|located|location|direction|directions|map|maps|find)\b`)
	amenitiesCue = regexp.MustCompile(`\b(services?|amenities|facilities|offer|offers|provide|provides|have|has)\b`)
)

// Option configures a Translator.
type Option func(*Translator)

// WithClock sets the time source used for "today", "tonight" and "now".
func WithClock(now func() time.Time) Option {
	return func(t *Translator) { t.now = now }
}

// WithLocation sets the time zone outlets operate in.
func WithLocation(loc *time.Location) Option {
	return func(t *Translator) { t.loc = loc }
}

// Translator maps a question onto the outlet allow-list. It never forwards the
// raw question: every value is an extracted, sanitized span.
type Translator struct {
	schema query.Schema
	now    func() time.Time
	loc    *time.Location
}

// New creates a translator bound to schema, refusing versions it was not built for.
func New(schema query.Schema, opts ...Option) (*Translator, error) {
	if schema.Version() != query.SchemaVersion {
		return nil, fmt.Errorf("%w: translator supports %q, got %q",
			domain.ErrSchemaVersionMismatch, query.SchemaVersion, schema.Version())
	}
	t := &Translator{schema: schema, now: time.Now, loc: time.UTC}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Schema returns the allow-list the translator was initialized with.
func (t *Translator) Schema() query.Schema { return t.schema }

// Translate derives a structured query, or fails with ErrUnsupportedQuery when
// no filter can be derived confidently.
func (t *Translator) Translate(question string, schema query.Schema) (query.Query, error) {
	if schema.Version() != t.schema.Version() {
		return query.Query{}, fmt.Errorf("%w: translator initialized with %q, got %q",
			domain.ErrSchemaVersionMismatch, t.schema.Version(), schema.Version())
	}

	question = strings.Join(strings.Fields(question), " ")
	if r := []rune(question); len(r) > MaxQuestionLen {
		question = string(r[:MaxQuestionLen])
	}
	lower := lowerASCII(question)

	b := builder{schema: schema}

	if m := outletIDExpr.FindStringSubmatch(lower); m != nil {
		b.add(query.NewEquals(query.FieldOutletID, m[1]))
	}

	if p, ok := extractPlace(question, lower); ok {
		field := query.FieldName
		if p.address {
			field = query.FieldAddress
		}
		b.add(query.NewSubstring(field, p.alternatives...))
	}

	// A bare day ("today") is only an hours constraint when hours are asked about.
	if w, ok := extractWindow(lower, t.now().In(t.loc)); ok &&
		(w.Interval != outlet.FullDay || hoursCue.MatchString(lower)) {
		b.add(query.NewOverlap(query.FieldHours, w))
	}

	amenities := findAmenities(lower)
	for _, group := range amenities {
		b.add(query.NewMembership(query.FieldAmenities, group...))
	}

	if b.err != nil {
		return query.Query{}, b.err
	}
	if len(b.filters) == 0 {
		return query.Query{}, fmt.Errorf("%w: no outlet field could be derived", domain.ErrUnsupportedQuery)
	}

	var fields []query.Field
	for _, f := range projection(lower, b.filters, len(amenities) > 0) {
		if schema.HasField(f) {
			fields = append(fields, f)
		}
	}
	q, err := query.New(b.filters, fields...)
	if err != nil {
		return query.Query{}, fmt.Errorf("build query: %w", err)
	}
	if err := schema.Validate(q); err != nil {
		return query.Query{}, fmt.Errorf("validate query: %w", err)
	}
	return q, nil
}

type builder struct {
	schema  query.Schema
	filters []query.Filter
	err     error
}

// add keeps filters the schema allows; anything else is silently not derived.
func (b *builder) add(f query.Filter, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		if domain.IsHardFailure(err) {
			b.err = err
		}
		return
	}
	if !b.schema.Allows(f.Field(), f.Operator()) {
		return
	}
	if len(b.filters) < query.MaxFilters {
		b.filters = append(b.filters, f)
	}
}

// projection returns the asked-about fields plus name; nil when no attribute
// is singled out so every field is returned.
func projection(lower string, filters []query.Filter, amenities bool) []query.Field {
	var fields []query.Field
	if hoursCue.MatchString(lower) {
		fields = append(fields, query.FieldHours)
	}
	if addressCue.MatchString(lower) {
		fields = append(fields, query.FieldAddress)
	}
	if amenities || amenitiesCue.MatchString(lower) {
		fields = append(fields, query.FieldAmenities)
	}
	if len(fields) == 0 {
		return nil
	}
	for _, f := range filters {
		if f.Field() == query.FieldAddress {
			fields = append(fields, query.FieldAddress)
		}
	}
	return append([]query.Field{query.FieldName}, fields...)
}
