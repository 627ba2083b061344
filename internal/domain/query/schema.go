package query

import (
	"fmt"

	"github.com/kailas-cloud/brewdesk/internal/domain"
)

// SchemaVersion identifies the outlet allow-list this build understands.
// Bump it whenever fields or operators change.
const SchemaVersion = "outlets/v1"

// Schema is a versioned allow-list of fields and the operators each permits.
type Schema struct {
	version string
	allow   map[Field]map[Operator]bool
}

// NewSchema creates a schema from a field → operators table.
func NewSchema(version string, allow map[Field][]Operator) Schema {
	m := make(map[Field]map[Operator]bool, len(allow))
	for f, ops := range allow {
		set := make(map[Operator]bool, len(ops))
		for _, op := range ops {
			set[op] = true
		}
		m[f] = set
	}
	return Schema{version: version, allow: m}
}

// DefaultSchema is the outlet table allow-list.
func DefaultSchema() Schema {
	return NewSchema(SchemaVersion, map[Field][]Operator{
		FieldOutletID:  {OpEquals},
		FieldName:      {OpEquals, OpSubstring},
		FieldAddress:   {OpEquals, OpSubstring},
		FieldHours:     {OpOverlap},
		FieldAmenities: {OpMembership},
	})
}

// Version returns the schema version.
func (s Schema) Version() string { return s.version }

// WithVersion returns the same allow-list under another version label.
func (s Schema) WithVersion(version string) Schema {
	s.version = version
	return s
}

// Allows reports whether op is permitted on field.
func (s Schema) Allows(field Field, op Operator) bool {
	return s.allow[field][op]
}

// HasField reports whether field is declared.
func (s Schema) HasField(field Field) bool {
	_, ok := s.allow[field]
	return ok
}

// Validate fails closed: the first filter or projection entry outside the
// allow-list rejects the whole query.
func (s Schema) Validate(q Query) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("%w: no filters", domain.ErrUnsupportedQuery)
	}
	for _, f := range q.filters {
		if !s.HasField(f.field) {
			return domain.NewSchemaViolation(string(f.field), "")
		}
		if !s.Allows(f.field, f.op) {
			return domain.NewSchemaViolation(string(f.field), string(f.op))
		}
	}
	for _, p := range q.projection {
		if !s.HasField(p) {
			return domain.NewSchemaViolation(string(p), "")
		}
	}
	return nil
}
