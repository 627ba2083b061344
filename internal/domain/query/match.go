package query

import (
	"strings"

	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

// Matches evaluates one filter against a record. Every store shares these semantics.
func Matches(r outlet.Record, f Filter) bool {
	switch f.op {
	case OpEquals:
		v := textField(r, f.field)
		for _, want := range f.values {
			if strings.EqualFold(v, want) {
				return true
			}
		}
	case OpSubstring:
		v := textField(r, f.field)
		for _, alt := range f.values {
			if ContainsFold(v, alt) {
				return true
			}
		}
	case OpMembership:
		if f.field == FieldAmenities {
			return r.Amenities.HasAny(f.values)
		}
	case OpOverlap:
		if f.field == FieldHours {
			return openInWindow(r, f.window)
		}
	}
	return false
}

// MatchesAll reports whether the record satisfies every filter of q.
func MatchesAll(r outlet.Record, q Query) bool {
	for _, f := range q.filters {
		if !Matches(r, f) {
			return false
		}
	}
	return true
}

// Project blanks the fields q does not return.
func Project(r outlet.Record, q Query) outlet.Record {
	out := outlet.Record{ID: r.ID}
	if q.Projects(FieldName) {
		out.Name = r.Name
		out.MapsURL = r.MapsURL
	}
	if q.Projects(FieldAddress) {
		out.Address = r.Address
	}
	if q.Projects(FieldHours) {
		out.Hours = r.Hours
	}
	if q.Projects(FieldAmenities) {
		out.Amenities = r.Amenities
	}
	return out
}

// ContainsFold is a case-insensitive substring test that also ignores spaces,
// so "SS2" finds "SS 2".
func ContainsFold(s, sub string) bool {
	s, sub = strings.ToLower(s), strings.ToLower(sub)
	if strings.Contains(s, sub) {
		return true
	}
	return strings.Contains(stripSpaces(s), stripSpaces(sub))
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func textField(r outlet.Record, f Field) string {
	switch f {
	case FieldOutletID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldAddress:
		return r.Address
	default:
		return ""
	}
}

func openInWindow(r outlet.Record, w Window) bool {
	days := w.Days
	if len(days) == 0 {
		days = outlet.AllDays
	}
	for _, d := range days {
		if r.OpenDuring(d, w.Interval) {
			return true
		}
	}
	return false
}
