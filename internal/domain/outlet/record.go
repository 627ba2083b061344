package outlet

import (
	"fmt"
	"strings"
)

// Record is one outlet row. Reference data, treated as immutable once loaded.
type Record struct {
	ID        string
	Name      string
	Address   string
	Hours     map[Day]Interval
	Amenities AmenitySet
	MapsURL   string
}

// OpenDuring reports whether the outlet is open at any minute of window on day,
// including hours spilling over from the previous day's late close.
func (r Record) OpenDuring(day Day, window Interval) bool {
	if iv, ok := r.Hours[day]; ok && iv.Overlaps(window) {
		return true
	}
	if prev, ok := r.Hours[day.Prev()]; ok {
		if spill, ok := prev.Spill(); ok && spill.Overlaps(window) {
			return true
		}
	}
	// A window running past midnight continues into the next day.
	if tail, ok := window.Spill(); ok {
		if next, ok := r.Hours[day.Next()]; ok && next.Overlaps(tail) {
			return true
		}
	}
	return false
}

// HoursSummary renders opening hours. Seven identical days collapse into
// "Monday–Sunday: X"; otherwise each day is listed, missing days as closed.
func (r Record) HoursSummary() string {
	if len(r.Hours) == 0 {
		return ""
	}
	first, uniform := r.Hours[Monday]
	if uniform {
		for _, d := range AllDays {
			if iv, ok := r.Hours[d]; !ok || iv != first {
				uniform = false
				break
			}
		}
	}
	if uniform {
		return fmt.Sprintf("%s–%s: %s", Monday, Sunday, first)
	}

	parts := make([]string, 0, len(AllDays))
	for _, d := range AllDays {
		if iv, ok := r.Hours[d]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", d, iv))
		} else {
			parts = append(parts, fmt.Sprintf("%s: Closed", d))
		}
	}
	return strings.Join(parts, "; ")
}

// Render formats the record as one line of plain text. Blank fields are omitted.
func (r Record) Render() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Address != "" {
		b.WriteString(" — ")
		b.WriteString(r.Address)
	}
	b.WriteString(".")
	if hours := r.HoursSummary(); hours != "" {
		b.WriteString(" Hours: ")
		b.WriteString(hours)
		b.WriteString(".")
	}
	if len(r.Amenities) > 0 {
		b.WriteString(" Amenities: ")
		b.WriteString(strings.Join(r.Amenities.Sorted(), ", "))
		b.WriteString(".")
	}
	if r.MapsURL != "" {
		b.WriteString(" Map: ")
		b.WriteString(r.MapsURL)
	}
	return b.String()
}

// IDs returns the outlet ids in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
