package outlet

import (
	"fmt"
	"strings"
)

// Day is a day of the week, Monday first.
type Day int

// Days of the week.
const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllDays lists every day in week order.
var AllDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// Valid reports whether d is one of the seven days.
func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

// Prev returns the day before d.
func (d Day) Prev() Day { return (d + 6) % 7 }

// Next returns the day after d.
func (d Day) Next() Day { return (d + 1) % 7 }

// ParseDay accepts full names and common three-letter abbreviations, case-insensitively.
func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range dayNames {
		lower := strings.ToLower(name)
		if s == lower || (len(s) >= 3 && strings.HasPrefix(lower, s)) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}
