package outlet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of one day in minutes.
const MinutesPerDay = 24 * 60

// ErrClosed is returned by ParseInterval for a closed day.
var ErrClosed = errors.New("closed")

// Interval is a half-open [Open, Close) span in minutes from midnight.
// Close may exceed MinutesPerDay when an outlet closes after midnight.
type Interval struct {
	Open  int
	Close int
}

// FullDay covers the whole day.
var FullDay = Interval{Open: 0, Close: MinutesPerDay}

// NewInterval builds an interval. A close at or before open wraps to the next day.
func NewInterval(open, closeAt int) (Interval, error) {
	if open < 0 || open >= MinutesPerDay || closeAt < 0 || closeAt > MinutesPerDay {
		return Interval{}, fmt.Errorf("interval bounds out of range: %d-%d", open, closeAt)
	}
	if closeAt <= open {
		closeAt += MinutesPerDay
	}
	return Interval{Open: open, Close: closeAt}, nil
}

// Overlaps reports whether the two intervals share at least one minute.
func (i Interval) Overlaps(other Interval) bool {
	return i.Open < other.Close && other.Open < i.Close
}

// Spill returns the part of i that falls into the next day, shifted to that day.
func (i Interval) Spill() (Interval, bool) {
	if i.Close <= MinutesPerDay {
		return Interval{}, false
	}
	return Interval{Open: 0, Close: i.Close - MinutesPerDay}, true
}

// IsFullDay reports whether the interval covers the entire day.
func (i Interval) IsFullDay() bool { return i.Open <= 0 && i.Close >= MinutesPerDay }

func (i Interval) String() string {
	if i.IsFullDay() {
		return "Open 24 hours"
	}
	return formatClock(i.Open) + "–" + formatClock(i.Close)
}

func formatClock(m int) string {
	m %= MinutesPerDay
	h, mm := m/60, m%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, mm, suffix)
}

var (
	rangeSep  = regexp.MustCompile(`\s*(?:–|—|-|\bto\b)\s*`)
	clockExpr = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)?$`)

	spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2009", " ")
)

// ParseInterval parses scraped hour ranges: "8 am–9:40 pm", "08:00-22:00",
// "Open 24 hours". "Closed" yields ErrClosed.
func ParseInterval(s string) (Interval, error) {
	norm := strings.ToLower(strings.TrimSpace(spaceReplacer.Replace(s)))
	switch {
	case norm == "":
		return Interval{}, fmt.Errorf("empty hours")
	case strings.Contains(norm, "closed"):
		return Interval{}, ErrClosed
	case strings.Contains(norm, "24 hours"), norm == "24h":
		return FullDay, nil
	}

	parts := rangeSep.Split(norm, 2)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("unrecognized hours %q", s)
	}
	closeAt, closeMeridiem, err := parseClock(parts[1], "")
	if err != nil {
		return Interval{}, fmt.Errorf("close time in %q: %w", s, err)
	}
	// "8–11 pm" borrows the meridiem of the close time.
	open, _, err := parseClock(parts[0], closeMeridiem)
	if err != nil {
		return Interval{}, fmt.Errorf("open time in %q: %w", s, err)
	}
	return NewInterval(open, closeAt)
}

// ParseClock parses a single time of day into minutes from midnight.
func ParseClock(s string) (int, error) {
	m, _, err := parseClock(strings.ToLower(strings.TrimSpace(s)), "")
	return m, err
}

func parseClock(s, defaultMeridiem string) (int, string, error) {
	match := clockExpr.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, "", fmt.Errorf("unrecognized time %q", s)
	}
	h, _ := strconv.Atoi(match[1])
	m := 0
	if match[2] != "" {
		m, _ = strconv.Atoi(match[2])
	}
	meridiem := strings.ReplaceAll(match[3], ".", "")
	if meridiem == "" && defaultMeridiem != "" && h <= 12 {
		meridiem = defaultMeridiem
	}
	switch meridiem {
	case "am":
		if h == 12 {
			h = 0
		}
	case "pm":
		if h < 12 {
			h += 12
		}
	}
	if h > 24 || m > 59 || (meridiem != "" && h > 23) {
		return 0, "", fmt.Errorf("time out of range %q", s)
	}
	return h*60 + m, meridiem, nil
}
