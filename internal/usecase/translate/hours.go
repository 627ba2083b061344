package translate

import (
	"regexp"
	"sort"
	"time"

	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

const (
	lateFrom   = 22 * 60
	earlyUntil = 8 * 60
	eveningAt  = 18 * 60
)

var (
	dayWord = regexp.MustCompile(
		`\b(mon|monday|tue|tues|tuesday|wed|wednesday|thu|thur|thurs|thursday|fri|friday|sat|saturday|sun|sunday)s?\b`)
	weekendWord = regexp.MustCompile(`\bweekends?\b`)
	weekdayWord = regexp.MustCompile(`\bweekdays?\b`)
	relDayWord  = regexp.MustCompile(`\b(today|tonight|tomorrow|now|right now|currently)\b`)

	clock = `(\d{1,2}(?::\d{2})?\s*(?:am|pm|a\.m\.|p\.m\.)|\d{1,2}:\d{2}|noon|midnight)`

	timeAfter  = regexp.MustCompile(`\b(?:after|past|from|later than)\s+` + clock)
	timeBefore = regexp.MustCompile(`\b(?:before|by|earlier than)\s+` + clock)
	timeUntil  = regexp.MustCompile(`\b(?:until|till|til)\s+` + clock)
	timeAt     = regexp.MustCompile(`\b(?:at|around|on)\s+` + clock)
	timeBare   = regexp.MustCompile(`\b` + clock)

	lateCue  = regexp.MustCompile(`\b(open late|late night|late-night|after dark|night owl)\b`)
	earlyCue = regexp.MustCompile(`\b(open early|early morning|early bird|breakfast)\b`)
)

// extractWindow derives the hours predicate. Days without a time mean the whole
// day; a time without days means any day.
func extractWindow(lower string, now time.Time) (query.Window, bool) {
	days, relative, evening := extractDays(lower, now)
	iv, hasTime := extractInterval(lower, now, relative)

	if !hasTime && evening {
		iv, hasTime = outlet.Interval{Open: eveningAt, Close: outlet.MinutesPerDay}, true
	}
	if len(days) == 0 && !hasTime {
		return query.Window{}, false
	}
	if !hasTime {
		iv = outlet.FullDay
	}
	return query.Window{Days: days, Interval: iv}, true
}

func extractDays(lower string, now time.Time) ([]outlet.Day, bool, bool) {
	set := map[outlet.Day]bool{}
	for _, m := range dayWord.FindAllStringSubmatch(lower, -1) {
		if d, err := outlet.ParseDay(m[1]); err == nil {
			set[d] = true
		}
	}
	if weekendWord.MatchString(lower) {
		set[outlet.Saturday] = true
		set[outlet.Sunday] = true
	}
	if weekdayWord.MatchString(lower) {
		for _, d := range outlet.AllDays[:5] {
			set[d] = true
		}
	}

	relative, evening := false, false
	today := weekday(now)
	for _, m := range relDayWord.FindAllStringSubmatch(lower, -1) {
		switch m[1] {
		case "tomorrow":
			set[today.Next()] = true
		case "tonight":
			set[today] = true
			evening = true
		default:
			set[today] = true
			relative = m[1] != "today"
		}
	}

	days := make([]outlet.Day, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, relative, evening
}

func extractInterval(lower string, now time.Time, atNow bool) (outlet.Interval, bool) {
	if m := timeAfter.FindStringSubmatch(lower); m != nil {
		if t, ok := parseClock(m[1]); ok {
			return outlet.Interval{Open: t, Close: outlet.MinutesPerDay}, true
		}
	}
	if m := timeBefore.FindStringSubmatch(lower); m != nil {
		if t, ok := parseClock(m[1]); ok && t > 0 {
			return outlet.Interval{Open: 0, Close: t}, true
		}
	}
	if m := timeUntil.FindStringSubmatch(lower); m != nil {
		if t, ok := parseClock(m[1]); ok {
			if t == 0 {
				t = outlet.MinutesPerDay
			}
			return outlet.Interval{Open: t - 1, Close: t}, true
		}
	}
	if m := timeAt.FindStringSubmatch(lower); m != nil {
		if t, ok := parseClock(m[1]); ok {
			return minute(t), true
		}
	}
	if m := timeBare.FindStringSubmatch(lower); m != nil {
		if t, ok := parseClock(m[1]); ok {
			return minute(t), true
		}
	}
	switch {
	case lateCue.MatchString(lower):
		return outlet.Interval{Open: lateFrom, Close: outlet.MinutesPerDay}, true
	case earlyCue.MatchString(lower):
		return outlet.Interval{Open: 0, Close: earlyUntil}, true
	case atNow:
		return minute(now.Hour()*60 + now.Minute()), true
	}
	return outlet.Interval{}, false
}

func parseClock(s string) (int, bool) {
	switch s {
	case "noon":
		return 12 * 60, true
	case "midnight":
		return 0, true
	}
	t, err := outlet.ParseClock(s)
	if err != nil || t >= outlet.MinutesPerDay {
		return 0, false
	}
	return t, true
}

func minute(t int) outlet.Interval {
	return outlet.Interval{Open: t, Close: t + 1}
}

func weekday(t time.Time) outlet.Day {
	return outlet.Day((int(t.Weekday()) + 6) % 7)
}
