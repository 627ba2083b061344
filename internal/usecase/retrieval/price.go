package retrieval

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceRange is an inclusive [Min, Max] bound in RM.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether p lies within the range.
func (r PriceRange) Contains(p float64) bool {
	return p >= r.Min && p <= r.Max
}

const amount = `(?:rm\s*)?(\d+(?:\.\d+)?)`

var (
	priceBetween = regexp.MustCompile(`between\s+` + amount + `\s+(?:and|to|-)\s+` + amount)
	priceBelow   = regexp.MustCompile(`(?:below|under|less than|cheaper than|max(?:imum)?)\s+` + amount)
	priceAbove   = regexp.MustCompile(`(?:above|over|more than|at least|min(?:imum)?)\s+` + amount)
)

// ParsePriceRange extracts a price constraint such as "under RM50",
// "more than 30" or "between RM40 and RM60". Returns nil when none is present.
func ParsePriceRange(question string) *PriceRange {
	q := strings.ToLower(question)

	if m := priceBetween.FindStringSubmatch(q); m != nil {
		lo, hi := parseAmount(m[1]), parseAmount(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		return &PriceRange{Min: lo, Max: hi}
	}
	if m := priceBelow.FindStringSubmatch(q); m != nil {
		return &PriceRange{Min: 0, Max: parseAmount(m[1])}
	}
	if m := priceAbove.FindStringSubmatch(q); m != nil {
		return &PriceRange{Min: parseAmount(m[1]), Max: math.Inf(1)}
	}
	return nil
}

func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
