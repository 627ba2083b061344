package translate

import (
	"regexp"
	"strings"
)

// place is a location span with its match alternatives.
type place struct {
	alternatives []string
	address      bool
}

var (
	prepositionExpr = regexp.MustCompile(`\b(?:in|at|near|around|inside|located in|located at)\s+`)
	outletIDExpr    = regexp.MustCompile(`\b(?:outlet|store|branch)\s*(?:#|no\.?\s*|number\s+|id\s+)(\d{1,6})\b`)
	namedOutletExpr = regexp.MustCompile(
		`\b((?:[A-Z0-9][\w&'.-]*\s+){0,4}[A-Z0-9][\w&'.-]*)\s+(?:outlet|branch|store|kiosk)s?\b`)
	brandExpr  = regexp.MustCompile(`\bzus(?:\s+coffee)?(?:'s)?\s+`)
	clockOnly  = regexp.MustCompile(`^` + clock + `$`)
	streetExpr = regexp.MustCompile(`\b(?:jalan|jln\.?|persiaran|lorong|lebuh|lebuhraya|lrg\.?)\s`)
)

// stopWords end a location phrase.
var stopWords = toSet(
	"that", "which", "who", "where", "when", "what", "how", "whether", "if",
	"open", "opens", "opened", "opening", "close", "closes", "closed", "closing",
	"in", "at", "near", "around", "on", "during", "after", "before", "until", "till", "from", "by", "with", "to",
	"and", "but", "has", "have", "having", "got", "offer", "offers", "offering",
	"provide", "provides", "serve", "serves", "sell", "sells", "for",
	"today", "tonight", "tomorrow", "now", "this", "next", "right", "late", "early",
	"is", "are", "does", "do", "did", "still", "please", "any", "operating", "hours", "hour",
	"weekend", "weekends", "weekday", "weekdays",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"mon", "tue", "tues", "wed", "thu", "thur", "thurs", "fri", "sat", "sun",
)

// leadingNoise is dropped from the start of a phrase.
var leadingNoise = toSet("the", "a", "an", "your", "zus", "coffee", "which", "what",
	"is", "are", "does", "do", "any", "there", "outlet", "outlets", "branch", "store")

// trailingNoise is dropped from the end of a phrase.
var trailingNoise = toSet("outlet", "outlets", "branch", "branches", "store", "stores",
	"kiosk", "area", "there", "located")

// rejected phrases are not places.
var rejected = toSet("me", "you", "us", "here", "there", "home", "work", "all", "night",
	"morning", "evening", "afternoon", "noon", "midnight", "moment", "the moment", "once",
	"least", "most", "malaysia", "kopi", "coffee", "zus")

// localities pair common abbreviations with their full names.
var localities = [][2]string{
	{"kl", "kuala lumpur"},
	{"pj", "petaling jaya"},
	{"jb", "johor bahru"},
}

// areaNames are known cities and districts. A phrase that is exactly one of
// these is matched against the address rather than the outlet name.
var areaNames = toSet(
	"kuala lumpur", "kl", "petaling jaya", "pj", "selangor", "shah alam", "subang jaya",
	"puchong", "cheras", "klang", "putrajaya", "cyberjaya", "johor bahru", "jb", "penang",
	"kajang", "bangsar", "damansara", "ampang", "seri kembangan", "rawang", "semenyih",
	"setapak", "kepong", "sepang", "bangi", "seremban", "melaka", "ipoh",
)

// extractPlace finds the outlet location phrase. A prepositional phrase
// ("in Pavilion KL") wins over a capitalized name before "outlet", which wins
// over a capitalized name after the brand ("ZUS Coffee Mid Valley").
func extractPlace(question, lower string) (place, bool) {
	for _, loc := range prepositionExpr.FindAllStringIndex(lower, -1) {
		alts := phraseAlternatives(question, lower, loc[1])
		if len(alts) == 0 {
			continue
		}
		return newPlace(alts), true
	}

	for _, m := range namedOutletExpr.FindAllStringSubmatchIndex(question, -1) {
		words := strings.Fields(question[m[2]:m[3]])
		cleaned := trimNoise(words)
		if p := sanitize(strings.Join(cleaned, " ")); acceptable(p) {
			return newPlace([]string{p}), true
		}
	}

	for _, loc := range brandExpr.FindAllStringIndex(lower, -1) {
		if !startsCapitalized(question[loc[1]:]) {
			continue
		}
		if alts := phraseAlternatives(question, lower, loc[1]); len(alts) > 0 {
			return newPlace(alts), true
		}
	}
	return place{}, false
}

func startsCapitalized(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// phraseAlternatives reads words from offset up to a stop word or punctuation.
// "or" separates alternatives.
func phraseAlternatives(question, lower string, offset int) []string {
	var (
		alts    []string
		current []string
	)
	flush := func() {
		if p := sanitize(strings.Join(trimNoise(current), " ")); acceptable(p) {
			alts = append(alts, p)
		}
		current = nil
	}

	pos := offset
	for pos < len(lower) && len(current) < 8 {
		for pos < len(lower) && lower[pos] == ' ' {
			pos++
		}
		end := pos
		for end < len(lower) && lower[end] != ' ' {
			end++
		}
		if end == pos {
			break
		}
		word := question[pos:end]
		key := strings.Trim(lower[pos:end], ",.?!;:()\"")
		punct := strings.ContainsAny(lower[pos:end], ",?!;:()\"") ||
			strings.HasSuffix(lower[pos:end], ".") && !isAbbrev(key)

		if key == "or" {
			flush()
			pos = end
			continue
		}
		if stopWords[key] || isClockWord(key) {
			break
		}
		current = append(current, strings.Trim(word, ",.?!;:()\""))
		pos = end
		if punct {
			break
		}
	}
	flush()
	return alts
}

func newPlace(alts []string) place {
	first := strings.ToLower(alts[0])
	p := place{address: streetExpr.MatchString(first+" ") || areaNames[first]}
	seen := map[string]bool{}
	add := func(s string) {
		k := strings.ToLower(s)
		if s != "" && !seen[k] {
			seen[k] = true
			p.alternatives = append(p.alternatives, s)
		}
	}
	for _, a := range alts {
		if !isLocalityShort(a) {
			add(a)
		}
	}
	for _, a := range alts {
		if e := expandLocality(a); !isLocalityShort(e) {
			add(e)
		}
	}
	return p
}

// isLocalityShort reports a bare abbreviation such as "KL". As a substring it
// would also hit unrelated words ("Klang"), so only its long form is matched.
func isLocalityShort(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, pair := range localities {
		if lower == pair[0] {
			return true
		}
	}
	return false
}

// expandLocality swaps a known abbreviation for its long form ("Pavilion KL" →
// "Pavilion kuala lumpur") or the long form for the abbreviation.
func expandLocality(s string) string {
	lower := strings.ToLower(s)
	for _, pair := range localities {
		short, long := pair[0], pair[1]
		if strings.Contains(lower, long) {
			return strings.Replace(lower, long, short, 1)
		}
		words := strings.Fields(lower)
		for i, w := range words {
			if w == short {
				words[i] = long
				return strings.Join(words, " ")
			}
		}
	}
	return ""
}

func trimNoise(words []string) []string {
	for len(words) > 0 && leadingNoise[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && trailingNoise[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return words
}

func acceptable(p string) bool {
	if len([]rune(p)) < 2 {
		return false
	}
	lower := strings.ToLower(p)
	if rejected[lower] {
		return false
	}
	if _, ok := parseClock(lower); ok {
		return false
	}
	return !dayWord.MatchString(lower) || len(strings.Fields(lower)) > 1
}

func isClockWord(w string) bool {
	return clockOnly.MatchString(w)
}

func isAbbrev(w string) bool {
	switch w {
	case "jln", "lrg", "st", "no", "bhd", "sdn":
		return true
	}
	return false
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
