package translate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

var sqlKeyword = regexp.MustCompile(
	`(?i)\b(select|insert|update|delete|drop|union|alter|create|exec|truncate|where|from)\b`)

// sanitize reduces a free-text span to a bounded literal. It is only ever bound
// as a parameter, but statement metacharacters are removed all the same.
func sanitize(span string) string {
	if i := strings.IndexAny(span, ";"); i >= 0 {
		span = span[:i]
	}
	if i := strings.Index(span, "--"); i >= 0 {
		span = span[:i]
	}
	if i := strings.Index(span, "/*"); i >= 0 {
		span = span[:i]
	}
	hostile := sqlKeyword.MatchString(span)

	var b strings.Builder
	for _, r := range span {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case !hostile && strings.ContainsRune("&-./'", r):
			b.WriteRune(r)
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	out = strings.Trim(out, "-./' ")
	if hostile {
		out = strings.TrimSpace(sqlKeyword.ReplaceAllString(out, ""))
		out = strings.Join(strings.Fields(out), " ")
	}
	if r := []rune(out); len(r) > query.MaxValueLen {
		out = strings.TrimSpace(string(r[:query.MaxValueLen]))
	}
	return out
}

// lowerASCII lower-cases A-Z only, keeping byte offsets aligned with the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
