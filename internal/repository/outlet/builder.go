package outlet

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

// columns maps allow-listed text fields to their fixed column names.
// Field names never reach SQL directly.
var columns = map[query.Field]string{
	query.FieldOutletID:  "outlet_id",
	query.FieldName:      "name",
	query.FieldAddress:   "address",
	query.FieldAmenities: "amenities",
}

const selectOutlets = "SELECT outlet_id, name, address, hours, amenities, maps_url FROM outlets"

// statement is a parameterized SQL string with its bound arguments.
type statement struct {
	sql  string
	args []any
}

// buildSelect compiles the text predicates of q into a WHERE clause. Hours
// predicates, and text predicates SQL cannot fold like Go does, are evaluated
// in Go on the decoded rows.
func buildSelect(q query.Query, postgres bool) (statement, error) {
	var (
		where []string
		args  []any
	)
	for _, f := range q.Filters() {
		if f.Operator() == query.OpOverlap || !sqlFoldable(f) {
			continue
		}
		col, ok := columns[f.Field()]
		if !ok {
			return statement{}, fmt.Errorf("no column for field %q", f.Field())
		}
		clause, clauseArgs, err := compileFilter(col, f)
		if err != nil {
			return statement{}, err
		}
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}

	var b strings.Builder
	b.WriteString(selectOutlets)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY LENGTH(outlet_id), outlet_id")

	sql := b.String()
	if postgres {
		sql = rebind(sql)
	}
	return statement{sql: sql, args: args}, nil
}

func compileFilter(col string, f query.Filter) (string, []any, error) {
	var (
		parts []string
		args  []any
	)
	switch f.Operator() {
	case query.OpEquals:
		for _, v := range f.Values() {
			if col == "outlet_id" {
				parts = append(parts, col+" = ?")
				args = append(args, v)
				continue
			}
			parts = append(parts, "LOWER("+col+") = ?")
			args = append(args, strings.ToLower(v))
		}
	case query.OpSubstring:
		for _, v := range f.Values() {
			lower := strings.ToLower(v)
			parts = append(parts,
				"(LOWER("+col+`) LIKE ? ESCAPE '\' OR REPLACE(LOWER(`+col+`), ' ', '') LIKE ? ESCAPE '\')`)
			args = append(args,
				"%"+escapeLike(lower)+"%",
				"%"+escapeLike(strings.ReplaceAll(lower, " ", ""))+"%")
		}
	case query.OpMembership:
		for _, v := range f.Values() {
			parts = append(parts, col+` LIKE ? ESCAPE '\'`)
			args = append(args, "%,"+escapeLike(domoutlet.NormalizeAmenity(v))+",%")
		}
	default:
		return "", nil, fmt.Errorf("operator %q has no SQL form", f.Operator())
	}
	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// sqlFoldable reports whether LOWER() agrees with Go case folding for f.
// SQLite only folds ASCII, so non-ASCII text values are left to MatchesAll.
func sqlFoldable(f query.Filter) bool {
	if f.Operator() != query.OpEquals && f.Operator() != query.OpSubstring {
		return true
	}
	for _, v := range f.Values() {
		for i := 0; i < len(v); i++ {
			if v[i] >= utf8.RuneSelf {
				return false
			}
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// rebind turns ? placeholders into $1, $2, ... The statement text is built from
// constants only, so no literal contains a question mark.
func rebind(sql string) string {
	var b strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
