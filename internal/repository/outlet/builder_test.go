package outlet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

func TestBuildSelect_Parameterized(t *testing.T) {
	q := mustQuery(t, nil,
		substring(query.FieldName, "Pavilion'; DROP TABLE outlets"),
		membership("wifi", "parking"),
		overlap(nil, domoutlet.FullDay),
	)

	stmt, err := buildSelect(q, false)
	require.NoError(t, err)
	assert.NotContains(t, stmt.sql, "DROP")
	assert.NotContains(t, stmt.sql, "Pavilion")
	assert.Equal(t,
		selectOutlets+` WHERE (LOWER(name) LIKE ? ESCAPE '\' OR REPLACE(LOWER(name), ' ', '') LIKE ? ESCAPE '\')`+
			` AND (amenities LIKE ? ESCAPE '\' OR amenities LIKE ? ESCAPE '\')`+
			` ORDER BY LENGTH(outlet_id), outlet_id`,
		stmt.sql)
	assert.Equal(t, []any{
		"%pavilion'; drop table outlets%",
		"%pavilion';droptableoutlets%",
		"%,wifi,%",
		"%,parking,%",
	}, stmt.args)
}

func TestBuildSelect_Postgres(t *testing.T) {
	q := mustQuery(t, nil, equals(query.FieldOutletID, "7"), equals(query.FieldName, "SS2"))

	stmt, err := buildSelect(q, true)
	require.NoError(t, err)
	assert.Contains(t, stmt.sql, "outlet_id = $1 AND LOWER(name) = $2")
	assert.Equal(t, []any{"7", "ss2"}, stmt.args)
}

func TestBuildSelect_HoursOnly(t *testing.T) {
	q := mustQuery(t, nil, overlap([]domoutlet.Day{domoutlet.Monday}, domoutlet.FullDay))
	stmt, err := buildSelect(q, false)
	require.NoError(t, err)
	assert.NotContains(t, stmt.sql, "WHERE")
	assert.Empty(t, stmt.args)
}

func TestBuildSelect_NonASCIILeftToGo(t *testing.T) {
	q := mustQuery(t, nil, substring(query.FieldName, "École"), substring(query.FieldAddress, "Mont Kiara"))

	stmt, err := buildSelect(q, false)
	require.NoError(t, err)
	assert.NotContains(t, stmt.sql, "LOWER(name)")
	assert.Contains(t, stmt.sql, "LOWER(address)")
	assert.Equal(t, []any{"%mont kiara%", "%montkiara%"}, stmt.args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}
