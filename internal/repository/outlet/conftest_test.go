package outlet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
)

const fixtureJSON = `[
  {
    "id": 1,
    "name": "ZUS Coffee - SS 2, Petaling Jaya",
    "address": "No 1, Jalan SS 2/67, SS 2, 47300 Petaling Jaya, Selangor",
    "google_maps_link": "https://maps.example/1",
    "services": ["Dine-in", "Takeaway", "Delivery"],
    "opening_hours": {
      "Monday": "8 am–10 pm", "Tuesday": "8 am–10 pm", "Wednesday": "8 am–10 pm",
      "Thursday": "8 am–10 pm", "Friday": "8 am–1 am", "Saturday": "8 am–1 am",
      "Sunday": "Closed"
    }
  },
  {
    "id": "10",
    "name": "ZUS Coffee - Pavilion Kuala Lumpur",
    "address": "Lot 3.01, Pavilion KL, 168 Jalan Bukit Bintang, 55100 Kuala Lumpur",
    "google_maps_link": "https://maps.example/10",
    "services": ["Dine-in", "Wi-Fi"],
    "opening_hours": {
      "Monday": "10 am–10 pm", "Tuesday": "10 am–10 pm", "Wednesday": "10 am–10 pm",
      "Thursday": "10 am–10 pm", "Friday": "10 am–10 pm", "Saturday": "10 am–10 pm",
      "Sunday": "10 am–10 pm"
    }
  },
  {
    "id": 2,
    "name": "ZUS Coffee - Pavilion Bukit Jalil",
    "address": "Level 1, Pavilion Bukit Jalil, Kuala Lumpur",
    "google_maps_link": "",
    "services": ["Takeaway", "Drive-thru"],
    "opening_hours": {"Saturday": "Open 24 hours", "Sunday": "Open 24 hours"}
  }
]`

func fixtureRecords(t *testing.T) []domoutlet.Record {
	t.Helper()
	records, err := DecodeRecords(strings.NewReader(fixtureJSON))
	require.NoError(t, err)
	return records
}

func mustQuery(t *testing.T, projection []query.Field, filters ...func() (query.Filter, error)) query.Query {
	t.Helper()
	fs := make([]query.Filter, 0, len(filters))
	for _, build := range filters {
		f, err := build()
		require.NoError(t, err)
		fs = append(fs, f)
	}
	q, err := query.New(fs, projection...)
	require.NoError(t, err)
	return q
}

func substring(field query.Field, alts ...string) func() (query.Filter, error) {
	return func() (query.Filter, error) { return query.NewSubstring(field, alts...) }
}

func membership(values ...string) func() (query.Filter, error) {
	return func() (query.Filter, error) { return query.NewMembership(query.FieldAmenities, values...) }
}

func overlap(days []domoutlet.Day, iv domoutlet.Interval) func() (query.Filter, error) {
	return func() (query.Filter, error) {
		return query.NewOverlap(query.FieldHours, query.Window{Days: days, Interval: iv})
	}
}

func equals(field query.Field, v string) func() (query.Filter, error) {
	return func() (query.Filter, error) { return query.NewEquals(field, v) }
}

// storeCase is shared by the memory and sqlite suites so both backends are held
// to the same row semantics.
type storeCase struct {
	name  string
	query func(t *testing.T) query.Query
	want  []string
}

func storeCases() []storeCase {
	return []storeCase{
		{
			name: "partial name matches several outlets",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, substring(query.FieldName, "pavilion"))
			},
			want: []string{"2", "10"},
		},
		{
			name: "space-insensitive substring",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, substring(query.FieldName, "SS2"))
			},
			want: []string{"1"},
		},
		{
			name: "alternatives are ORed",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, substring(query.FieldName, "Pavilion Kuala Lumpur", "pavilion kl"))
			},
			want: []string{"10"},
		},
		{
			name: "filters are ANDed",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, substring(query.FieldName, "pavilion"), membership("wifi"))
			},
			want: []string{"10"},
		},
		{
			name: "membership OR",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, membership("drive-through", "delivery"))
			},
			want: []string{"1", "2"},
		},
		{
			name: "late night spill into next day",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, overlap([]domoutlet.Day{domoutlet.Sunday}, domoutlet.Interval{Open: 30, Close: 31}))
			},
			want: []string{"1", "2"},
		},
		{
			name: "closed day",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil,
					substring(query.FieldName, "SS 2"),
					overlap([]domoutlet.Day{domoutlet.Sunday}, domoutlet.Interval{Open: 12 * 60, Close: 12*60 + 1}))
			},
			want: []string{},
		},
		{
			name: "address substring",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, substring(query.FieldAddress, "Bukit Bintang"))
			},
			want: []string{"10"},
		},
		{
			name: "equality on id",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, equals(query.FieldOutletID, "2"))
			},
			want: []string{"2"},
		},
		{
			name: "like metacharacters are literal",
			query: func(t *testing.T) query.Query {
				return mustQuery(t, nil, substring(query.FieldName, "%"))
			},
			want: []string{},
		},
	}
}
