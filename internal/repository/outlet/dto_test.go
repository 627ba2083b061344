package outlet

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestDecodeRecords(t *testing.T) {
	records := fixtureRecords(t)
	require.Len(t, records, 3)

	ss2 := records[0]
	assert.Equal(t, "1", ss2.ID)
	assert.Equal(t, "https://maps.example/1", ss2.MapsURL)
	assert.True(t, ss2.Amenities.Has("delivery"))
	assert.Len(t, ss2.Hours, 6, "Sunday is closed")

	assert.Equal(t, "10", records[1].ID, "string ids accepted")
	assert.True(t, records[2].Amenities.Has(domoutlet.AmenityDriveThrough))
	assert.Equal(t, domoutlet.FullDay, records[2].Hours[domoutlet.Sunday])
}

func TestDecodeRecords_Errors(t *testing.T) {
	tests := map[string]string{
		"duplicate id": `[{"id":1,"name":"a"},{"id":"1","name":"b"}]`,
		"missing name": `[{"id":1}]`,
		"bad day":      `[{"id":1,"name":"a","opening_hours":{"Funday":"8 am–9 pm"}}]`,
		"bad hours":    `[{"id":1,"name":"a","opening_hours":{"Monday":"whenever"}}]`,
		"not an array": `{"id":1}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRecords(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestHoursColumnRoundTrip(t *testing.T) {
	hours := map[domoutlet.Day]domoutlet.Interval{
		domoutlet.Monday: {Open: 480, Close: 1320},
		domoutlet.Friday: {Open: 480, Close: 1500},
	}
	enc, err := encodeHours(hours)
	require.NoError(t, err)
	dec, err := decodeHours(enc)
	require.NoError(t, err)
	assert.Equal(t, hours, dec)
}

func TestAmenitiesColumn(t *testing.T) {
	set := domoutlet.NewAmenitySet("WiFi", "Dine-in")
	enc := encodeAmenities(set)
	assert.Equal(t, ",dine-in,wifi,", enc)
	assert.Equal(t, set, decodeAmenities(enc))
	assert.Equal(t, ",", encodeAmenities(nil))
	assert.Empty(t, decodeAmenities(","))
}

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord("7", " ZUS Coffee Bangsar ", "Jalan Telawi", "",
		[]string{"Dine-in", "Free Wi-Fi"},
		map[string]string{"Monday": "8 am–9:40 pm", "Sunday": "Closed"})
	require.NoError(t, err)

	assert.Equal(t, "ZUS Coffee Bangsar", rec.Name)
	assert.True(t, rec.Amenities.Has("wifi"))
	assert.Len(t, rec.Hours, 1)

	_, err = NewRecord("", "x", "", "", nil, nil)
	assert.Error(t, err)
}
