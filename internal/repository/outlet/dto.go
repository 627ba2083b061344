package outlet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	domoutlet "github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

// flexID accepts both numeric and string ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// outletRow is the scraped outlet fixture format.
type outletRow struct {
	ID           flexID            `json:"id"`
	Name         string            `json:"name"`
	Address      string            `json:"address"`
	MapsURL      string            `json:"google_maps_link"`
	Services     []string          `json:"services"`
	OpeningHours map[string]string `json:"opening_hours"`
}

// DecodeRecords reads a JSON array of outlets in the scraped fixture format.
func DecodeRecords(r io.Reader) ([]domoutlet.Record, error) {
	var rows []outletRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode outlets: %w", err)
	}

	records := make([]domoutlet.Record, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("outlet %d: %w", i, err)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("outlet %d: duplicate id %q", i, rec.ID)
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}
	return records, nil
}

// LoadRecords reads an outlet fixture file.
func LoadRecords(path string) ([]domoutlet.Record, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("open outlets file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeRecords(f)
}

// NewRecord builds a record from fixture-style fields: free-form service names
// and per-day hour ranges such as "8 am–9:40 pm" or "Closed".
func NewRecord(
	id, name, address, mapsURL string, services []string, openingHours map[string]string,
) (domoutlet.Record, error) {
	return outletRow{
		ID:           flexID(id),
		Name:         name,
		Address:      address,
		MapsURL:      mapsURL,
		Services:     services,
		OpeningHours: openingHours,
	}.toRecord()
}

func (row outletRow) toRecord() (domoutlet.Record, error) {
	id := strings.TrimSpace(string(row.ID))
	if id == "" {
		return domoutlet.Record{}, errors.New("missing id")
	}
	if strings.TrimSpace(row.Name) == "" {
		return domoutlet.Record{}, fmt.Errorf("outlet %s: missing name", id)
	}

	hours := make(map[domoutlet.Day]domoutlet.Interval, len(row.OpeningHours))
	for dayName, span := range row.OpeningHours {
		day, err := domoutlet.ParseDay(dayName)
		if err != nil {
			return domoutlet.Record{}, fmt.Errorf("outlet %s: %w", id, err)
		}
		iv, err := domoutlet.ParseInterval(span)
		if errors.Is(err, domoutlet.ErrClosed) {
			continue
		}
		if err != nil {
			return domoutlet.Record{}, fmt.Errorf("outlet %s %s: %w", id, day, err)
		}
		hours[day] = iv
	}

	return domoutlet.Record{
		ID:        id,
		Name:      strings.TrimSpace(row.Name),
		Address:   strings.TrimSpace(row.Address),
		Hours:     hours,
		Amenities: domoutlet.NewAmenitySet(row.Services...),
		MapsURL:   strings.TrimSpace(row.MapsURL),
	}, nil
}

// encodeHours stores hours as {"monday":[open,close],...} in minutes.
func encodeHours(hours map[domoutlet.Day]domoutlet.Interval) (string, error) {
	m := make(map[string][2]int, len(hours))
	for d, iv := range hours {
		m[strings.ToLower(d.String())] = [2]int{iv.Open, iv.Close}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal hours: %w", err)
	}
	return string(data), nil
}

func decodeHours(s string) (map[domoutlet.Day]domoutlet.Interval, error) {
	var m map[string][2]int
	if s != "" {
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("unmarshal hours: %w", err)
		}
	}
	hours := make(map[domoutlet.Day]domoutlet.Interval, len(m))
	for name, span := range m {
		d, err := domoutlet.ParseDay(name)
		if err != nil {
			return nil, err
		}
		hours[d] = domoutlet.Interval{Open: span[0], Close: span[1]}
	}
	return hours, nil
}

// encodeAmenities stores the set as ",a,b," so membership is a LIKE '%,a,%' test.
func encodeAmenities(set domoutlet.AmenitySet) string {
	names := set.Sorted()
	if len(names) == 0 {
		return ","
	}
	return "," + strings.Join(names, ",") + ","
}

func decodeAmenities(s string) domoutlet.AmenitySet {
	return domoutlet.NewAmenitySet(strings.Split(s, ",")...)
}

// recordRow is the column representation shared by both SQL dialects.
type recordRow struct {
	ID        string
	Name      string
	Address   string
	Hours     string
	Amenities string
	MapsURL   string
}

func (r recordRow) toRecord() (domoutlet.Record, error) {
	hours, err := decodeHours(r.Hours)
	if err != nil {
		return domoutlet.Record{}, fmt.Errorf("outlet %s: %w", r.ID, err)
	}
	return domoutlet.Record{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address,
		Hours:     hours,
		Amenities: decodeAmenities(r.Amenities),
		MapsURL:   r.MapsURL,
	}, nil
}

func rowFromRecord(rec domoutlet.Record) (recordRow, error) {
	hours, err := encodeHours(rec.Hours)
	if err != nil {
		return recordRow{}, err
	}
	return recordRow{
		ID:        rec.ID,
		Name:      rec.Name,
		Address:   rec.Address,
		Hours:     hours,
		Amenities: encodeAmenities(rec.Amenities),
		MapsURL:   rec.MapsURL,
	}, nil
}
