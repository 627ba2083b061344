package translate

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

type synonym struct {
	phrase  string
	amenity string
}

var amenitySynonyms = func() []synonym {
	table := map[string][]string{
		outlet.AmenityNoContactDelivery: {"no-contact delivery", "no contact delivery", "contactless delivery"},
		outlet.AmenityDelivery:          {"delivery", "deliver", "delivers"},
		outlet.AmenityDineIn:            {"dine-in", "dine in", "dining in", "eat in", "sit-in", "sit in"},
		outlet.AmenityTakeaway:          {"takeaway", "take away", "take-away", "takeout", "take out", "take-out"},
		outlet.AmenityDriveThrough:      {"drive-through", "drive through", "drive-thru", "drive thru", "drivethru"},
		outlet.AmenityKerbsidePickup:    {"kerbside pickup", "curbside pickup", "kerbside", "curbside"},
		outlet.AmenityInStorePickup:     {"in-store pickup", "in-store pick-up", "in store pickup", "pickup in store"},
		outlet.AmenityWiFi:              {"wifi", "wi-fi", "wireless internet", "internet"},
		outlet.AmenityParking:           {"parking", "car park", "carpark"},
		outlet.AmenityWheelchair:        {"wheelchair accessible", "wheelchair access", "wheelchair"},
		outlet.AmenityOutdoorSeating:    {"outdoor seating", "outdoor seats", "al fresco", "alfresco"},
	}
	var out []synonym
	for amenity, phrases := range table {
		for _, p := range phrases {
			out = append(out, synonym{phrase: p, amenity: amenity})
		}
	}
	// Longest phrase first so "no-contact delivery" wins over "delivery".
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].phrase) != len(out[j].phrase) {
			return len(out[i].phrase) > len(out[j].phrase)
		}
		return out[i].phrase < out[j].phrase
	})
	return out
}()

type amenityHit struct {
	start, end int
	amenity    string
}

// findAmenities returns amenity groups in question order. Amenities joined by
// "or" share a group (OR); separate groups are ANDed by the caller.
func findAmenities(lower string) [][]string {
	taken := make([]bool, len(lower))
	var hits []amenityHit
	for _, syn := range amenitySynonyms {
		from := 0
		for {
			i := strings.Index(lower[from:], syn.phrase)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(syn.phrase)
			from = end
			if !wordBoundary(lower, start, end) || anyTaken(taken, start, end) {
				continue
			}
			for k := start; k < end; k++ {
				taken[k] = true
			}
			hits = append(hits, amenityHit{start: start, end: end, amenity: syn.amenity})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	var groups [][]string
	for i, h := range hits {
		if i > 0 && isOrJoin(lower[hits[i-1].end:h.start]) {
			last := groups[len(groups)-1]
			if !contains(last, h.amenity) {
				groups[len(groups)-1] = append(last, h.amenity)
			}
			continue
		}
		if dupGroup(groups, h.amenity) {
			continue
		}
		groups = append(groups, []string{h.amenity})
	}
	return groups
}

func isOrJoin(between string) bool {
	between = strings.Trim(strings.TrimSpace(between), ",")
	between = strings.TrimSpace(between)
	return between == "or" || between == "or a" || between == "or an"
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 0x80
}

func anyTaken(taken []bool, start, end int) bool {
	for k := start; k < end; k++ {
		if taken[k] {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func dupGroup(groups [][]string, amenity string) bool {
	for _, g := range groups {
		if len(g) == 1 && g[0] == amenity {
			return true
		}
	}
	return false
}
