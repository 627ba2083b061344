package outlet

import (
	"sort"
	"strings"
)

// Canonical amenity names.
const (
	AmenityDineIn            = "dine-in"
	AmenityTakeaway          = "takeaway"
	AmenityDelivery          = "delivery"
	AmenityNoContactDelivery = "no-contact-delivery"
	AmenityDriveThrough      = "drive-through"
	AmenityKerbsidePickup    = "kerbside-pickup"
	AmenityInStorePickup     = "in-store-pickup"
	AmenityWiFi              = "wifi"
	AmenityParking           = "parking"
	AmenityWheelchair        = "wheelchair-accessible"
	AmenityOutdoorSeating    = "outdoor-seating"
)

var amenityAliases = map[string]string{
	"dinein":                         AmenityDineIn,
	"dine-in":                        AmenityDineIn,
	"take-away":                      AmenityTakeaway,
	"takeaway":                       AmenityTakeaway,
	"take-out":                       AmenityTakeaway,
	"takeout":                        AmenityTakeaway,
	"drive-thru":                     AmenityDriveThrough,
	"drive-through":                  AmenityDriveThrough,
	"drivethru":                      AmenityDriveThrough,
	"wi-fi":                          AmenityWiFi,
	"free-wi-fi":                     AmenityWiFi,
	"free-wifi":                      AmenityWiFi,
	"curbside-pickup":                AmenityKerbsidePickup,
	"kerbside-pick-up":               AmenityKerbsidePickup,
	"curbside-pick-up":               AmenityKerbsidePickup,
	"in-store-pick-up":               AmenityInStorePickup,
	"wheelchair-accessible-entrance": AmenityWheelchair,
	"car-park":                       AmenityParking,
	"free-parking":                   AmenityParking,
}

// NormalizeAmenity lower-cases, hyphenates and resolves known aliases
// ("Drive-thru" and "Drive through" both become "drive-through").
func NormalizeAmenity(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if canonical, ok := amenityAliases[s]; ok {
		return canonical
	}
	return s
}

// AmenitySet is a set of normalized amenity names.
type AmenitySet map[string]struct{}

// NewAmenitySet normalizes and collects the given names, skipping blanks.
func NewAmenitySet(names ...string) AmenitySet {
	set := make(AmenitySet, len(names))
	for _, n := range names {
		if norm := NormalizeAmenity(n); norm != "" {
			set[norm] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains the amenity.
func (s AmenitySet) Has(name string) bool {
	_, ok := s[NormalizeAmenity(name)]
	return ok
}

// HasAny reports whether at least one of names is present.
func (s AmenitySet) HasAny(names []string) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// Sorted returns the amenities in lexical order.
func (s AmenitySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
