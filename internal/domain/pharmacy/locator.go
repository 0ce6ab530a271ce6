package pharmacy

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
)

const earthRadiusMiles = 3958.8

// MilesBetween returns the great-circle (haversine) distance in miles.
func MilesBetween(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)

	x := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(x))
}

func toRad(v float64) float64 {
	return v * math.Pi / 180
}

// Filter keeps places whose name or address contains the query,
// case-insensitively. An empty query matches everything.
func Filter(places []Place, query string) []Place {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Place(nil), places...)
	}

	out := make([]Place, 0, len(places))
	for _, p := range places {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Address), q) {
			out = append(out, p)
		}
	}
	return out
}

// RankByDistance annotates each place with its distance from origin and
// sorts nearest first. Places without a resolvable coordinate sort last,
// keeping their relative order, as do distance ties.
func RankByDistance(places []Place, origin Coordinate) []Place {
	ranked := make([]Place, len(places))
	for i, p := range places {
		if point, ok := p.Coordinate(); ok {
			d := MilesBetween(origin, point)
			p.DistanceMiles = &d
		}
		ranked[i] = p
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].DistanceMiles, ranked[j].DistanceMiles
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return ranked
}

// NormalizePhone strips everything except digits, keeping a single leading
// plus when the raw value starts with one.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits.String()
	}
	return digits.String()
}

// DialTarget returns the tel: URL for raw, or "" when no digits remain.
func DialTarget(raw string) string {
	phone := NormalizePhone(raw)
	if phone == "" {
		return ""
	}
	return "tel:" + phone
}

// DirectionsURL builds a driving-directions link addressed by street address
// when one exists, raw coordinate otherwise.
func DirectionsURL(p Place) string {
	if addr := strings.TrimSpace(p.Address); addr != "" {
		return "https://www.google.com/maps/dir/?api=1&destination=" + url.QueryEscape(addr)
	}
	if point, ok := p.Coordinate(); ok {
		return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%v,%v", point.Lat, point.Lng)
	}
	return "https://www.google.com/maps"
}
