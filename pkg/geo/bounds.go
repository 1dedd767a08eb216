package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Bounds is a geographic bounding region given as min/max longitude and latitude.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Bound converts to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}

// Contains reports whether p lies inside the bounds (edges inclusive).
func (b Bounds) Contains(p Position) bool {
	return b.Bound().Contains(p.Point())
}

// Empty reports whether the bounds cover no area.
func (b Bounds) Empty() bool {
	return b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat
}

// String formats the bounds in the "min_lon,min_lat,max_lon,max_lat" order
// used by the OSM API bbox parameter.
func (b Bounds) String() string {
	return strings.Join([]string{
		strconv.FormatFloat(b.MinLon, 'f', -1, 64),
		strconv.FormatFloat(b.MinLat, 'f', -1, 64),
		strconv.FormatFloat(b.MaxLon, 'f', -1, 64),
		strconv.FormatFloat(b.MaxLat, 'f', -1, 64),
	}, ",")
}

// ParseBounds parses "min_lon,min_lat,max_lon,max_lat".
// It only checks syntax; range checks live in errors.ValidateBounds.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bounds %q: want 4 comma-separated values, got %d", s, len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		vals[i] = v
	}
	return Bounds{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}, nil
}
