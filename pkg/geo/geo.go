// Package geo provides positions and great-circle distances for road graphs.
//
// Distances are computed with the Haversine formula on a sphere whose radius
// is [orb.EarthRadius] (6378137 m), delegated to [geo.DistanceHaversine] from
// github.com/paulmach/orb. The formula is fixed: every weight produced by the
// transform package depends on it, so switching formulas changes outputs.
//
// [geo.DistanceHaversine]: https://pkg.go.dev/github.com/paulmach/orb/geo#DistanceHaversine
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Position is a latitude/longitude pair in degrees.
// Positions are immutable once loaded into a graph.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts the position to an orb.Point, which is ordered [lon, lat].
func (p Position) Point() orb.Point { return orb.Point{p.Lon, p.Lat} }

// FromPoint converts an orb.Point back into a Position.
func FromPoint(pt orb.Point) Position { return Position{Lat: pt.Lat(), Lon: pt.Lon()} }

// Valid reports whether the position is finite and inside the WGS-84 range.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p Position) String() string { return fmt.Sprintf("(%.7f, %.7f)", p.Lat, p.Lon) }

// DistanceFunc returns the geodesic distance between two positions in kilometers.
// Implementations must be pure: the same inputs always yield the same output.
type DistanceFunc func(a, b Position) float64

// Distance is the default DistanceFunc: Haversine great-circle distance in kilometers.
func Distance(a, b Position) float64 {
	return orbgeo.DistanceHaversine(a.Point(), b.Point()) / 1000
}

var _ DistanceFunc = Distance
