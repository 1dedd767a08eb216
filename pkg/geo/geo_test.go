package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want float64 // km
		tol  float64
	}{
		{"same point", Position{56.34, -2.80}, Position{56.34, -2.80}, 0, 1e-12},
		// One degree of latitude on a 6378.137 km sphere.
		{"one degree lat", Position{0, 0}, Position{1, 0}, 6378.137 * math.Pi / 180, 1e-6},
		{"one degree lon at equator", Position{0, 0}, Position{0, 1}, 6378.137 * math.Pi / 180, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Position{Lat: 56.3207, Lon: -2.8473}
	b := Position{Lat: 56.3672, Lon: -2.7600}
	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-12 {
		t.Errorf("Distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestPositionValid(t *testing.T) {
	tests := []struct {
		p    Position
		want bool
	}{
		{Position{0, 0}, true},
		{Position{90, 180}, true},
		{Position{-90, -180}, true},
		{Position{90.1, 0}, false},
		{Position{0, -180.5}, false},
		{Position{math.NaN(), 0}, false},
		{Position{0, math.Inf(1)}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPointRoundTrip(t *testing.T) {
	p := Position{Lat: 56.34, Lon: -2.79}
	if got := FromPoint(p.Point()); got != p {
		t.Errorf("FromPoint(Point()) = %v, want %v", got, p)
	}
}

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds("-2.8473, 56.3207,-2.7600,56.3672")
	if err != nil {
		t.Fatalf("ParseBounds() error: %v", err)
	}
	want := Bounds{MinLon: -2.8473, MinLat: 56.3207, MaxLon: -2.76, MaxLat: 56.3672}
	if b != want {
		t.Errorf("ParseBounds() = %+v, want %+v", b, want)
	}
	if b.String() != "-2.8473,56.3207,-2.76,56.3672" {
		t.Errorf("String() = %q", b.String())
	}
	if !b.Contains(Position{Lat: 56.34, Lon: -2.8}) {
		t.Error("Contains() should include interior point")
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		if _, err := ParseBounds(bad); err == nil {
			t.Errorf("ParseBounds(%q) should fail", bad)
		}
	}
}
