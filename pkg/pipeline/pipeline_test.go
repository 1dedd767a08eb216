package pipeline

import (
	"testing"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph/transform"
)

var standrews = geo.Bounds{MinLon: -2.8473, MinLat: 56.3207, MaxLon: -2.7600, MaxLat: 56.3672}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"geojson", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "svg"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"json", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Bounds: standrews}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Component != DefaultComponent {
		t.Errorf("Component should be %s, got %s", DefaultComponent, opts.Component)
	}
	if opts.Parallel != DefaultParallel {
		t.Errorf("Parallel should be %s, got %s", DefaultParallel, opts.Parallel)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers should be %d, got %d", DefaultWorkers, opts.Workers)
	}
	if !opts.RoadsOnly() {
		t.Error("RoadsOnly should default to true")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing bbox", Options{}},
		{"inverted bbox", Options{Bounds: geo.Bounds{MinLon: 1, MinLat: 1, MaxLon: 0, MaxLat: 2}}},
		{"oversized bbox", Options{Bounds: geo.Bounds{MinLon: 0, MinLat: 0, MaxLon: 2, MaxLat: 2}}},
		{"unknown component", Options{Bounds: standrews, Component: "biggest"}},
		{"unknown parallel policy", Options{Bounds: standrews, Parallel: "sum"}},
		{"negative workers", Options{Bounds: standrews, Workers: -1}},
		{"too many workers", Options{Bounds: standrews, Workers: MaxWorkers + 1}},
		{"unknown format", Options{Bounds: standrews, Formats: []string{"pdf"}}},
		{"blank root", Options{Bounds: standrews, Root: "  "}},
		{"control character in root", Options{Bounds: standrews, Root: "26862564\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("ValidateAndSetDefaults() error = nil")
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Bounds: standrews, Component: "first"}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalComponent := opts.Component
	originalParallel := opts.Parallel

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Component != originalComponent {
		t.Error("Component changed on second call")
	}
	if opts.Parallel != originalParallel {
		t.Error("Parallel changed on second call")
	}
}

func TestOptionsTransformOptions(t *testing.T) {
	opts := Options{Component: "first", Root: "42", Parallel: "keep-min", Workers: 4}
	if err := opts.ValidateForSimplify(); err != nil {
		t.Fatal(err)
	}

	w := opts.WeightOptions()
	if w.Component != transform.ComponentFirst || w.Root != "42" || w.Workers != 4 {
		t.Errorf("WeightOptions() = %+v", w)
	}
	if c := opts.CollapseOptions(); c.Parallel != transform.ParallelKeepMin {
		t.Errorf("CollapseOptions() = %+v", c)
	}

	// Workers does not change the result, so it stays out of the cache key.
	other := opts
	other.Workers = 1
	if opts.ResultKeyOpts() != other.ResultKeyOpts() {
		t.Error("ResultKeyOpts should not depend on Workers")
	}
}

func TestOptionsRoadsOnly(t *testing.T) {
	off := false
	opts := Options{OnlyRoads: &off}
	if opts.RoadsOnly() {
		t.Error("explicit false should disable the highway filter")
	}
	var defaults Options
	if opts.GraphKeyOpts() == defaults.GraphKeyOpts() {
		t.Error("GraphKeyOpts should differ when the highway filter changes")
	}
}
