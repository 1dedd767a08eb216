package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name                           string
		minLon, minLat, maxLon, maxLat float64
		maxArea                        float64
		wantErr                        bool
	}{
		{"st andrews", -2.8473, 56.3207, -2.7600, 56.3672, 0.25, false},
		{"no area limit", -10, -10, 10, 10, 0, false},
		{"too large", -10, -10, 10, 10, 0.25, true},
		{"empty lon", 1, 1, 1, 2, 0, true},
		{"inverted lat", 0, 2, 1, 1, 0, true},
		{"lon out of range", -181, 0, 0, 1, 0, true},
		{"lat out of range", 0, 0, 1, 91, 0, true},
		{"nan", math.NaN(), 0, 1, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBounds(tt.minLon, tt.minLat, tt.maxLon, tt.maxLat, tt.maxArea)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBounds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBounds) {
				t.Errorf("ValidateBounds() code = %v, want %v", GetCode(err), ErrCodeInvalidBounds)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/graph.json", false},
		{"absolute", "/tmp/graph.json", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"123456", false},
		{"n-1", false},
		{"", true},
		{"   ", true},
		{strings.Repeat("1", 257), true},
		{"a\tb", true},
	}

	for _, tt := range tests {
		if err := ValidateNodeID(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
