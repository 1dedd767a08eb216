package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateBounds validates a bounding region given as min/max longitude and
// latitude in degrees. The region must be non-empty and inside WGS-84 range.
//
// maxArea limits the covered area in square degrees; 0 disables the check.
// The OSM API rejects map calls above 0.25 square degrees.
func ValidateBounds(minLon, minLat, maxLon, maxLat, maxArea float64) error {
	for _, v := range []float64{minLon, minLat, maxLon, maxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidBounds, "bounds must be finite")
		}
	}
	if minLon < -180 || maxLon > 180 {
		return New(ErrCodeInvalidBounds, "longitude out of range [-180, 180]")
	}
	if minLat < -90 || maxLat > 90 {
		return New(ErrCodeInvalidBounds, "latitude out of range [-90, 90]")
	}
	if minLon >= maxLon || minLat >= maxLat {
		return New(ErrCodeInvalidBounds, "bounds are empty (min must be below max)")
	}
	if area := (maxLon - minLon) * (maxLat - minLat); maxArea > 0 && area > maxArea {
		return New(ErrCodeInvalidBounds, "bounds cover %.4f square degrees (max %.4f)", area, maxArea)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateNodeID validates a node identifier received from an external source.
func ValidateNodeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node ID too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID contains invalid control characters")
		}
	}
	return nil
}
