package tasks

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Location is a parsed "latitude,longitude" pair.
type Location struct {
	Lat float64
	Lng float64
}

// ParseLocation parses s as "lat,lng". An empty string yields a nil
// location and no error.
func ParseLocation(s string) (*Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("location %q: expected \"lat,lng\"", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("location %q: invalid latitude: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("location %q: invalid longitude: %w", s, err)
	}

	if math.IsNaN(lat) || math.IsNaN(lng) {
		return nil, fmt.Errorf("location %q: coordinates must be numbers", s)
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("location %q: latitude must be between -90 and 90", s)
	}
	if lng < -180 || lng > 180 {
		return nil, fmt.Errorf("location %q: longitude must be between -180 and 180", s)
	}

	return &Location{Lat: lat, Lng: lng}, nil
}

// String formats the location back into its "lat,lng" form.
func (l Location) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}
