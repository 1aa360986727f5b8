package domain

import (
	"errors"
	"fmt"
	"math"
)

// DetectedLocationName labels coordinates obtained from browser geolocation
// when no place name can be resolved for them.
const DetectedLocationName = "Current Location"

// Location is the dashboard's selected place. It is always replaced as a
// whole, never mutated field by field.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// ErrInvalidCoordinates is returned for latitudes outside [-90, 90],
// longitudes outside [-180, 180] or non-finite values.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ValidateCoordinates checks that lat/lon describe a point on the globe.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: lat %v", ErrInvalidCoordinates, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: lon %v", ErrInvalidCoordinates, lon)
	}
	return nil
}

// SameCoordinates reports whether two locations point at the same place.
// Names are ignored: panels are keyed by coordinates only.
func (l Location) SameCoordinates(other Location) bool {
	return l.Lat == other.Lat && l.Lon == other.Lon
}

func (l Location) String() string {
	if l.Name == "" {
		return fmt.Sprintf("(%.4f, %.4f)", l.Lat, l.Lon)
	}
	return fmt.Sprintf("%s (%.4f, %.4f)", l.Name, l.Lat, l.Lon)
}
