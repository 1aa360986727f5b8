package domain

import (
	"context"
	"log/slog"
)

// NameDetectedLocation builds the Location for coordinates reported by the
// browser's geolocation API. When a geocoder is configured the place name is
// looked up. Any lookup failure falls back to DetectedLocationName.
func NameDetectedLocation(ctx context.Context, lat, lon float64, geocoder Geocoder, logger *slog.Logger) Location {
	loc := Location{Lat: lat, Lon: lon, Name: DetectedLocationName}
	if geocoder == nil {
		return loc
	}

	result, err := geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return loc
	}

	switch {
	case result.FormattedAddress != "":
		loc.Name = result.FormattedAddress
	case result.PlaceName != "":
		loc.Name = result.PlaceName
	}
	return loc
}

// LocationFromGeocoding converts a forward geocoding result into a Location.
// ok is false when the provider returned nothing usable.
func LocationFromGeocoding(query string, result GeocodingResult) (loc Location, ok bool) {
	if result.Lat == 0 && result.Lon == 0 {
		return Location{}, false
	}
	name := result.FormattedAddress
	if name == "" {
		name = result.PlaceName
	}
	if name == "" {
		name = query
	}
	return Location{Lat: result.Lat, Lon: result.Lon, Name: name}, true
}
