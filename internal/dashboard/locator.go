package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// GeocodeBackend resolves free-text queries through the dashboard backend.
type GeocodeBackend interface {
	Geocode(ctx context.Context, query string) (domain.Location, error)
}

// Locator turns user input into a Location: text search through the
// backend's geocode endpoint, and coordinates from browser geolocation.
// An optional geocoder names detected coordinates and answers searches the
// backend could not.
type Locator struct {
	backend  GeocodeBackend
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewLocator creates a Locator. geocoder may be nil.
func NewLocator(backend GeocodeBackend, geocoder domain.Geocoder, logger *slog.Logger) *Locator {
	return &Locator{backend: backend, geocoder: geocoder, logger: logger}
}

// Search resolves query to a location.
func (l *Locator) Search(ctx context.Context, query string) (domain.Location, error) {
	loc, err := l.backend.Geocode(ctx, query)
	if err == nil {
		if verr := domain.ValidateCoordinates(loc.Lat, loc.Lon); verr != nil {
			return domain.Location{}, fmt.Errorf("geocode %q: %w", query, verr)
		}
		if loc.Name == "" {
			loc.Name = query
		}
		return loc, nil
	}
	if l.geocoder == nil || ctx.Err() != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}

	l.logger.Warn("backend geocoding failed, trying fallback geocoder", "query", query, "error", err)
	result, ferr := l.geocoder.ForwardGeocode(ctx, query)
	if ferr != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	loc, ok := domain.LocationFromGeocoding(query, result)
	if !ok {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	return loc, nil
}

// Detect builds the location for coordinates reported by the browser.
func (l *Locator) Detect(ctx context.Context, lat, lon float64) (domain.Location, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.Location{}, err
	}
	return domain.NameDetectedLocation(ctx, lat, lon, l.geocoder, l.logger), nil
}
