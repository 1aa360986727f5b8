package domain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	forwardResult GeocodingResult
	forwardErr    error
	reverseResult GeocodingResult
	reverseErr    error
	forwardCalls  int
	reverseCalls  int
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, _ string) (GeocodingResult, error) {
	m.forwardCalls++
	return m.forwardResult, m.forwardErr
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.reverseCalls++
	return m.reverseResult, m.reverseErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestNameDetectedLocation_NilGeocoder(t *testing.T) {
	loc := NameDetectedLocation(context.Background(), 40.7128, -74.0060, nil, discardLogger())

	assert.Equal(t, Location{Lat: 40.7128, Lon: -74.0060, Name: DetectedLocationName}, loc)
}

func TestNameDetectedLocation_FormattedAddress(t *testing.T) {
	geo := &mockGeocoder{
		reverseResult: GeocodingResult{
			FormattedAddress: "New York, New York, United States",
			PlaceName:        "New York",
			Confidence:       0.98,
		},
	}

	loc := NameDetectedLocation(context.Background(), 40.7128, -74.0060, geo, discardLogger())

	assert.Equal(t, "New York, New York, United States", loc.Name)
	assert.Equal(t, 40.7128, loc.Lat)
	assert.Equal(t, -74.0060, loc.Lon)
	assert.Equal(t, 1, geo.reverseCalls)
	assert.Equal(t, 0, geo.forwardCalls)
}

func TestNameDetectedLocation_PlaceNameOnly(t *testing.T) {
	geo := &mockGeocoder{reverseResult: GeocodingResult{PlaceName: "Brooklyn"}}

	loc := NameDetectedLocation(context.Background(), 40.6782, -73.9442, geo, discardLogger())

	assert.Equal(t, "Brooklyn", loc.Name)
}

func TestNameDetectedLocation_ErrorFallsBack(t *testing.T) {
	geo := &mockGeocoder{reverseErr: errors.New("rate limited")}

	loc := NameDetectedLocation(context.Background(), 40.7128, -74.0060, geo, discardLogger())

	assert.Equal(t, DetectedLocationName, loc.Name)
	assert.Equal(t, 40.7128, loc.Lat) // coordinates preserved
}

func TestNameDetectedLocation_EmptyResultFallsBack(t *testing.T) {
	geo := &mockGeocoder{}

	loc := NameDetectedLocation(context.Background(), 1, 2, geo, discardLogger())

	assert.Equal(t, DetectedLocationName, loc.Name)
}

func TestLocationFromGeocoding(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		result GeocodingResult
		want   Location
		ok     bool
	}{
		{
			name:   "formatted address preferred",
			query:  "paris",
			result: GeocodingResult{Lat: 48.8566, Lon: 2.3522, FormattedAddress: "Paris, France", PlaceName: "Paris"},
			want:   Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris, France"},
			ok:     true,
		},
		{
			name:   "place name fallback",
			query:  "paris",
			result: GeocodingResult{Lat: 48.8566, Lon: 2.3522, PlaceName: "Paris"},
			want:   Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris"},
			ok:     true,
		},
		{
			name:   "query fallback",
			query:  "paris",
			result: GeocodingResult{Lat: 48.8566, Lon: 2.3522},
			want:   Location{Lat: 48.8566, Lon: 2.3522, Name: "paris"},
			ok:     true,
		},
		{
			name:   "no coordinates",
			query:  "nowhere",
			result: GeocodingResult{PlaceName: "Nowhere"},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LocationFromGeocoding(tt.query, tt.result)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(48.8566, 2.3522))
	assert.NoError(t, ValidateCoordinates(-90, 180))
	assert.ErrorIs(t, ValidateCoordinates(91, 0), ErrInvalidCoordinates)
	assert.ErrorIs(t, ValidateCoordinates(0, -181), ErrInvalidCoordinates)
}

func TestLocation_SameCoordinates(t *testing.T) {
	loc := Location{Lat: 48.85661, Lon: 2.35222, Name: "Paris"}

	assert.True(t, loc.SameCoordinates(Location{Lat: 48.85661, Lon: 2.35222}))
	assert.False(t, loc.SameCoordinates(Location{Lat: 48.8566, Lon: 2.3522}))
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var rec SearchRecord
	assert.NoError(t, json.Unmarshal([]byte(`{"id":1,"timestamp":"2026-04-26T15:10:00.123456"}`), &rec))
	assert.Equal(t, time.Date(2026, 4, 26, 15, 10, 0, 123456000, time.UTC), rec.Timestamp.Time)

	assert.NoError(t, json.Unmarshal([]byte(`{"id":2,"timestamp":"2026-04-26T15:10:00+02:00"}`), &rec))
	assert.Equal(t, 13, rec.Timestamp.UTC().Hour())

	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &rec))
}
