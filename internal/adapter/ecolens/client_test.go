package ecolens

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, discardLogger())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_Snapshot_SendsCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/snapshot", r.URL.Path)
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.3522", r.URL.Query().Get("lon"))
		writeJSON(t, w, []domain.Metric{
			{Title: "Air Quality", Risk: "moderate", Description: "PM2.5 elevated", Value: 72, Color: "#FFC107"},
		})
	}))
	defer srv.Close()

	metrics, err := testClient(srv.URL).Snapshot(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, "Air Quality", metrics[0].Title)
	assert.Equal(t, 72, metrics[0].Value)
}

func TestClient_Map_SendsLayer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/map", r.URL.Path)
		assert.Equal(t, "noise", r.URL.Query().Get("layer"))
		writeJSON(t, w, map[string]any{
			"center":         map[string]float64{"lat": 51.5074, "lon": -0.1278},
			"layers":         []map[string]string{{"id": "noise", "name": "Acoustic Pollution", "color": "#E040FB"}},
			"pollutionZones": []map[string]any{{"lat": 51.51, "lon": -0.13, "severity": "high", "tooltip": "Construction Site"}},
		})
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Map(context.Background(), 51.5074, -0.1278, domain.LayerNoise)
	require.NoError(t, err)
	require.NotNil(t, data.Center)
	assert.Equal(t, 51.5074, data.Center.Lat)
	require.Len(t, data.PollutionZones, 1)
	assert.Equal(t, "high", data.PollutionZones[0].Severity)
}

func TestClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/geocode", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		writeJSON(t, w, domain.Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris"})
	}))
	defer srv.Close()

	loc, err := testClient(srv.URL + "/").Geocode(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, domain.Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris"}, loc)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"An unexpected error occurred"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Insights(context.Background(), 1, 2)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, EndpointInsights, statusErr.Endpoint)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode forecast response")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, discardLogger())
	_, err := c.ImpactScore(context.Background(), 1, 2)
	require.Error(t, err)
}

func TestClient_CreateReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/report", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var req domain.ReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.ReportRequest{Lat: 48.8566, Lon: 2.3522, Name: "Paris"}, req)

		_, _ = w.Write([]byte(`{"id":7,"location_name":"Paris","lat":48.8566,"lon":2.3522,` +
			`"aqi_value":72,"risk_level":"moderate","summary":"...","timestamp":"2026-04-26T15:10:00.5"}`))
	}))
	defer srv.Close()

	report, err := testClient(srv.URL).CreateReport(context.Background(),
		domain.Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 7, report.ID)
	assert.Equal(t, "moderate", report.RiskLevel)
	assert.Equal(t, 2026, report.Timestamp.Year())
}

func TestClient_DownloadReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/7/download", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", "attachment; filename=ecolens_report_Paris_7.txt")
		_, _ = w.Write([]byte("ECOLENS AI ENVIRONMENTAL ANALYSIS REPORT"))
	}))
	defer srv.Close()

	file, err := testClient(srv.URL).DownloadReport(context.Background(), 7, "fallback.txt")
	require.NoError(t, err)
	defer file.Body.Close()

	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, "ECOLENS AI ENVIRONMENTAL ANALYSIS REPORT", string(body))
	assert.Equal(t, "ecolens_report_Paris_7.txt", file.Filename)
	assert.Equal(t, "text/plain", file.ContentType)
}

func TestClient_DownloadReport_FallbackName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("report"))
	}))
	defer srv.Close()

	fallback := ReportFilename("London, UK", 3)
	file, err := testClient(srv.URL).DownloadReport(context.Background(), 3, fallback)
	require.NoError(t, err)
	defer file.Body.Close()

	assert.Equal(t, "ecolens_report_London,_UK_3.txt", file.Filename)
}

func TestClient_DownloadReport_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"Report not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).DownloadReport(context.Background(), 99, "x.txt")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_Join(t *testing.T) {
	var got domain.JoinRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/join", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":1,"email":"a@b.c","timestamp":"2026-04-26T15:10:00"}`))
	}))
	defer srv.Close()

	require.NoError(t, testClient(srv.URL).Join(context.Background(), "a@b.c"))
	assert.Equal(t, "a@b.c", got.Email)
}

func TestClient_CheckReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/overview" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, domain.Overview{Title: "EcoLens AI"})
	}))

	c := testClient(srv.URL)
	require.NoError(t, c.CheckReadiness(context.Background()))

	srv.Close()
	err := c.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unreachable")
}

func TestStatusError_Message(t *testing.T) {
	var err error = &StatusError{Endpoint: EndpointJoin, StatusCode: http.StatusBadRequest}
	wrapped := errors.Join(errors.New("context"), err)

	var statusErr *StatusError
	require.ErrorAs(t, wrapped, &statusErr)
	assert.Equal(t, "ecolens API error: join: status 400", statusErr.Error())
}
