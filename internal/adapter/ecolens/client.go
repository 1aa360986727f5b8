// Package ecolens is the typed HTTP client for the EcoLens backend API.
package ecolens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// Endpoint names, also used as cache and metric labels.
const (
	EndpointOverview   = "overview"
	EndpointGeocode    = "geocode"
	EndpointMap        = "map"
	EndpointSnapshot   = "snapshot"
	EndpointInsights   = "insights"
	EndpointForecast   = "forecast"
	EndpointImpact     = "impact-score"
	EndpointSimulation = "impact-simulation"
	EndpointReport     = "report"
	EndpointReports    = "reports"
	EndpointHistory    = "history"
	EndpointJoin       = "join"
)

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ecolens API error: %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("ecolens API error: %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// ReportFile is a streamed report download. Callers must close Body.
type ReportFile struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// Client calls the backend API. Every URL is built from a single base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client for baseURL (e.g. http://localhost:8000).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Overview fetches the hero banner copy.
func (c *Client) Overview(ctx context.Context) (domain.Overview, error) {
	var out domain.Overview
	err := c.getJSON(ctx, EndpointOverview, nil, &out)
	return out, err
}

// Geocode resolves a free-text query to a location.
func (c *Client) Geocode(ctx context.Context, query string) (domain.Location, error) {
	var out domain.Location
	err := c.getJSON(ctx, EndpointGeocode, url.Values{"q": {query}}, &out)
	return out, err
}

// Map fetches map layers and pollution zones for a location and layer.
func (c *Client) Map(ctx context.Context, lat, lon float64, layer string) (domain.MapData, error) {
	params := coordParams(lat, lon)
	params.Set("layer", layer)
	var out domain.MapData
	err := c.getJSON(ctx, EndpointMap, params, &out)
	return out, err
}

// Snapshot fetches the metric cards for a location.
func (c *Client) Snapshot(ctx context.Context, lat, lon float64) ([]domain.Metric, error) {
	var out []domain.Metric
	err := c.getJSON(ctx, EndpointSnapshot, coordParams(lat, lon), &out)
	return out, err
}

// Insights fetches the AI summary and action plan for a location.
func (c *Client) Insights(ctx context.Context, lat, lon float64) (domain.Insights, error) {
	var out domain.Insights
	err := c.getJSON(ctx, EndpointInsights, coordParams(lat, lon), &out)
	return out, err
}

// Forecast fetches the multi-day forecast for a location.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	var out domain.Forecast
	err := c.getJSON(ctx, EndpointForecast, coordParams(lat, lon), &out)
	return out, err
}

// ImpactScore fetches the composite impact score for a location.
func (c *Client) ImpactScore(ctx context.Context, lat, lon float64) (domain.ImpactScore, error) {
	var out domain.ImpactScore
	err := c.getJSON(ctx, EndpointImpact, coordParams(lat, lon), &out)
	return out, err
}

// ImpactSimulation fetches the before/after simulation series for a location.
func (c *Client) ImpactSimulation(ctx context.Context, lat, lon float64) (domain.Simulation, error) {
	var out domain.Simulation
	err := c.getJSON(ctx, EndpointSimulation, coordParams(lat, lon), &out)
	return out, err
}

// History fetches the most recent searches.
func (c *Client) History(ctx context.Context) ([]domain.SearchRecord, error) {
	var out []domain.SearchRecord
	err := c.getJSON(ctx, EndpointHistory, nil, &out)
	return out, err
}

// Reports lists previously generated reports.
func (c *Client) Reports(ctx context.Context) ([]domain.Report, error) {
	var out []domain.Report
	err := c.getJSON(ctx, EndpointReports, nil, &out)
	return out, err
}

// CreateReport asks the backend to generate a report for a location.
func (c *Client) CreateReport(ctx context.Context, loc domain.Location) (domain.Report, error) {
	var out domain.Report
	body := domain.ReportRequest{Lat: loc.Lat, Lon: loc.Lon, Name: loc.Name}
	err := c.postJSON(ctx, EndpointReport, body, &out)
	return out, err
}

// Join registers an email address for climate action updates.
func (c *Client) Join(ctx context.Context, email string) error {
	return c.postJSON(ctx, EndpointJoin, domain.JoinRequest{Email: email}, nil)
}

// DownloadReport opens the report file stream. The filename comes from the
// backend's Content-Disposition header, falling back to fallbackName.
func (c *Client) DownloadReport(ctx context.Context, id int, fallbackName string) (*ReportFile, error) {
	u := fmt.Sprintf("%s/api/reports/%d/download", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report download request: %w", err)
	}
	if err := checkStatus(resp, "report download"); err != nil {
		resp.Body.Close()
		return nil, err
	}

	file := &ReportFile{
		Body:        resp.Body,
		Filename:    fallbackName,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		file.Filename = params["filename"]
	}
	if file.ContentType == "" {
		file.ContentType = "text/plain; charset=utf-8"
	}
	return file, nil
}

// CheckReadiness reports whether the backend answers the overview endpoint.
func (c *Client) CheckReadiness(ctx context.Context) error {
	_, err := c.Overview(ctx)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + "/api/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, endpoint, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, endpoint, out)
}

func (c *Client) doRequest(req *http.Request, endpoint string, out any) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if err := checkStatus(resp, endpoint); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func checkStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func coordParams(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// ReportFilename is the download name used when the backend sends none:
// ecolens_report_<name with spaces replaced by underscores>_<id>.txt.
func ReportFilename(name string, id int) string {
	return fmt.Sprintf("ecolens_report_%s_%d.txt", strings.ReplaceAll(name, " ", "_"), id)
}
