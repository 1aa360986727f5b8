// Command mockapi serves canned EcoLens backend responses for local
// development. Every endpoint the dashboard consumes is answered from fixed
// fixtures; searches, reports and signups are kept in memory.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8000
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := sharedobs.NewLogger(*logLevel, "text")
	api := newMockAPI(clockwork.NewRealClock())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("mock backend listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("mock backend error", "error", err)
		os.Exit(1)
	}
}

// cities answers /api/geocode. Queries match when they contain the key.
var cities = []struct {
	key string
	loc domain.Location
}{
	{"london", domain.Location{Lat: 51.5074, Lon: -0.1278, Name: "London, UK"}},
	{"new york", domain.Location{Lat: 40.7128, Lon: -74.0060, Name: "New York, USA"}},
	{"delhi", domain.Location{Lat: 28.6139, Lon: 77.2090, Name: "Delhi, India"}},
	{"tokyo", domain.Location{Lat: 35.6762, Lon: 139.6503, Name: "Tokyo, Japan"}},
	{"paris", domain.Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris, France"}},
	{"mumbai", domain.Location{Lat: 19.0760, Lon: 72.8777, Name: "Mumbai, India"}},
	{"sydney", domain.Location{Lat: -33.8688, Lon: 151.2093, Name: "Sydney, Australia"}},
	{"berlin", domain.Location{Lat: 52.5200, Lon: 13.4050, Name: "Berlin, Germany"}},
}

var layers = []domain.MapLayer{
	{ID: domain.LayerAir, Name: "Air Quality Density", Color: domain.ColorRed},
	{ID: domain.LayerWater, Name: "Water Safety", Color: domain.ColorBlue},
	{ID: domain.LayerNoise, Name: "Acoustic Pollution", Color: "#E040FB"},
	{ID: domain.LayerWaste, Name: "Waste Management", Color: domain.ColorAmber},
}

// zoneOffset places a canned zone relative to the requested center.
type zoneOffset struct {
	dLat, dLon float64
	severity   string
	tooltip    string
}

var zones = map[string][]zoneOffset{
	domain.LayerAir: {
		{0.005, 0.005, domain.RiskModerate, "Air Station Alpha: 72 AQI"},
		{-0.008, 0.012, domain.RiskHigh, "Traffic Hotspot - High NO2"},
		{0.012, -0.015, domain.RiskLow, "Urban Forest - Clean Air Zone"},
	},
	domain.LayerWater: {
		{0.008, -0.010, domain.RiskModerate, "Reservoir B: Normal levels"},
		{-0.005, 0.008, domain.RiskLow, "Water Treatment Facility 1"},
		{0.015, 0.015, domain.RiskHigh, "Runoff Warning Area"},
	},
	domain.LayerWaste: {
		{-0.010, -0.005, domain.RiskHigh, "Overflowing Collection Point"},
		{0.006, 0.006, domain.RiskLow, "Recycling Center"},
		{-0.002, 0.015, domain.RiskModerate, "Landfill Proximity Zone"},
	},
	domain.LayerNoise: {
		{0.003, -0.008, domain.RiskHigh, "Construction Site: >85dB"},
		{-0.015, -0.012, domain.RiskModerate, "High Traffic Corridor"},
		{0.010, 0.005, domain.RiskLow, "Quiet Residential Zone"},
	},
}

var snapshot = []domain.Metric{
	{Title: "Air Quality", Risk: domain.RiskModerate, Description: "Moderate conditions detected. AI analysis suggests local industrial influence.", Value: 72, Color: domain.ColorAmber},
	{Title: "Water Safety", Risk: domain.RiskLow, Description: "Regional water quality is stable. AI recommends filtration.", Value: 45, Color: domain.ColorGreen},
	{Title: "Climate Stress", Risk: domain.RiskModerate, Description: "Temperature and humidity variations may impact localized comfort levels.", Value: 58, Color: domain.ColorAmber},
	{Title: "Waste Pressure", Risk: domain.RiskHigh, Description: "Waste density levels fluctuate based on local collection cycles.", Value: 84, Color: domain.ColorRed},
}

var insights = domain.Insights{
	Summary: "EcoLens AI Strategic Assessment: We have identified critical environmental stressors in Waste Pressure. " +
		"Ongoing monitoring is prioritized for Air Quality, Climate Stress. " +
		"Predictive modeling indicates that localized action could reverse these trends within a 24-month window.",
	ActionPlan: []domain.Action{
		{Title: "Avoid heavy traffic areas", Why: "Localized pollution peaks near busy intersections", Impact: "Reduces particulate inhalation by 30%", Difficulty: "Easy", Color: domain.ColorAmber},
		{Title: "Join local cleanup drives", Why: "Community waste levels are exceeding local capacity", Impact: "Reduces local landfill pressure by 15%", Difficulty: "Medium", Color: domain.ColorGreen},
		{Title: "Use HEPA air purifiers", Why: "Indoor air quality can be affected by outdoor pollution", Impact: "Cleans 99.9% of indoor particles", Difficulty: "Medium", Color: domain.ColorRed},
		{Title: "Support green spaces", Why: "Urban greenery filters particulates and cools streets", Impact: "Improves local air quality by 10%", Difficulty: "Medium", Color: domain.ColorGreen},
		{Title: "Use water filtration", Why: "Trace contaminants detected in regional supply", Impact: "Removes 95% of common contaminants", Difficulty: "Easy", Color: domain.ColorBlue},
	},
	ConfidenceScore: 0.92,
}

var impactScore = domain.ImpactScore{
	Score:    43,
	MaxScore: 100,
	Components: []domain.ScoreComponent{
		{Label: "Health Impact", Value: 28, Color: domain.ColorRed, Description: "Respiratory health improvement potential"},
		{Label: "Environmental Recovery", Value: 54, Color: domain.ColorGreen, Description: "Ecosystem restoration progress"},
		{Label: "Community Benefit", Value: 59, Color: domain.ColorBlue, Description: "Collective well-being improvement"},
	},
}

// mockAPI holds the in-memory records written by the POST endpoints.
type mockAPI struct {
	clock clockwork.Clock

	mu      sync.Mutex
	history []domain.SearchRecord
	reports []domain.Report
	joins   int
}

func newMockAPI(clk clockwork.Clock) *mockAPI {
	return &mockAPI{clock: clk}
}

func (m *mockAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", m.handleOverview)
		r.Get("/geocode", m.handleGeocode)
		r.Get("/history", m.handleHistory)
		r.Get("/map", m.handleMap)
		r.Get("/snapshot", m.handleSnapshot)
		r.Get("/insights", m.handleInsights)
		r.Get("/forecast", m.handleForecast)
		r.Get("/impact-score", m.handleImpactScore)
		r.Get("/impact-simulation", m.handleSimulation)
		r.Post("/report", m.handleCreateReport)
		r.Get("/reports", m.handleReports)
		r.Get("/reports/{id}/download", m.handleDownload)
		r.Post("/join", m.handleJoin)
	})
	return r
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func detail(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"detail": msg})
}

// coords parses the lat/lon query parameters.
func coords(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil || domain.ValidateCoordinates(lat, lon) != nil {
		detail(w, http.StatusUnprocessableEntity, "lat and lon are required")
		return 0, 0, false
	}
	return lat, lon, true
}

func (m *mockAPI) handleOverview(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Overview{
		Title:    "EcoLens AI",
		Subtitle: "Making Invisible Pollution Visible",
		Tagline:  "Predict · Explain · Act",
	})
}

func (m *mockAPI) handleGeocode(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	query := strings.ToLower(q)
	for _, c := range cities {
		if query != "" && strings.Contains(query, c.key) {
			m.mu.Lock()
			m.history = append(m.history, domain.SearchRecord{
				ID:        len(m.history) + 1,
				Query:     q,
				Name:      c.loc.Name,
				Lat:       c.loc.Lat,
				Lon:       c.loc.Lon,
				Timestamp: domain.Timestamp{Time: m.clock.Now().UTC()},
			})
			m.mu.Unlock()
			sharedobs.WriteJSON(w, http.StatusOK, c.loc)
			return
		}
	}
	detail(w, http.StatusNotFound, "Location not found")
}

func (m *mockAPI) handleHistory(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	out := make([]domain.SearchRecord, 0, 10)
	for i := len(m.history) - 1; i >= 0 && len(out) < 10; i-- {
		out = append(out, m.history[i])
	}
	m.mu.Unlock()
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (m *mockAPI) handleMap(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coords(w, r)
	if !ok {
		return
	}
	layer := r.URL.Query().Get("layer")
	if layer == "" {
		layer = domain.DefaultLayer
	}

	data := domain.MapData{
		Center:         &domain.Coordinates{Lat: lat, Lon: lon},
		Layers:         layers,
		PollutionZones: []domain.PollutionZone{},
	}
	for _, z := range zones[layer] {
		data.PollutionZones = append(data.PollutionZones, domain.PollutionZone{
			Lat:      lat + z.dLat,
			Lon:      lon + z.dLon,
			Severity: z.severity,
			Tooltip:  z.tooltip,
		})
	}
	sharedobs.WriteJSON(w, http.StatusOK, data)
}

func (m *mockAPI) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := coords(w, r); !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snapshot)
}

func (m *mockAPI) handleInsights(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := coords(w, r); !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, insights)
}

func (m *mockAPI) handleForecast(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := coords(w, r); !ok {
		return
	}
	base := snapshot[0].Value
	out := domain.Forecast{Forecast: make([]domain.ForecastPoint, 0, 7)}
	for i := range 7 {
		day := "Today"
		if i > 0 {
			day = fmt.Sprintf("Day %d", i+1)
		}
		out.Forecast = append(out.Forecast, domain.ForecastPoint{
			Day:        day,
			Current:    base + 3*i,
			WithAction: max(0, base-4*i),
		})
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (m *mockAPI) handleImpactScore(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := coords(w, r); !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, impactScore)
}

func (m *mockAPI) handleSimulation(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := coords(w, r); !ok {
		return
	}
	out := domain.Simulation{ReductionPercentages: make(map[string]int, len(snapshot))}
	for _, metric := range snapshot {
		out.CurrentData = append(out.CurrentData, domain.SimulationItem{Category: metric.Title, Value: metric.Value})
		out.ImprovedData = append(out.ImprovedData, domain.SimulationItem{Category: metric.Title, Value: metric.Value * 6 / 10})
		out.ReductionPercentages[metric.Title] = 40
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func reportSummary(req domain.ReportRequest) string {
	var b strings.Builder
	b.WriteString("ECOLENS AI ENVIRONMENTAL ANALYSIS REPORT\n")
	b.WriteString("======================================\n")
	fmt.Fprintf(&b, "Location: %s\n", req.Name)
	fmt.Fprintf(&b, "Coordinates: %v, %v\n", req.Lat, req.Lon)
	fmt.Fprintf(&b, "Risk Level: %s\n", strings.ToUpper(snapshot[0].Risk))
	fmt.Fprintf(&b, "Air Quality Index: %d\n\n", snapshot[0].Value)
	b.WriteString("Detailed Assessment:\n")
	for _, metric := range snapshot {
		fmt.Fprintf(&b, "- %s: %d (%s risk) - %s\n", metric.Title, metric.Value, metric.Risk, metric.Description)
	}
	return b.String()
}

func (m *mockAPI) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	m.mu.Lock()
	report := domain.Report{
		ID:           len(m.reports) + 1,
		LocationName: req.Name,
		Lat:          req.Lat,
		Lon:          req.Lon,
		AQIValue:     snapshot[0].Value,
		RiskLevel:    snapshot[0].Risk,
		Summary:      reportSummary(req),
		Timestamp:    domain.Timestamp{Time: m.clock.Now().UTC()},
	}
	m.reports = append(m.reports, report)
	m.mu.Unlock()

	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (m *mockAPI) handleReports(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	out := make([]domain.Report, 0, len(m.reports))
	for i := len(m.reports) - 1; i >= 0; i-- {
		out = append(out, m.reports[i])
	}
	m.mu.Unlock()
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (m *mockAPI) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	m.mu.Lock()
	var report *domain.Report
	if err == nil && id >= 1 && id <= len(m.reports) {
		report = &m.reports[id-1]
	}
	m.mu.Unlock()
	if report == nil {
		detail(w, http.StatusNotFound, "Report not found")
		return
	}

	filename := fmt.Sprintf("ecolens_report_%s_%d.txt", strings.ReplaceAll(report.LocationName, " ", "_"), report.ID)
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write([]byte(report.Summary))
}

// joinResponse mirrors the backend's signup record.
type joinResponse struct {
	ID        int              `json:"id"`
	Email     string           `json:"email"`
	Timestamp domain.Timestamp `json:"timestamp"`
}

func (m *mockAPI) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req domain.JoinRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		detail(w, http.StatusUnprocessableEntity, "email is required")
		return
	}

	m.mu.Lock()
	m.joins++
	resp := joinResponse{ID: m.joins, Email: req.Email, Timestamp: domain.Timestamp{Time: m.clock.Now().UTC()}}
	m.mu.Unlock()

	sharedobs.WriteJSON(w, http.StatusOK, resp)
}
