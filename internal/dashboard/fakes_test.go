package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/jonboulle/clockwork"
)

var (
	london = domain.Location{Lat: 51.5074, Lon: -0.1278, Name: "London, UK"}
	paris  = domain.Location{Lat: 48.8566, Lon: 2.3522, Name: "Paris"}
)

type call struct {
	endpoint string
	lat, lon float64
	layer    string
}

// fakeBackend records every call and answers with canned data. Endpoints in
// failing return errBackend. Endpoints in blocking wait for release.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []call
	failing  map[string]bool
	blocking map[string]chan struct{}
	geocode  map[string]domain.Location
	reportID int
	joined   []string
}

var errBackend = errors.New("backend down")

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failing:  make(map[string]bool),
		blocking: make(map[string]chan struct{}),
		geocode:  map[string]domain.Location{"Paris": paris},
		reportID: 7,
	}
}

func (f *fakeBackend) fail(endpoint string, failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[endpoint] = failing
}

func (f *fakeBackend) block(endpoint string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.blocking[endpoint] = ch
	return ch
}

func (f *fakeBackend) unblock(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blocking, endpoint)
}

func (f *fakeBackend) record(ctx context.Context, c call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	failing := f.failing[c.endpoint]
	gate := f.blocking[c.endpoint]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if failing {
		return errBackend
	}
	return nil
}

func (f *fakeBackend) callsTo(endpoint string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) Geocode(ctx context.Context, query string) (domain.Location, error) {
	if err := f.record(ctx, call{endpoint: "geocode"}); err != nil {
		return domain.Location{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	loc, ok := f.geocode[query]
	if !ok {
		return domain.Location{}, errors.New("location not found")
	}
	return loc, nil
}

func (f *fakeBackend) Overview(ctx context.Context) (domain.Overview, error) {
	if err := f.record(ctx, call{endpoint: "overview"}); err != nil {
		return domain.Overview{}, err
	}
	return domain.Overview{Title: "EcoLens AI", Subtitle: "Making Invisible Pollution Visible", Tagline: "Predict · Explain · Act"}, nil
}

func (f *fakeBackend) Map(ctx context.Context, lat, lon float64, layer string) (domain.MapData, error) {
	if err := f.record(ctx, call{endpoint: "map", lat: lat, lon: lon, layer: layer}); err != nil {
		return domain.MapData{}, err
	}
	return domain.MapData{
		Center: &domain.Coordinates{Lat: lat, Lon: lon},
		Layers: []domain.MapLayer{{ID: layer, Name: layer, Color: domain.ColorRed}},
		PollutionZones: []domain.PollutionZone{
			{Lat: lat + 0.01, Lon: lon + 0.01, Severity: domain.RiskHigh, Tooltip: "Traffic Hotspot - High NO2"},
		},
	}, nil
}

func (f *fakeBackend) Snapshot(ctx context.Context, lat, lon float64) ([]domain.Metric, error) {
	if err := f.record(ctx, call{endpoint: "snapshot", lat: lat, lon: lon}); err != nil {
		return nil, err
	}
	return []domain.Metric{{Title: "Air Quality", Risk: domain.RiskModerate, Value: int(lat), Color: domain.ColorAmber}}, nil
}

func (f *fakeBackend) Insights(ctx context.Context, lat, lon float64) (domain.Insights, error) {
	if err := f.record(ctx, call{endpoint: "insights", lat: lat, lon: lon}); err != nil {
		return domain.Insights{}, err
	}
	return domain.Insights{
		Summary: "Air quality is moderate.",
		ActionPlan: []domain.Action{
			{Title: "Use Public Transport"},
			{Title: "Wear N95 Masks Outdoors"},
			{Title: "Plant Trees"},
			{Title: "Reduce Plastic Use"},
			{Title: "Carpool"},
			{Title: "Report Illegal Dumping"},
		},
		ConfidenceScore: 0.92,
	}, nil
}

func (f *fakeBackend) Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	if err := f.record(ctx, call{endpoint: "forecast", lat: lat, lon: lon}); err != nil {
		return domain.Forecast{}, err
	}
	return domain.Forecast{Forecast: []domain.ForecastPoint{{Day: "Today", Current: 72, WithAction: 72}}}, nil
}

func (f *fakeBackend) ImpactScore(ctx context.Context, lat, lon float64) (domain.ImpactScore, error) {
	if err := f.record(ctx, call{endpoint: "impact-score", lat: lat, lon: lon}); err != nil {
		return domain.ImpactScore{}, err
	}
	return domain.ImpactScore{Score: 78, MaxScore: 100}, nil
}

func (f *fakeBackend) ImpactSimulation(ctx context.Context, lat, lon float64) (domain.Simulation, error) {
	if err := f.record(ctx, call{endpoint: "impact-simulation", lat: lat, lon: lon}); err != nil {
		return domain.Simulation{}, err
	}
	return domain.Simulation{
		CurrentData:          []domain.SimulationItem{{Category: "Air Quality", Value: 85}},
		ImprovedData:         []domain.SimulationItem{{Category: "Air Quality", Value: 51}},
		ReductionPercentages: map[string]int{"Air Quality": 40},
	}, nil
}

func (f *fakeBackend) History(ctx context.Context) ([]domain.SearchRecord, error) {
	if err := f.record(ctx, call{endpoint: "history"}); err != nil {
		return nil, err
	}
	return []domain.SearchRecord{{ID: 3, Query: "paris", Name: "Paris", Lat: paris.Lat, Lon: paris.Lon}}, nil
}

func (f *fakeBackend) CreateReport(ctx context.Context, loc domain.Location) (domain.Report, error) {
	if err := f.record(ctx, call{endpoint: "report", lat: loc.Lat, lon: loc.Lon}); err != nil {
		return domain.Report{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Report{ID: f.reportID, LocationName: loc.Name}, nil
}

func (f *fakeBackend) Join(ctx context.Context, email string) error {
	if err := f.record(ctx, call{endpoint: "join"}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, email)
	return nil
}

type fakeGeocoder struct {
	forward    domain.GeocodingResult
	forwardErr error
	reverse    domain.GeocodingResult
	reverseErr error
}

func (g *fakeGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	return g.forward, g.forwardErr
}

func (g *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	return g.reverse, g.reverseErr
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (p *recordingPublisher) Publish(evt domain.ActivityEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return true
}

func (p *recordingPublisher) types() []domain.ActivityType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ActivityType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(backend Backend) Config {
	return Config{
		Backend:         backend,
		Logger:          discardLogger(),
		Metrics:         observability.NewMetricsForTesting(),
		Clock:           clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)),
		DefaultLocation: london,
		ActionRate:      100,
		ActionBurst:     100,
	}
}

func newTestDashboard(t *testing.T, backend Backend) *Dashboard {
	t.Helper()
	d := New("sess-1", testConfig(backend))
	t.Cleanup(d.Close)
	return d
}

// gatedPublisher holds the first event until release is closed.
type gatedPublisher struct {
	once    sync.Once
	held    chan struct{}
	release chan struct{}
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{held: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedPublisher) Publish(_ domain.ActivityEvent) bool {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.held)
		<-p.release
	}
	return true
}
