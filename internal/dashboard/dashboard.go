// Package dashboard holds the server-side state of a dashboard session: the
// selected location, one panel per backend view-model and the UI-only state
// (map layer, carousel, simulation toggle, signup).
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

var (
	ErrEmptyQuery   = errors.New("enter a location to search")
	ErrEmptyEmail   = errors.New("enter an email address")
	ErrRateLimited  = errors.New("too many requests, slow down")
	ErrNoReport     = errors.New("no report generated for this location")
	ErrAnalyzing    = errors.New("report generation already in progress")
	ErrUnknownLayer = errors.New("unknown map layer")
	ErrClosed       = errors.New("dashboard closed")
)

// MapUnavailableMessage is shown on the map panel when its data cannot be
// fetched.
const MapUnavailableMessage = "Unable to connect to environmental data stream. Please ensure backend is running."

// Location change sources, used as metric labels.
const (
	SourceDefault = "default"
	SourceSearch  = "search"
	SourceDetect  = "detect"
	SourceHistory = "history"
)

// Backend is the subset of the backend API a dashboard reads.
type Backend interface {
	GeocodeBackend
	Overview(ctx context.Context) (domain.Overview, error)
	Map(ctx context.Context, lat, lon float64, layer string) (domain.MapData, error)
	Snapshot(ctx context.Context, lat, lon float64) ([]domain.Metric, error)
	Insights(ctx context.Context, lat, lon float64) (domain.Insights, error)
	Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error)
	ImpactScore(ctx context.Context, lat, lon float64) (domain.ImpactScore, error)
	ImpactSimulation(ctx context.Context, lat, lon float64) (domain.Simulation, error)
	History(ctx context.Context) ([]domain.SearchRecord, error)
	CreateReport(ctx context.Context, loc domain.Location) (domain.Report, error)
	Join(ctx context.Context, email string) error
}

// EventPublisher receives session activity. Publish must not block.
type EventPublisher interface {
	Publish(evt domain.ActivityEvent) bool
}

// Config wires a dashboard's collaborators.
type Config struct {
	Backend  Backend
	Geocoder domain.Geocoder // optional
	Events   EventPublisher  // optional
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Clock    clockwork.Clock // defaults to the real clock

	DefaultLocation domain.Location
	ActionRate      float64
	ActionBurst     int
}

// Dashboard is one browser session's dashboard.
type Dashboard struct {
	id      string
	backend Backend
	locator *Locator
	events  EventPublisher
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	locMu sync.Mutex
	shell *Shell

	Overview   *Panel[domain.Overview]
	Map        *Panel[domain.MapData]
	Snapshot   *Panel[[]domain.Metric]
	Insights   *Panel[domain.Insights]
	Forecast   *Panel[domain.Forecast]
	Impact     *Panel[domain.ImpactScore]
	Simulation *Panel[domain.Simulation]
	History    *Panel[[]domain.SearchRecord]

	mu         sync.Mutex
	closed     bool
	layer      string
	carousel   domain.Carousel
	simulation domain.SimulationToggle
	joined     bool
}

// New creates the dashboard for session id at cfg.DefaultLocation and starts
// loading every panel.
func New(id string, cfg Config) *Dashboard {
	clk := cfg.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	logger := cfg.Logger.With("session", id)
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		id:      id,
		backend: cfg.Backend,
		locator: NewLocator(cfg.Backend, cfg.Geocoder, logger),
		events:  cfg.Events,
		logger:  logger,
		metrics: cfg.Metrics,
		clock:   clk,
		limiter: rate.NewLimiter(rate.Limit(cfg.ActionRate), cfg.ActionBurst),
		ctx:     ctx,
		cancel:  cancel,
		shell:   NewShell(cfg.DefaultLocation),
		layer:   domain.DefaultLayer,

		Overview:   newPanel[domain.Overview](PanelOverview, logger, cfg.Metrics, clk),
		Map:        newPanel[domain.MapData](PanelMap, logger, cfg.Metrics, clk),
		Snapshot:   newPanel[[]domain.Metric](PanelSnapshot, logger, cfg.Metrics, clk),
		Insights:   newPanel[domain.Insights](PanelInsights, logger, cfg.Metrics, clk),
		Forecast:   newPanel[domain.Forecast](PanelForecast, logger, cfg.Metrics, clk),
		Impact:     newPanel[domain.ImpactScore](PanelImpact, logger, cfg.Metrics, clk),
		Simulation: newPanel[domain.Simulation](PanelSimulation, logger, cfg.Metrics, clk),
		History:    newPanel[[]domain.SearchRecord](PanelHistory, logger, cfg.Metrics, clk),
	}

	d.metrics.LocationChanges.WithLabelValues(SourceDefault).Inc()
	d.Overview.Load(d.ctx, d.backend.Overview)
	d.History.Load(d.ctx, d.backend.History)
	d.refresh(d.shell.Location(), domain.DefaultLayer)
	return d
}

// ID returns the session id.
func (d *Dashboard) ID() string {
	return d.id
}

// Shell returns the session's shell.
func (d *Dashboard) Shell() *Shell {
	return d.shell
}

// Location returns the selected location.
func (d *Dashboard) Location() domain.Location {
	return d.shell.Location()
}

// Search geocodes query and selects the result.
func (d *Dashboard) Search(ctx context.Context, query string) (domain.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Location{}, ErrEmptyQuery
	}
	if err := d.allow(); err != nil {
		return domain.Location{}, err
	}

	loc, err := d.locator.Search(ctx, query)
	if err != nil {
		d.logger.Warn("location search failed", "query", query, "error", err)
		return domain.Location{}, err
	}
	if err := d.setLocation(loc, SourceSearch); err != nil {
		return domain.Location{}, err
	}
	d.History.Load(d.ctx, d.backend.History)
	return loc, nil
}

// Detect selects coordinates reported by browser geolocation.
func (d *Dashboard) Detect(ctx context.Context, lat, lon float64) (domain.Location, error) {
	if err := d.allow(); err != nil {
		return domain.Location{}, err
	}
	loc, err := d.locator.Detect(ctx, lat, lon)
	if err != nil {
		return domain.Location{}, err
	}
	if err := d.setLocation(loc, SourceDetect); err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// SelectRecent re-selects the location of a recent search by its id.
func (d *Dashboard) SelectRecent(id int) (domain.Location, error) {
	if err := d.allow(); err != nil {
		return domain.Location{}, err
	}
	records, _ := d.History.Data()
	for _, rec := range records {
		if rec.ID == id {
			loc := rec.Location()
			if err := domain.ValidateCoordinates(loc.Lat, loc.Lon); err != nil {
				return domain.Location{}, err
			}
			if err := d.setLocation(loc, SourceHistory); err != nil {
				return domain.Location{}, err
			}
			return loc, nil
		}
	}
	return domain.Location{}, errors.New("recent search not found")
}

func (d *Dashboard) setLocation(loc domain.Location, source string) error {
	// locMu spans the shell update and the loads it issues, so the last
	// location written is also the last one fetched.
	d.locMu.Lock()
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.locMu.Unlock()
		return ErrClosed
	}
	d.carousel.Reset()
	layer := d.layer
	d.mu.Unlock()

	d.shell.SetLocation(loc)
	d.refresh(loc, layer)
	d.locMu.Unlock()

	d.metrics.LocationChanges.WithLabelValues(source).Inc()
	d.logger.Info("location selected", "source", source, "name", loc.Name, "lat", loc.Lat, "lon", loc.Lon)

	typ := domain.ActivityLocationSelected
	if source == SourceDetect {
		typ = domain.ActivityLocationDetected
	}
	d.publish(domain.NewActivityEvent(typ, d.id, loc))
	return nil
}

// refresh re-fetches every location-keyed panel for loc.
func (d *Dashboard) refresh(loc domain.Location, layer string) {
	lat, lon := loc.Lat, loc.Lon
	d.loadMap(loc, layer)
	d.Snapshot.Load(d.ctx, func(ctx context.Context) ([]domain.Metric, error) {
		return d.backend.Snapshot(ctx, lat, lon)
	})
	d.Insights.Load(d.ctx, func(ctx context.Context) (domain.Insights, error) {
		return d.backend.Insights(ctx, lat, lon)
	})
	d.Forecast.Load(d.ctx, func(ctx context.Context) (domain.Forecast, error) {
		return d.backend.Forecast(ctx, lat, lon)
	})
	d.Impact.Load(d.ctx, func(ctx context.Context) (domain.ImpactScore, error) {
		return d.backend.ImpactScore(ctx, lat, lon)
	})
	d.Simulation.Load(d.ctx, func(ctx context.Context) (domain.Simulation, error) {
		return d.backend.ImpactSimulation(ctx, lat, lon)
	})
}

func (d *Dashboard) loadMap(loc domain.Location, layer string) {
	d.Map.Load(d.ctx, func(ctx context.Context) (domain.MapData, error) {
		return d.backend.Map(ctx, loc.Lat, loc.Lon, layer)
	})
}

// Layer returns the active map layer.
func (d *Dashboard) Layer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.layer
}

// SetLayer switches the map layer and re-fetches the map panel.
func (d *Dashboard) SetLayer(layer string) error {
	if _, ok := domain.LayerSymbol(layer); !ok {
		return ErrUnknownLayer
	}
	d.locMu.Lock()
	defer d.locMu.Unlock()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.layer = layer
	d.mu.Unlock()

	d.loadMap(d.shell.Location(), layer)
	return nil
}

func (d *Dashboard) actionCount() int {
	insights, _ := d.Insights.Data()
	return len(insights.ActionPlan)
}

// NextAction advances the actions carousel.
func (d *Dashboard) NextAction() int {
	n := d.actionCount()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.carousel.Next(n)
}

// PrevAction moves the actions carousel back.
func (d *Dashboard) PrevAction() int {
	n := d.actionCount()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.carousel.Prev(n)
}

// GoToAction jumps the actions carousel to page i.
func (d *Dashboard) GoToAction(i int) bool {
	n := d.actionCount()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.carousel.GoTo(i, n)
}

// Carousel returns the visible window of the action plan and the current
// page for it.
func (d *Dashboard) Carousel(actions []domain.Action) (page, pages, start, end int) {
	n := len(actions)
	d.mu.Lock()
	defer d.mu.Unlock()
	start, end = d.carousel.Window(n)
	return d.carousel.Index(n), domain.CarouselPages(n), start, end
}

// ToggleSimulation flips the simulation view and returns whether the
// with-actions projection is now shown.
func (d *Dashboard) ToggleSimulation() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.simulation.Toggle()
}

// SimulationToggle returns a copy of the simulation toggle.
func (d *Dashboard) SimulationToggle() domain.SimulationToggle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.simulation
}

// GenerateReport asks the backend for a report on the current location. The
// id is kept only if the location did not change while it was generated.
func (d *Dashboard) GenerateReport(ctx context.Context) (domain.Report, error) {
	if err := d.allow(); err != nil {
		return domain.Report{}, err
	}
	loc, version, ok := d.shell.BeginAnalysis()
	if !ok {
		return domain.Report{}, ErrAnalyzing
	}

	report, err := d.backend.CreateReport(ctx, loc)
	if err != nil {
		d.shell.FinishAnalysis(version, 0)
		d.logger.Warn("report generation failed", "name", loc.Name, "error", err)
		return domain.Report{}, err
	}
	if !d.shell.FinishAnalysis(version, report.ID) {
		d.logger.Info("discarding report for previous location", "report_id", report.ID)
		return report, nil
	}

	evt := domain.NewActivityEvent(domain.ActivityReportGenerated, d.id, loc)
	evt.ReportID = report.ID
	d.publish(evt)
	return report, nil
}

// Report returns the report reference for the current location.
func (d *Dashboard) Report() (id int, loc domain.Location, err error) {
	id, ok := d.shell.ReportID()
	if !ok {
		return 0, domain.Location{}, ErrNoReport
	}
	return id, d.shell.Location(), nil
}

// ReportDownloaded records a completed report download.
func (d *Dashboard) ReportDownloaded(id int) {
	evt := domain.NewActivityEvent(domain.ActivityReportDownloaded, d.id, d.shell.Location())
	evt.ReportID = id
	d.publish(evt)
}

// Join signs email up for updates. An empty address submits nothing.
func (d *Dashboard) Join(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if err := d.allow(); err != nil {
		return err
	}
	if err := d.backend.Join(ctx, email); err != nil {
		d.logger.Warn("join failed", "error", err)
		return err
	}

	d.mu.Lock()
	d.joined = true
	d.mu.Unlock()

	d.publish(domain.NewActivityEvent(domain.ActivityJoined, d.id, d.shell.Location()))
	return nil
}

// Joined reports whether the session signed up.
func (d *Dashboard) Joined() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.joined
}

// Close cancels in-flight fetches and waits for them to return. Later
// location changes fail with ErrClosed.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.Wait()
}

// Wait blocks until every issued panel fetch has returned.
func (d *Dashboard) Wait() {
	d.Overview.Wait()
	d.Map.Wait()
	d.Snapshot.Wait()
	d.Insights.Wait()
	d.Forecast.Wait()
	d.Impact.Wait()
	d.Simulation.Wait()
	d.History.Wait()
}

func (d *Dashboard) allow() error {
	if !d.limiter.AllowN(d.clock.Now(), 1) {
		d.metrics.RateLimited.Inc()
		return ErrRateLimited
	}
	return nil
}

func (d *Dashboard) publish(evt domain.ActivityEvent) {
	if d.events == nil {
		return
	}
	d.events.Publish(evt)
}
