// Package view turns dashboard state into the view models rendered by the
// web templates.
package view

import (
	"math"

	"github.com/Sureka400/Ecolens-AI/internal/dashboard"
	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// ProjectURL is the call-to-action link in the footer.
const ProjectURL = "https://github.com/Sureka400/Ecolens-AI"

var tabLabels = map[dashboard.Tab]string{
	dashboard.TabOverview:    "Overview",
	dashboard.TabMap:         "Map",
	dashboard.TabSnapshot:    "Snapshot",
	dashboard.TabInsights:    "AI Insights",
	dashboard.TabPredictions: "Forecast",
	dashboard.TabActions:     "Actions",
	dashboard.TabImpact:      "Impact",
	dashboard.TabLearn:       "Learn",
}

// TabView is one entry of the tab bar.
type TabView struct {
	ID     dashboard.Tab
	Label  string
	Active bool
}

// PanelMeta is the lifecycle common to every data-driven panel view.
// Pending is true while nothing has been fetched yet.
type PanelMeta struct {
	Name    string
	Loading bool
	Pending bool
	Failed  bool
}

func meta[T any](name string, s dashboard.PanelState[T]) PanelMeta {
	return PanelMeta{
		Name:    name,
		Loading: s.Loading,
		Pending: !s.HasData,
		Failed:  s.Err != nil,
	}
}

// HeroView is the overview banner and location panel.
type HeroView struct {
	PanelMeta
	Overview  domain.Overview
	Location  domain.Location
	Recent    []domain.SearchRecord
	Analyzing bool
	ReportID  int
}

// LayerView is a selectable map layer.
type LayerView struct {
	domain.MapLayer
	Glyph  string
	Active bool
}

// MapView is the map panel.
type MapView struct {
	PanelMeta
	Width, Height int
	Layers        []LayerView
	Zones         []ZoneView
	Banner        string
}

// MetricCard is one snapshot card.
type MetricCard struct {
	domain.Metric
	RiskColor string
	Glyph     string
	Ring      RingView
}

// SnapshotView is the snapshot panel.
type SnapshotView struct {
	PanelMeta
	Cards []MetricCard
}

// ActionCard is one recommended action.
type ActionCard struct {
	domain.Action
	Glyph string
}

// InsightsView is the AI insights panel.
type InsightsView struct {
	PanelMeta
	Summary    string
	Confidence int
	Actions    []ActionCard
}

// ForecastView is the forecast panel.
type ForecastView struct {
	PanelMeta
	Chart LineChart
}

// ActionsView is the actions carousel.
type ActionsView struct {
	PanelMeta
	Visible []ActionCard
	Page    int
	Pages   []int
}

// ComponentView is one contributor of the impact score.
type ComponentView struct {
	domain.ScoreComponent
	Glyph string
}

// ImpactView is the impact score panel.
type ImpactView struct {
	PanelMeta
	Score      int
	MaxScore   int
	Percent    int
	Ring       RingView
	Components []ComponentView
}

// SimulationView is the before/after simulation panel.
type SimulationView struct {
	PanelMeta
	WithActions bool
	Width       int
	Height      int
	Bars        []Bar
	BarColor    string
	Cards       []domain.SimulationCard
	Message     string
}

// TopicView is one education topic.
type TopicView struct {
	domain.Topic
	Glyph string
}

// Page is the full dashboard page.
type Page struct {
	SessionID  string
	Tabs       []TabView
	ActiveTab  dashboard.Tab
	Notice     string
	Hero       HeroView
	Map        MapView
	Snapshot   SnapshotView
	Insights   InsightsView
	Forecast   ForecastView
	Actions    ActionsView
	Impact     ImpactView
	Simulation SimulationView
	Topics     []TopicView
	Joined     bool
	ProjectURL string
}

// Builder assembles view models.
type Builder struct {
	icons *Icons
}

// NewBuilder creates a Builder resolving icons through icons.
func NewBuilder(icons *Icons) *Builder {
	return &Builder{icons: icons}
}

// Page builds the full page for d. notice is an optional message shown
// above the content.
func (b *Builder) Page(d *dashboard.Dashboard, notice string) Page {
	active := d.Shell().Tab()
	tabs := make([]TabView, 0, len(dashboard.Tabs()))
	for _, t := range dashboard.Tabs() {
		tabs = append(tabs, TabView{ID: t, Label: tabLabels[t], Active: t == active})
	}

	return Page{
		SessionID:  d.ID(),
		Tabs:       tabs,
		ActiveTab:  active,
		Notice:     notice,
		Hero:       b.Hero(d),
		Map:        b.Map(d),
		Snapshot:   b.Snapshot(d),
		Insights:   b.Insights(d),
		Forecast:   b.Forecast(d),
		Actions:    b.Actions(d),
		Impact:     b.Impact(d),
		Simulation: b.Simulation(d),
		Topics:     b.Topics(),
		Joined:     d.Joined(),
		ProjectURL: ProjectURL,
	}
}

// Panel builds the view model of the named panel fragment.
func (b *Builder) Panel(d *dashboard.Dashboard, name string) (any, bool) {
	switch name {
	case dashboard.PanelOverview:
		return b.Hero(d), true
	case dashboard.PanelMap:
		return b.Map(d), true
	case dashboard.PanelSnapshot:
		return b.Snapshot(d), true
	case dashboard.PanelInsights:
		return b.Insights(d), true
	case dashboard.PanelForecast:
		return b.Forecast(d), true
	case dashboard.PanelActions:
		return b.Actions(d), true
	case dashboard.PanelImpact:
		return b.Impact(d), true
	case dashboard.PanelSimulation:
		return b.Simulation(d), true
	default:
		return nil, false
	}
}

// Hero builds the overview and location panel.
func (b *Builder) Hero(d *dashboard.Dashboard) HeroView {
	s := d.Overview.State()
	recent, _ := d.History.Data()
	reportID, _ := d.Shell().ReportID()
	return HeroView{
		PanelMeta: meta(dashboard.PanelOverview, s),
		Overview:  s.Data,
		Location:  d.Location(),
		Recent:    recent,
		Analyzing: d.Shell().Analyzing(),
		ReportID:  reportID,
	}
}

// Map builds the map panel.
func (b *Builder) Map(d *dashboard.Dashboard) MapView {
	s := d.Map.State()
	active := d.Layer()
	v := MapView{
		PanelMeta: meta(dashboard.PanelMap, s),
		Width:     MapWidth,
		Height:    MapHeight,
	}
	if s.Err != nil {
		v.Banner = dashboard.MapUnavailableMessage
	}

	for _, l := range s.Data.Layers {
		v.Layers = append(v.Layers, LayerView{MapLayer: l, Glyph: b.icons.Layer(l.ID), Active: l.ID == active})
	}

	loc := d.Location()
	center := domain.Coordinates{Lat: loc.Lat, Lon: loc.Lon}
	if s.Data.Center != nil {
		center = *s.Data.Center
	}
	v.Zones = ProjectZones(center, s.Data.PollutionZones)
	return v
}

// Snapshot builds the metric cards.
func (b *Builder) Snapshot(d *dashboard.Dashboard) SnapshotView {
	s := d.Snapshot.State()
	v := SnapshotView{PanelMeta: meta(dashboard.PanelSnapshot, s)}
	for _, m := range s.Data {
		v.Cards = append(v.Cards, MetricCard{
			Metric:    m,
			RiskColor: domain.RiskColor(m.Risk),
			Glyph:     b.icons.Metric(m.Title),
			Ring:      NewRing(domain.SnapshotRingRadius, float64(m.Value), m.Color),
		})
	}
	return v
}

func (b *Builder) actionCards(actions []domain.Action) []ActionCard {
	cards := make([]ActionCard, 0, len(actions))
	for _, a := range actions {
		cards = append(cards, ActionCard{Action: a, Glyph: b.icons.Action(a)})
	}
	return cards
}

// Insights builds the AI insights panel.
func (b *Builder) Insights(d *dashboard.Dashboard) InsightsView {
	s := d.Insights.State()
	return InsightsView{
		PanelMeta:  meta(dashboard.PanelInsights, s),
		Summary:    s.Data.Summary,
		Confidence: int(math.Round(s.Data.ConfidenceScore * 100)),
		Actions:    b.actionCards(s.Data.ActionPlan),
	}
}

// Forecast builds the forecast chart.
func (b *Builder) Forecast(d *dashboard.Dashboard) ForecastView {
	s := d.Forecast.State()
	return ForecastView{
		PanelMeta: meta(dashboard.PanelForecast, s),
		Chart:     NewLineChart(s.Data.Forecast),
	}
}

// Actions builds the actions carousel from the insights action plan.
func (b *Builder) Actions(d *dashboard.Dashboard) ActionsView {
	s := d.Insights.State()
	page, pages, start, end := d.Carousel(s.Data.ActionPlan)

	v := ActionsView{
		PanelMeta: meta(dashboard.PanelActions, s),
		Visible:   b.actionCards(s.Data.ActionPlan[start:end]),
		Page:      page,
	}
	for i := range pages {
		v.Pages = append(v.Pages, i)
	}
	return v
}

// Impact builds the impact score panel.
func (b *Builder) Impact(d *dashboard.Dashboard) ImpactView {
	s := d.Impact.State()
	percent := s.Data.Percent()
	v := ImpactView{
		PanelMeta: meta(dashboard.PanelImpact, s),
		Score:     s.Data.Score,
		MaxScore:  s.Data.MaxScore,
		Percent:   int(math.Round(percent)),
		Ring:      NewRing(domain.ScoreRingRadius, percent, domain.ColorGreen),
	}
	for _, c := range s.Data.Components {
		v.Components = append(v.Components, ComponentView{ScoreComponent: c, Glyph: b.icons.Component(c)})
	}
	return v
}

// Simulation builds the simulation chart for the current toggle state.
func (b *Builder) Simulation(d *dashboard.Dashboard) SimulationView {
	s := d.Simulation.State()
	toggle := d.SimulationToggle()
	return SimulationView{
		PanelMeta:   meta(dashboard.PanelSimulation, s),
		WithActions: toggle.WithActions(),
		Width:       ChartWidth,
		Height:      ChartHeight,
		Bars:        NewBars(toggle.Series(s.Data)),
		BarColor:    toggle.BarColor(),
		Cards:       toggle.Cards(s.Data),
		Message:     toggle.Message(),
	}
}

// Topics builds the education panel.
func (b *Builder) Topics() []TopicView {
	topics := domain.EducationTopics()
	out := make([]TopicView, 0, len(topics))
	for _, t := range topics {
		out = append(out, TopicView{Topic: t, Glyph: t.Symbol.Glyph()})
	}
	return out
}
