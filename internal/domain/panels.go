package domain

// Risk levels reported by the backend.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// Palette shared by risk badges, severity markers and charts.
const (
	ColorRed     = "#FF5252"
	ColorAmber   = "#FFC107"
	ColorGreen   = "#00E676"
	ColorBlue    = "#00B0FF"
	ColorNeutral = "#9CA3AF"
)

// RiskColor maps a risk or severity level to its display colour.
func RiskColor(level string) string {
	switch level {
	case RiskHigh:
		return ColorRed
	case RiskModerate:
		return ColorAmber
	case RiskLow:
		return ColorGreen
	default:
		return ColorNeutral
	}
}

// Overview is the hero banner copy from GET /api/overview.
type Overview struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Tagline  string `json:"tagline"`
}

// Map layer identifiers.
const (
	LayerAir   = "air"
	LayerWater = "water"
	LayerWaste = "waste"
	LayerNoise = "noise"

	DefaultLayer = LayerAir
)

// MapLayer is a selectable overlay on the map panel.
type MapLayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PollutionZone is a circular marker on the map.
type PollutionZone struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Severity string  `json:"severity"`
	Tooltip  string  `json:"tooltip"`
}

// Coordinates is a bare lat/lon pair as used by the map payload's center.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapData is the payload of GET /api/map.
type MapData struct {
	Center         *Coordinates    `json:"center,omitempty"`
	Layers         []MapLayer      `json:"layers"`
	PollutionZones []PollutionZone `json:"pollutionZones"`
}

// Metric is one snapshot card from GET /api/snapshot.
type Metric struct {
	Title       string `json:"title"`
	Risk        string `json:"risk"`
	Description string `json:"description"`
	Value       int    `json:"value"`
	Color       string `json:"color"`
	Insight     string `json:"insight,omitempty"`
}

// Action is a recommended action from the insights action plan.
type Action struct {
	Kind       ActionKind `json:"kind,omitempty"`
	Title      string     `json:"title"`
	Why        string     `json:"why"`
	Impact     string     `json:"impact"`
	Difficulty string     `json:"difficulty"`
	Color      string     `json:"color"`
}

// Insights is the payload of GET /api/insights, shared by the AI insights
// and actions panels.
type Insights struct {
	Summary         string   `json:"summary"`
	ActionPlan      []Action `json:"action_plan"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// ForecastPoint is one day of the forecast chart.
type ForecastPoint struct {
	Day        string `json:"day"`
	Current    int    `json:"current"`
	WithAction int    `json:"withAction"`
}

// Forecast is the payload of GET /api/forecast.
type Forecast struct {
	Forecast []ForecastPoint `json:"forecast"`
}

// ScoreComponent is one contributor to the composite impact score.
type ScoreComponent struct {
	Kind        ComponentKind `json:"kind,omitempty"`
	Label       string        `json:"label"`
	Value       int           `json:"value"`
	Color       string        `json:"color"`
	Description string        `json:"description"`
}

// ImpactScore is the payload of GET /api/impact-score.
type ImpactScore struct {
	Score      int              `json:"score"`
	MaxScore   int              `json:"maxScore"`
	Components []ScoreComponent `json:"components"`
}

// Percent is the score as a percentage of MaxScore. A non-positive MaxScore
// yields 0.
func (s ImpactScore) Percent() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return 100 * float64(s.Score) / float64(s.MaxScore)
}

// SimulationItem is one bar of the simulation chart.
type SimulationItem struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// Simulation is the payload of GET /api/impact-simulation. Both series are
// computed by the backend.
type Simulation struct {
	CurrentData          []SimulationItem `json:"currentData"`
	ImprovedData         []SimulationItem `json:"improvedData"`
	ReductionPercentages map[string]int   `json:"reductionPercentages"`
}

// ReportRequest is the body of POST /api/report.
type ReportRequest struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Report is the record returned by POST /api/report and GET /api/reports.
// Only ID is required by the dashboard.
type Report struct {
	ID           int       `json:"id"`
	LocationName string    `json:"location_name,omitempty"`
	Lat          float64   `json:"lat,omitempty"`
	Lon          float64   `json:"lon,omitempty"`
	AQIValue     int       `json:"aqi_value,omitempty"`
	RiskLevel    string    `json:"risk_level,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Timestamp    Timestamp `json:"timestamp,omitzero"`
}

// SearchRecord is one entry of GET /api/history.
type SearchRecord struct {
	ID        int       `json:"id"`
	Query     string    `json:"query"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp Timestamp `json:"timestamp,omitzero"`
}

// Location returns the place the search resolved to.
func (r SearchRecord) Location() Location {
	return Location{Lat: r.Lat, Lon: r.Lon, Name: r.Name}
}

// JoinRequest is the body of POST /api/join.
type JoinRequest struct {
	Email string `json:"email"`
}
