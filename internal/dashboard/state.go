package dashboard

import (
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// PanelStatus is the JSON summary of a panel's lifecycle.
type PanelStatus struct {
	Loading   bool       `json:"loading"`
	HasData   bool       `json:"has_data"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// State is the JSON view of a session's dashboard.
type State struct {
	SessionID         string                 `json:"session_id"`
	Location          domain.Location        `json:"location"`
	ReportID          int                    `json:"report_id,omitempty"`
	Analyzing         bool                   `json:"analyzing"`
	Tab               Tab                    `json:"tab"`
	Layer             string                 `json:"layer"`
	CarouselIndex     int                    `json:"carousel_index"`
	SimulationActions bool                   `json:"simulation_with_actions"`
	Joined            bool                   `json:"joined"`
	Panels            map[string]PanelStatus `json:"panels"`
}

func panelStatus[T any](p *Panel[T]) PanelStatus {
	s := p.State()
	status := PanelStatus{Loading: s.Loading, HasData: s.HasData}
	if s.Err != nil {
		status.Error = s.Err.Error()
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		status.UpdatedAt = &t
	}
	return status
}

// State returns a snapshot of the dashboard.
func (d *Dashboard) State() State {
	reportID, _ := d.shell.ReportID()
	n := d.actionCount()

	d.mu.Lock()
	layer := d.layer
	index := d.carousel.Index(n)
	withActions := d.simulation.WithActions()
	joined := d.joined
	d.mu.Unlock()

	return State{
		SessionID:         d.id,
		Location:          d.shell.Location(),
		ReportID:          reportID,
		Analyzing:         d.shell.Analyzing(),
		Tab:               d.shell.Tab(),
		Layer:             layer,
		CarouselIndex:     index,
		SimulationActions: withActions,
		Joined:            joined,
		Panels: map[string]PanelStatus{
			PanelOverview:   panelStatus(d.Overview),
			PanelMap:        panelStatus(d.Map),
			PanelSnapshot:   panelStatus(d.Snapshot),
			PanelInsights:   panelStatus(d.Insights),
			PanelForecast:   panelStatus(d.Forecast),
			PanelImpact:     panelStatus(d.Impact),
			PanelSimulation: panelStatus(d.Simulation),
			PanelHistory:    panelStatus(d.History),
		},
	}
}
