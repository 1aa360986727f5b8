package dashboard

import (
	"sync"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// Tab identifies a section of the tabbed content area.
type Tab string

// Tabs in display order.
const (
	TabOverview    Tab = "overview"
	TabMap         Tab = "map"
	TabSnapshot    Tab = "snapshot"
	TabInsights    Tab = "ai-insights"
	TabPredictions Tab = "predictions"
	TabActions     Tab = "actions"
	TabImpact      Tab = "impact"
	TabLearn       Tab = "learn"
)

// Tabs returns every tab in display order.
func Tabs() []Tab {
	return []Tab{TabOverview, TabMap, TabSnapshot, TabInsights, TabPredictions, TabActions, TabImpact, TabLearn}
}

// ParseTab returns the tab named s.
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Shell owns the session's cross-cutting state: the selected location, the
// report generated for it and the analyzing flag. It is the only writer of
// the location.
type Shell struct {
	mu        sync.RWMutex
	location  domain.Location
	version   uint64
	reportID  int
	analyzing bool
	tab       Tab
}

// NewShell starts a shell at loc on the overview tab.
func NewShell(loc domain.Location) *Shell {
	return &Shell{location: loc, tab: TabOverview}
}

// Location returns the selected location.
func (s *Shell) Location() domain.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// SetLocation replaces the location as a whole and clears the report
// reference. It returns the new location version.
func (s *Shell) SetLocation(loc domain.Location) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = loc
	s.reportID = 0
	s.version++
	return s.version
}

// ReportID returns the report generated for the current location.
func (s *Shell) ReportID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportID, s.reportID != 0
}

// BeginAnalysis sets the analyzing flag and returns the location the report
// is for together with its version. ok is false when an analysis is already
// running.
func (s *Shell) BeginAnalysis() (loc domain.Location, version uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzing {
		return domain.Location{}, 0, false
	}
	s.analyzing = true
	return s.location, s.version, true
}

// FinishAnalysis clears the analyzing flag and records reportID when the
// location has not changed since BeginAnalysis. A zero reportID records
// nothing. It reports whether the id was stored.
func (s *Shell) FinishAnalysis(version uint64, reportID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzing = false
	if reportID == 0 || version != s.version {
		return false
	}
	s.reportID = reportID
	return true
}

// Analyzing reports whether a report is being generated.
func (s *Shell) Analyzing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzing
}

// Tab returns the active tab.
func (s *Shell) Tab() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tab
}

// SetTab activates t.
func (s *Shell) SetTab(t Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = t
}
