package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType names a user interaction worth publishing downstream.
type ActivityType string

// Activity types emitted by the dashboard.
const (
	ActivityLocationSelected ActivityType = "location_selected"
	ActivityLocationDetected ActivityType = "location_detected"
	ActivityReportGenerated  ActivityType = "report_generated"
	ActivityReportDownloaded ActivityType = "report_downloaded"
	ActivityJoined           ActivityType = "joined"
)

// ActivityEvent records one dashboard interaction.
type ActivityEvent struct {
	ID         string       `json:"id"`
	Type       ActivityType `json:"type"`
	SessionID  string       `json:"session_id"`
	Location   Location     `json:"location"`
	ReportID   int          `json:"report_id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewActivityEvent stamps a new event with a random ID and the package clock.
func NewActivityEvent(typ ActivityType, sessionID string, loc Location) ActivityEvent {
	return ActivityEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		SessionID:  sessionID,
		Location:   loc,
		OccurredAt: Clock().Now().UTC(),
	}
}

// OutputEvent is the serialized form destined for the activity topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
