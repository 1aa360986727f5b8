package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// Serialize converts an activity event into its wire form. Events are keyed
// by session so one session's activity stays ordered within a partition.
func Serialize(evt domain.ActivityEvent) (domain.OutputEvent, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize activity event: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(evt.SessionID),
		Value: data,
		Headers: map[string]string{
			"event_type":  string(evt.Type),
			"event_id":    evt.ID,
			"occurred_at": evt.OccurredAt.Format(time.RFC3339),
		},
	}, nil
}
