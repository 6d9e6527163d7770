package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"mamacare-sync/internal/models"
)

// ChangeHandler applies a remote change to the local cache.
// *mutation.Coordinator implements it.
type ChangeHandler interface {
	ApplyRemoteChange(ctx context.Context, event models.ChangeEvent) bool
}

// Recorder counts consumed events by source and outcome.
type Recorder interface {
	ChangeEventConsumed(source, outcome string)
}

// Event outcomes reported to Recorder.
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeInvalid = "invalid"
)

func decodeEvent(payload []byte) (models.ChangeEvent, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("invalid change event: %w", err)
	}
	if event.EventType == "" {
		return event, fmt.Errorf("invalid change event: missing event_type")
	}
	return event, nil
}

func outcome(applied bool) string {
	if applied {
		return OutcomeApplied
	}
	return OutcomeSkipped
}
