package session

import (
	"maps"
	"time"
)

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_complete"
	EventTransition   EventType = "transition"
	EventItemSaved    EventType = "item_saved"
	EventError        EventType = "error"
)

// Event is one line of a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent stamps data with the current UTC time.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// SessionStartData returns event data for a wizard session start.
func SessionStartData(mode, engine, model string) map[string]any {
	return map[string]any{
		"mode":   mode,
		"engine": engine,
		"model":  model,
	}
}

// SessionCompleteData returns event data for a finished wizard session.
func SessionCompleteData(phase string, saved, failed int, durationMs int64) map[string]any {
	return map[string]any{
		"phase":       phase,
		"saved":       saved,
		"failed":      failed,
		"duration_ms": durationMs,
	}
}

// TransitionData returns event data for a phase change.
func TransitionData(event, from, to string, token uint64) map[string]any {
	return map[string]any{
		"event": event,
		"from":  from,
		"to":    to,
		"token": token,
	}
}

// ItemSavedData returns event data for one bulk save attempt.
func ItemSavedData(requirementID string, ok bool, progress float64) map[string]any {
	return map[string]any{
		"requirement_id": requirementID,
		"ok":             ok,
		"progress":       progress,
	}
}

// ErrorData returns event data for an error. Keys in details override
// the message.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{"message": message}
	maps.Copy(d, details)
	return d
}
