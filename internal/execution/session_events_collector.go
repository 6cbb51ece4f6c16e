package execution

import (
	"context"
	"log/slog"
	"sync"

	copilot "github.com/github/copilot-sdk/go"
)

const sessionFailedUnknown = "session failed with unknown error"

type SessionEventsCollector struct {
	mu            sync.Mutex
	sessionEvents []copilot.SessionEvent
	outputParts   []string
	errorMsg      string
	done          chan struct{}
}

// NewSessionEventsCollector creates a new SessionEventsCollector.
func NewSessionEventsCollector() *SessionEventsCollector {
	return &SessionEventsCollector{
		done: make(chan struct{}),
	}
}

// SessionEvents returns the collected session events.
func (coll *SessionEventsCollector) SessionEvents() []copilot.SessionEvent {
	coll.mu.Lock()
	defer coll.mu.Unlock()
	return coll.sessionEvents
}

// OutputParts returns the collected assistant message texts.
func (coll *SessionEventsCollector) OutputParts() []string {
	coll.mu.Lock()
	defer coll.mu.Unlock()
	return coll.outputParts
}

// ErrorMessage returns the error message, if any.
func (coll *SessionEventsCollector) ErrorMessage() string {
	coll.mu.Lock()
	defer coll.mu.Unlock()
	return coll.errorMsg
}

// Done returns the channel that is closed when the session completes.
func (coll *SessionEventsCollector) Done() <-chan struct{} {
	return coll.done
}

// On is a callback, intended to be passed to [copilot.Session.On] to receive
// events in real-time.
func (coll *SessionEventsCollector) On(event copilot.SessionEvent) {
	coll.mu.Lock()
	defer coll.mu.Unlock()

	switch event.Type {
	case copilot.AssistantMessage:
		// deltas are repeated in full by the final message
		if event.Data.Content != nil {
			coll.outputParts = append(coll.outputParts, *event.Data.Content)
		}

	// these are both termination events
	case copilot.SessionIdle, copilot.SessionError:
		if event.Type == copilot.SessionError {
			if event.Data.Message == nil || *event.Data.Message == "" {
				coll.errorMsg = sessionFailedUnknown
			} else {
				coll.errorMsg = *event.Data.Message
			}
		}

		select {
		case <-coll.done:
		default:
			close(coll.done)
		}
	}

	coll.sessionEvents = append(coll.sessionEvents, event)
}

// sessionToSlog returns a session event handler that mirrors events to
// logger at debug level.
func sessionToSlog(logger *slog.Logger) copilot.SessionEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(event copilot.SessionEvent) {
		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			return
		}

		attrs := []any{
			"type", event.Type,
		}

		attrs = addIf(attrs, "content", event.Data.Content)
		attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
		attrs = addIf(attrs, "message", event.Data.Message)
		attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

		logger.Debug("Event received", attrs...)
	}
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name, *v)
	}
	return attrs
}
