package execution

import (
	"context"
	"strings"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/spboyer/estimator/internal/models"
)

// AgentEngine is the interface for sending generation prompts to a model
type AgentEngine interface {
	// Initialize sets up the engine
	Initialize(ctx context.Context) error

	// Execute sends a prompt and collects the model's reply
	Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error)

	// Shutdown cleans up resources
	Shutdown(ctx context.Context) error
}

// Purpose tells an engine what kind of document the prompt asks for.
type Purpose string

const (
	PurposeQuestions   Purpose = "questions"
	PurposePreset      Purpose = "preset"
	PurposeEstimations Purpose = "estimations"
)

// ExecutionRequest represents a single prompt sent to an engine
type ExecutionRequest struct {
	Purpose Purpose
	Message string
	ModelID string
	Timeout time.Duration

	// Requirements are the stubs the prompt was rendered for, bulk mode only.
	Requirements []models.RequirementStub
}

// ExecutionResponse represents the result of an execution
type ExecutionResponse struct {
	FinalOutput string
	Events      []copilot.SessionEvent
	ModelID     string
	SessionID   string
	DurationMs  int64
	ErrorMsg    string
	Success     bool
}

// ExtractMessages gets all assistant messages from events
func (r *ExecutionResponse) ExtractMessages() []string {
	var messages []string
	for _, evt := range r.Events {
		if evt.Type == copilot.AssistantMessage {
			if evt.Data.Content != nil {
				messages = append(messages, *evt.Data.Content)
			}
		}
	}
	return messages
}

// Output returns the final output, falling back to the joined assistant
// messages when the engine did not stream any text.
func (r *ExecutionResponse) Output() string {
	if strings.TrimSpace(r.FinalOutput) != "" {
		return r.FinalOutput
	}
	return strings.Join(r.ExtractMessages(), "\n")
}
