package execution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotEngine sends generation prompts through the GitHub Copilot SDK
type CopilotEngine struct {
	defaultModelID string
	logger         *slog.Logger

	client copilotClient

	startOnce sync.Once
	startErr  error
}

// CopilotEngineBuilder builds a CopilotEngine with options
type CopilotEngineBuilder struct {
	engine *CopilotEngine
}

type CopilotEngineBuilderOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
	Logger           *slog.Logger
}

// NewCopilotEngineBuilder creates a builder for CopilotEngine
//   - defaultModelID - used if the request doesn't name a model. Can be blank, which means the copilot
//     CLI will choose its own fallback model.
func NewCopilotEngineBuilder(defaultModelID string, options *CopilotEngineBuilderOptions) *CopilotEngineBuilder {
	var client copilotClient

	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	logger := slog.Default()
	if options != nil && options.Logger != nil {
		logger = options.Logger
	}

	return &CopilotEngineBuilder{
		engine: &CopilotEngine{
			defaultModelID: defaultModelID,
			logger:         logger,
			client:         client,
		},
	}
}

func (b *CopilotEngineBuilder) Build() *CopilotEngine {
	return b.engine
}

// Initialize is a no-op; the client is started lazily on the first Execute.
func (e *CopilotEngine) Initialize(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Execute sends one prompt in a fresh session and waits for the reply
func (e *CopilotEngine) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotEngine.Execute")
	}
	if req.Timeout <= 0 {
		return nil, fmt.Errorf("positive Timeout is required")
	}

	e.startOnce.Do(func() {
		// copilot's autostart misbehaves when triggered from separate goroutines.
		e.startErr = e.client.Start(ctx)
	})
	if e.startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", e.startErr)
	}

	modelID := e.defaultModelID
	if req.ModelID != "" {
		modelID = req.ModelID
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               modelID,
		OnPermissionRequest: denyAllTools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	eventsCollector := NewSessionEventsCollector()

	unsubscribe := session.On(eventsCollector.On)
	defer unsubscribe()

	unsubscribe = session.On(sessionToSlog(e.logger))
	defer unsubscribe()

	_, err = session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: req.Message,
	})

	var errMsg string
	if err != nil {
		// inline conversation errors come back through err as well, so they
		// are reported on the response rather than returned.
		errMsg = err.Error()
	} else if msg := eventsCollector.ErrorMessage(); msg != "" {
		errMsg = msg
	}

	e.logger.Debug("copilot prompt finished", "purpose", req.Purpose, "model", modelID, "duration", time.Since(start), "error", errMsg)

	return &ExecutionResponse{
		FinalOutput: strings.Join(eventsCollector.OutputParts(), ""),
		Events:      eventsCollector.SessionEvents(),
		ModelID:     modelID,
		SessionID:   session.SessionID(),
		DurationMs:  time.Since(start).Milliseconds(),
		ErrorMsg:    errMsg,
		Success:     errMsg == "",
	}, nil
}

// Shutdown stops the copilot client
func (e *CopilotEngine) Shutdown(ctx context.Context) error {
	if err := e.client.Stop(); err != nil {
		e.logger.Info("failed to stop client", "error", err)
	}
	return nil
}

// denyAllTools rejects every tool request; generation prompts only answer with text.
func denyAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "denied-interactively-by-user"}, nil
}
