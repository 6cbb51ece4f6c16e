package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spboyer/estimator/internal/execution"
	"github.com/spboyer/estimator/internal/wizard"
)

// newEngine and newPrompter are test hooks.
var (
	newEngine   = defaultNewEngine
	newPrompter = func(in io.Reader, out io.Writer) wizard.Prompter { return wizard.NewHuhPrompter(in, out) }
)

func defaultNewEngine(ctx context.Context, name, model string, logger *slog.Logger) (execution.AgentEngine, error) {
	switch name {
	case "mock":
		return execution.NewMockEngine(model), nil
	case "copilot-sdk":
		return execution.NewCopilotEngineBuilder(model, &execution.CopilotEngineBuilderOptions{Logger: logger}).Build(), nil
	case "gemini":
		return execution.NewGeminiEngine(ctx, "", model, logger)
	default:
		return nil, fmt.Errorf("unknown engine type: %s", name)
	}
}
