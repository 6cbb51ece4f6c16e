package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// DefaultGeminiModel is used when neither the engine nor the request names a model.
const DefaultGeminiModel = "gemini-2.5-flash"

// ErrEmptyCandidate is returned when the model produced no text.
var ErrEmptyCandidate = errors.New("gemini returned no candidates")

// contentGenerator is the subset of [genai.Models] the engine uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiEngine sends generation prompts to the Gemini API and asks for JSON output.
type GeminiEngine struct {
	defaultModelID string
	logger         *slog.Logger
	models         contentGenerator
}

// NewGeminiEngine creates a Gemini engine. An empty apiKey falls back to the
// GEMINI_API_KEY environment variable.
func NewGeminiEngine(ctx context.Context, apiKey, defaultModelID string, logger *slog.Logger) (*GeminiEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newGeminiEngine(cli.Models, defaultModelID, logger), nil
}

func newGeminiEngine(models contentGenerator, defaultModelID string, logger *slog.Logger) *GeminiEngine {
	if defaultModelID == "" {
		defaultModelID = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiEngine{defaultModelID: defaultModelID, logger: logger, models: models}
}

func (g *GeminiEngine) Initialize(ctx context.Context) error {
	return ctx.Err()
}

// Execute sends the prompt with a JSON response MIME type. Transport failures
// are returned as errors; an empty reply is reported on the response.
func (g *GeminiEngine) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to GeminiEngine.Execute")
	}

	modelID := g.defaultModelID
	if req.ModelID != "" {
		modelID = req.ModelID
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, modelID,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Message}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", modelID, err)
	}

	out := &ExecutionResponse{
		ModelID:    modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}

	text, err := firstCandidateText(resp)
	if err != nil {
		out.ErrorMsg = err.Error()
	} else {
		out.FinalOutput = text
		out.Success = true
	}

	g.logger.Debug("gemini prompt finished", "purpose", req.Purpose, "model", modelID, "duration_ms", out.DurationMs, "success", out.Success)
	return out, nil
}

func (g *GeminiEngine) Shutdown(ctx context.Context) error {
	return nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCandidate
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", ErrEmptyCandidate
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyCandidate
	}
	return sb.String(), nil
}
