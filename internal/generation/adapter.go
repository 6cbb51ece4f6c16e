package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spboyer/estimator/internal/execution"
	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/validation"
)

const defaultTimeout = 2 * time.Minute

// Options configures an EngineAdapter.
type Options struct {
	// ModelID overrides the engine's default model.
	ModelID string
	// Timeout bounds each engine call. Defaults to two minutes.
	Timeout time.Duration
	// CacheSize is the number of question responses kept in memory. Zero disables caching.
	CacheSize int
	Logger    *slog.Logger
}

// EngineAdapter implements every generator contract by prompting an
// [execution.AgentEngine] and decoding its JSON reply.
type EngineAdapter struct {
	engine  execution.AgentEngine
	modelID string
	timeout time.Duration
	logger  *slog.Logger
	cache   *lru.Cache[string, *QuestionResponse]
}

var (
	_ QuestionGenerator   = (*EngineAdapter)(nil)
	_ PresetGenerator     = (*EngineAdapter)(nil)
	_ EstimationGenerator = (*EngineAdapter)(nil)
)

// NewEngineAdapter wraps engine. The engine must already be initialized.
func NewEngineAdapter(engine execution.AgentEngine, opts Options) (*EngineAdapter, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	a := &EngineAdapter{
		engine:  engine,
		modelID: opts.ModelID,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *QuestionResponse](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating question cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// GenerateQuestions implements [QuestionGenerator]. Successful responses are
// memoized so retrying with the same inputs does not call the engine again.
func (a *EngineAdapter) GenerateQuestions(ctx context.Context, req QuestionRequest) (*QuestionResponse, error) {
	key, err := cacheKey(req)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			a.logger.Debug("question cache hit", "key", key[:12])
			return cloneQuestionResponse(cached), nil
		}
	}

	prompt, err := renderPrompt("questions", req)
	if err != nil {
		return nil, err
	}

	out, failure, err := a.execute(ctx, execution.PurposeQuestions, prompt, req.Requirements)
	if err != nil {
		return nil, err
	}
	if failure != "" {
		return &QuestionResponse{Error: failure}, nil
	}

	var payload struct {
		Questions             []models.Question `mapstructure:"questions"`
		Reasoning             string            `mapstructure:"reasoning"`
		SuggestedTechCategory string            `mapstructure:"suggested_tech_category"`
	}
	if err := decodePayload(out, validation.ValidateQuestionsPayload, &payload); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	if err := models.ValidateQuestionSet(payload.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w: %v", ErrMalformedResult, err)
	}

	resp := &QuestionResponse{
		Success:               true,
		Questions:             payload.Questions,
		Reasoning:             payload.Reasoning,
		SuggestedTechCategory: payload.SuggestedTechCategory,
	}
	if a.cache != nil && len(resp.Questions) > 0 {
		a.cache.Add(key, cloneQuestionResponse(resp))
	}
	return resp, nil
}

// GeneratePreset implements [PresetGenerator].
func (a *EngineAdapter) GeneratePreset(ctx context.Context, req PresetRequest) (*PresetResponse, error) {
	prompt, err := renderPrompt("preset", presetPromptData{
		Description:           req.Description,
		SuggestedTechCategory: req.SuggestedTechCategory,
		Answers:               req.Answers.Raw(),
	})
	if err != nil {
		return nil, err
	}

	out, failure, err := a.execute(ctx, execution.PurposePreset, prompt, nil)
	if err != nil {
		return nil, err
	}
	if failure != "" {
		return &PresetResponse{Error: failure}, nil
	}

	var payload struct {
		Preset   models.Preset  `mapstructure:"preset"`
		Metadata map[string]any `mapstructure:"metadata"`
	}
	if err := decodePayload(out, validation.ValidatePresetPayload, &payload); err != nil {
		return nil, fmt.Errorf("decoding preset: %w", err)
	}
	if err := payload.Preset.Validate(); err != nil {
		return nil, fmt.Errorf("decoding preset: %w: %v", ErrMalformedResult, err)
	}
	if len(payload.Preset.Activities) == 0 {
		return nil, fmt.Errorf("decoding preset: %w: no activities", ErrEmptyResult)
	}

	return &PresetResponse{
		Success:  true,
		Preset:   &payload.Preset,
		Metadata: payload.Metadata,
	}, nil
}

// GenerateEstimations implements [EstimationGenerator]. The response holds
// exactly one normalized result per requested requirement, in request order;
// requirements the engine skipped are reported as failed results.
func (a *EngineAdapter) GenerateEstimations(ctx context.Context, req EstimationRequest) (*EstimationResponse, error) {
	prompt, err := renderPrompt("estimations", estimationsPromptData{
		Description:  req.Description,
		Requirements: req.Requirements,
		Questions:    req.Questions,
		Answers:      req.Answers.Raw(),
	})
	if err != nil {
		return nil, err
	}

	out, failure, err := a.execute(ctx, execution.PurposeEstimations, prompt, req.Requirements)
	if err != nil {
		return nil, err
	}
	if failure != "" {
		return &EstimationResponse{Error: failure}, nil
	}

	var payload struct {
		Estimations []models.EstimationResult `mapstructure:"estimations"`
	}
	if err := decodePayload(out, validation.ValidateEstimationsPayload, &payload); err != nil {
		return nil, fmt.Errorf("decoding estimations: %w", err)
	}

	byID := make(map[string]models.EstimationResult, len(payload.Estimations))
	for _, r := range payload.Estimations {
		if !slices.ContainsFunc(req.Requirements, func(s models.RequirementStub) bool { return s.ID == r.RequirementID }) {
			a.logger.Warn("dropping estimation for unknown requirement", "requirement_id", r.RequirementID)
			continue
		}
		if _, dup := byID[r.RequirementID]; dup {
			a.logger.Warn("dropping duplicate estimation", "requirement_id", r.RequirementID)
			continue
		}
		byID[r.RequirementID] = r
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("decoding estimations: %w", ErrEmptyResult)
	}

	results := make([]models.EstimationResult, 0, len(req.Requirements))
	for _, stub := range req.Requirements {
		r, ok := byID[stub.ID]
		if !ok {
			r = models.EstimationResult{RequirementID: stub.ID, Error: "no estimation returned for this requirement"}
		}
		if r.ReqCode == "" {
			r.ReqCode = stub.Code
		}
		results = append(results, r.Normalize())
	}
	return &EstimationResponse{Success: true, Results: results}, nil
}

// execute runs one prompt. A transport failure is returned as err; a failure
// the engine reported in-band is returned as failure.
func (a *EngineAdapter) execute(ctx context.Context, purpose execution.Purpose, prompt string, reqs []models.RequirementStub) (out string, failure string, err error) {
	start := time.Now()
	resp, err := a.engine.Execute(ctx, &execution.ExecutionRequest{
		Purpose:      purpose,
		Message:      prompt,
		ModelID:      a.modelID,
		Timeout:      a.timeout,
		Requirements: reqs,
	})
	if err != nil {
		return "", "", fmt.Errorf("generating %s: %w", purpose, err)
	}
	if resp == nil {
		return "", "", fmt.Errorf("generating %s: %w", purpose, ErrEmptyResult)
	}
	a.logger.Debug("engine call finished", "purpose", purpose, "model", resp.ModelID, "success", resp.Success, "elapsed", time.Since(start))
	if !resp.Success {
		if resp.ErrorMsg == "" {
			return "", fmt.Sprintf("%s generation failed", purpose), nil
		}
		return "", resp.ErrorMsg, nil
	}
	return resp.Output(), "", nil
}

func cacheKey(req QuestionRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("hashing question request: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func cloneQuestionResponse(r *QuestionResponse) *QuestionResponse {
	out := *r
	out.Questions = slices.Clone(r.Questions)
	return &out
}
