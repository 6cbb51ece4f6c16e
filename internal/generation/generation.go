// Package generation defines the boundary between the interview orchestrator
// and the services that produce questions and artifacts, and provides an
// adapter that implements those contracts on top of an execution engine.
package generation

//go:generate go tool mockgen -source=generation.go -destination=mocks/mock_generation.go -package=mocks

import (
	"context"
	"errors"

	"github.com/spboyer/estimator/internal/models"
)

var (
	// ErrEmptyResult means the generator replied without any document.
	ErrEmptyResult = errors.New("generator returned an empty result")
	// ErrMalformedResult means the generator's document did not match the expected shape.
	ErrMalformedResult = errors.New("generator returned a malformed result")
)

// QuestionRequest asks for the interview questions for a description.
// Requirements is only set in bulk mode.
type QuestionRequest struct {
	Description  string                   `json:"description"`
	TechCategory string                   `json:"tech_category,omitempty"`
	Requirements []models.RequirementStub `json:"requirements,omitempty"`
}

// QuestionResponse carries the generated question set.
type QuestionResponse struct {
	Success               bool
	Questions             []models.Question
	Reasoning             string
	SuggestedTechCategory string
	Error                 string
}

// PresetRequest asks for a technology preset built from the interview answers.
type PresetRequest struct {
	Description           string
	Answers               models.Answers
	SuggestedTechCategory string
}

// PresetResponse carries the generated preset.
type PresetResponse struct {
	Success  bool
	Preset   *models.Preset
	Error    string
	Metadata map[string]any
}

// EstimationRequest asks for one estimation per requirement.
type EstimationRequest struct {
	Description  string
	Requirements []models.RequirementStub
	Questions    []models.Question
	Answers      models.Answers
}

// EstimationResponse carries one result per requirement.
type EstimationResponse struct {
	Success bool
	Results []models.EstimationResult
	Error   string
}

// QuestionGenerator produces the question set for a description.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) (*QuestionResponse, error)
}

// PresetGenerator produces a preset from a completed single-mode interview.
type PresetGenerator interface {
	GeneratePreset(ctx context.Context, req PresetRequest) (*PresetResponse, error)
}

// EstimationGenerator produces per-requirement estimations from a completed bulk interview.
type EstimationGenerator interface {
	GenerateEstimations(ctx context.Context, req EstimationRequest) (*EstimationResponse, error)
}
