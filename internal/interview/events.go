package interview

import (
	"time"

	"github.com/spboyer/estimator/internal/bulk"
	"github.com/spboyer/estimator/internal/generation"
	"github.com/spboyer/estimator/internal/models"
)

// Event is an input to [Transition]. The set is closed.
//
// Events that report the result of asynchronous work carry the Token of the
// request they answer and are dropped when it no longer matches the session.
type Event interface {
	eventName() string
}

// Submit starts a session from a project description. Requirements are
// required in bulk mode and ignored otherwise.
type Submit struct {
	Description  string
	TechCategory string
	Requirements []models.RequirementStub
}

type QuestionsLoaded struct {
	Token    uint64
	Response *generation.QuestionResponse
}

type QuestionsFailed struct {
	Token uint64
	Err   error
}

// Answer sets the answer to a question. A nil or empty Value clears it.
type Answer struct {
	QuestionID string
	Value      models.Value
	At         time.Time
}

type Next struct{}

type Previous struct{}

// Complete ends the interview and requests the artifact.
type Complete struct{}

type PresetGenerated struct {
	Token    uint64
	Response *generation.PresetResponse
}

type EstimationsGenerated struct {
	Token    uint64
	Response *generation.EstimationResponse
}

// GenerationFailed reports a transport failure of artifact generation.
type GenerationFailed struct {
	Token uint64
	Err   error
}

type Rename struct{ Name string }

type Redescribe struct{ Description string }

type ToggleActivity struct{ Code string }

type ToggleSelection struct{ RequirementID string }

// SelectAll selects every successful estimation.
type SelectAll struct{}

type Save struct{}

type Saved struct{ Token uint64 }

type SaveFailed struct {
	Token uint64
	Err   error
}

// ItemSaved reports one item of a bulk save.
type ItemSaved struct {
	Token    uint64
	Progress bulk.Progress
}

// Retry re-enters the phase that failed with the same inputs.
type Retry struct{}

// Reset discards the session.
type Reset struct{}

// Abandon invalidates outstanding requests without changing the phase. It is
// sent when the session is closed and the reset is deferred.
type Abandon struct{}

func (Submit) eventName() string               { return "submit" }
func (QuestionsLoaded) eventName() string      { return "questions_loaded" }
func (QuestionsFailed) eventName() string      { return "questions_failed" }
func (Answer) eventName() string               { return "answer" }
func (Next) eventName() string                 { return "next" }
func (Previous) eventName() string             { return "previous" }
func (Complete) eventName() string             { return "complete" }
func (PresetGenerated) eventName() string      { return "preset_generated" }
func (EstimationsGenerated) eventName() string { return "estimations_generated" }
func (GenerationFailed) eventName() string     { return "generation_failed" }
func (Rename) eventName() string               { return "rename" }
func (Redescribe) eventName() string           { return "redescribe" }
func (ToggleActivity) eventName() string       { return "toggle_activity" }
func (ToggleSelection) eventName() string      { return "toggle_selection" }
func (SelectAll) eventName() string            { return "select_all" }
func (Save) eventName() string                 { return "save" }
func (Saved) eventName() string                { return "saved" }
func (SaveFailed) eventName() string           { return "save_failed" }
func (ItemSaved) eventName() string            { return "item_saved" }
func (Retry) eventName() string                { return "retry" }
func (Reset) eventName() string                { return "reset" }
func (Abandon) eventName() string              { return "abandon" }

// EffectKind names the asynchronous work a transition asks for.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectLoadQuestions
	EffectGeneratePreset
	EffectGenerateEstimations
	EffectSavePreset
	EffectSaveEstimations
)

func (k EffectKind) String() string {
	switch k {
	case EffectNone:
		return "none"
	case EffectLoadQuestions:
		return "load-questions"
	case EffectGeneratePreset:
		return "generate-preset"
	case EffectGenerateEstimations:
		return "generate-estimations"
	case EffectSavePreset:
		return "save-preset"
	case EffectSaveEstimations:
		return "save-estimations"
	}
	return "unknown"
}

// Effect is the work to run after a transition. Only the request field that
// matches Kind is set. Token must be copied onto the result event.
type Effect struct {
	Kind  EffectKind
	Token uint64

	Questions   generation.QuestionRequest
	Preset      generation.PresetRequest
	Estimations generation.EstimationRequest
	Draft       models.Preset
	Items       []models.EstimationResult
}
