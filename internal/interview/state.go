// Package interview implements the estimation interview: a pure transition
// function over [State] and a [Wizard] that runs the asynchronous work the
// transitions ask for.
package interview

import (
	"fmt"
	"strings"

	"github.com/spboyer/estimator/internal/bulk"
	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/review"
	"github.com/spboyer/estimator/internal/validation"
)

// Phase is the screen the session is on. A renderer needs nothing else to
// decide what to show.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseLoadingQuestions Phase = "loading-questions"
	PhaseInterview        Phase = "interview"
	PhaseGenerating       Phase = "generating"
	PhaseReview           Phase = "review"
	PhaseSaving           Phase = "saving"
	PhaseComplete         Phase = "complete"
	PhaseError            Phase = "error"
)

// Busy reports whether p waits on a generator or the store.
func (p Phase) Busy() bool {
	return p == PhaseLoadingQuestions || p == PhaseGenerating || p == PhaseSaving
}

// Mode selects the artifact the session produces.
type Mode string

const (
	// ModeSingle produces one technology preset.
	ModeSingle Mode = "single"
	// ModeBulk produces one estimation per requirement.
	ModeBulk Mode = "bulk"
)

// ErrorKind classifies a session error.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindGeneration  ErrorKind = "generation"
	KindTransport   ErrorKind = "transport"
	KindPersistence ErrorKind = "persistence"
)

// Error is the failure shown to the user. Phase is where it happened and is
// the phase a retry goes back to.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Phase   Phase
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Limits are the tunable guards of a session.
type Limits struct {
	MinDescription int
	MaxDescription int
	MinActivities  int
}

// DefaultLimits returns the standard description bounds and activity minimum.
func DefaultLimits() Limits {
	return Limits{MinDescription: 20, MaxDescription: 1000, MinActivities: review.DefaultMinActivities}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MinDescription <= 0 {
		l.MinDescription = d.MinDescription
	}
	if l.MaxDescription <= 0 {
		l.MaxDescription = d.MaxDescription
	}
	if l.MinActivities <= 0 {
		l.MinActivities = d.MinActivities
	}
	return l
}

// ItemFailure records a bulk item that could not be saved.
type ItemFailure struct {
	RequirementID string
	Message       string
}

// State is one interview session. It is a value: [Transition] returns a new
// State and never mutates the slices or maps of the one it was given.
type State struct {
	Phase  Phase
	Token  uint64
	Mode   Mode
	Limits Limits

	Description           string
	TechCategory          string
	SuggestedTechCategory string
	Reasoning             string
	Requirements          []models.RequirementStub

	Questions    []models.Question
	Answers      models.Answers
	CurrentIndex int

	// single mode
	Draft    review.Draft
	Metadata map[string]any

	// bulk mode
	Estimations  []models.EstimationResult
	Selection    bulk.Selection
	SaveQueue    []models.EstimationResult
	SaveProgress float64
	Tally        bulk.Tally
	SaveFailures []ItemFailure

	Err *Error
	// Notice is an inline message for a rejected local edit. It never changes the phase.
	Notice string
}

// NewState returns an idle session.
func NewState(mode Mode, limits Limits) State {
	if mode == "" {
		mode = ModeSingle
	}
	return State{
		Phase:   PhaseIdle,
		Mode:    mode,
		Limits:  limits.withDefaults(),
		Answers: models.Answers{},
	}
}

// CurrentQuestion returns the question at CurrentIndex.
func (s State) CurrentQuestion() (models.Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return models.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// CanProceed is false only when the current question is required and has no
// structurally valid answer.
func (s State) CanProceed() bool {
	q, ok := s.CurrentQuestion()
	if !ok {
		return false
	}
	if !q.Required {
		return true
	}
	return validation.IsAnswered(q, s.Answers.Value(q.ID))
}

func (s State) IsFirstQuestion() bool {
	return s.CurrentIndex == 0
}

func (s State) IsLastQuestion() bool {
	return len(s.Questions) > 0 && s.CurrentIndex == len(s.Questions)-1
}

// Progress is the 1-based position of the current question as a percentage.
func (s State) Progress() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	return float64(s.CurrentIndex+1) / float64(len(s.Questions)) * 100
}

// CanSave reports whether the review screen should enable saving. It is a
// display guard: [Save] is accepted in review regardless.
func (s State) CanSave() bool {
	if s.Phase != PhaseReview {
		return false
	}
	if s.Mode == ModeBulk {
		return s.Selection.Len() > 0
	}
	return s.Draft.CanSave(s.Limits.MinActivities)
}

// ValidationErrors returns the details of a validation failure, if any.
func (s State) ValidationErrors() []string {
	if s.Err == nil || s.Err.Kind != KindValidation {
		return nil
	}
	return s.Err.Details
}

func (s State) String() string {
	return fmt.Sprintf("%s#%d", s.Phase, s.Token)
}
