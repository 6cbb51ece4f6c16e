package interview

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spboyer/estimator/internal/bulk"
	"github.com/spboyer/estimator/internal/generation"
	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/review"
	"github.com/spboyer/estimator/internal/validation"
)

const (
	msgQuestionsFailed   = "Could not generate questions for this description."
	msgNoQuestions       = "The generator returned no questions."
	msgPresetFailed      = "Could not generate a preset from your answers."
	msgEstimationsFailed = "Could not generate estimations for these requirements."
	msgInvalidAnswers    = "Some answers need attention before continuing."
	msgSaveFailed        = "Could not save the preset."
	msgSelectToSave      = "Select at least one estimation to save."
)

// Transition applies ev to s and returns the next state together with the
// work the caller must run. Events that do not apply to the current phase,
// and results whose token is stale, leave s unchanged.
func Transition(s State, ev Event) (State, Effect) {
	next, eff, _ := apply(s, ev)
	return next, eff
}

// apply is Transition plus whether ev was accepted.
func apply(s State, ev Event) (State, Effect, bool) {
	switch ev.(type) {
	case Reset:
		return NewState(s.Mode, s.Limits).withToken(s.Token + 1), Effect{}, true
	case Abandon:
		s.Token++
		return s, Effect{}, true
	}

	switch s.Phase {
	case PhaseIdle:
		if e, ok := ev.(Submit); ok {
			return submit(s, e)
		}

	case PhaseLoadingQuestions:
		switch e := ev.(type) {
		case QuestionsLoaded:
			if e.Token != s.Token {
				return s, Effect{}, false
			}
			return questionsLoaded(s, e.Response), Effect{}, true
		case QuestionsFailed:
			if e.Token != s.Token {
				return s, Effect{}, false
			}
			return s.fail(failureKind(e.Err), PhaseLoadingQuestions, msgQuestionsFailed, errDetails(e.Err)...), Effect{}, true
		}

	case PhaseInterview:
		return interview(s, ev)

	case PhaseGenerating:
		switch e := ev.(type) {
		case PresetGenerated:
			if e.Token != s.Token || s.Mode != ModeSingle {
				return s, Effect{}, false
			}
			return presetGenerated(s, e.Response), Effect{}, true
		case EstimationsGenerated:
			if e.Token != s.Token || s.Mode != ModeBulk {
				return s, Effect{}, false
			}
			return estimationsGenerated(s, e.Response), Effect{}, true
		case GenerationFailed:
			if e.Token != s.Token {
				return s, Effect{}, false
			}
			return s.fail(failureKind(e.Err), PhaseGenerating, s.generationFailedMessage(), errDetails(e.Err)...), Effect{}, true
		}

	case PhaseReview:
		return reviewEdit(s, ev)

	case PhaseSaving:
		switch e := ev.(type) {
		case Saved:
			if e.Token != s.Token || s.Mode != ModeSingle {
				return s, Effect{}, false
			}
			s.Phase = PhaseComplete
			return s, Effect{}, true
		case SaveFailed:
			if e.Token != s.Token {
				return s, Effect{}, false
			}
			return s.fail(KindPersistence, PhaseSaving, msgSaveFailed, errDetails(e.Err)...), Effect{}, true
		case ItemSaved:
			if e.Token != s.Token || s.Mode != ModeBulk {
				return s, Effect{}, false
			}
			return itemSaved(s, e.Progress), Effect{}, true
		}

	case PhaseError:
		if _, ok := ev.(Retry); ok {
			return retry(s)
		}
	}

	return s, Effect{}, false
}

func submit(s State, e Submit) (State, Effect, bool) {
	desc := SanitizeDescription(e.Description)
	n := utf8.RuneCountInString(desc)
	if n < s.Limits.MinDescription || n > s.Limits.MaxDescription {
		s.Err = &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("The description must be between %d and %d characters (got %d).", s.Limits.MinDescription, s.Limits.MaxDescription, n),
			Phase:   PhaseIdle,
		}
		return s, Effect{}, true
	}

	if s.Mode == ModeBulk {
		if errs := checkRequirements(e.Requirements); len(errs) > 0 {
			s.Err = &Error{Kind: KindValidation, Message: "The batch needs at least one requirement with a unique id.", Details: errs, Phase: PhaseIdle}
			return s, Effect{}, true
		}
		s.Requirements = slices.Clone(e.Requirements)
	}

	s.Description = desc
	s.TechCategory = strings.TrimSpace(e.TechCategory)
	s.Err = nil
	s.Notice = ""
	s.Phase = PhaseLoadingQuestions
	s.Token++
	return s, s.loadQuestions(), true
}

func questionsLoaded(s State, resp *generation.QuestionResponse) State {
	switch {
	case resp == nil:
		return s.fail(KindGeneration, PhaseLoadingQuestions, msgQuestionsFailed)
	case !resp.Success:
		return s.fail(KindGeneration, PhaseLoadingQuestions, orDefault(resp.Error, msgQuestionsFailed))
	case len(resp.Questions) == 0:
		return s.fail(KindGeneration, PhaseLoadingQuestions, msgNoQuestions)
	}
	if err := models.ValidateQuestionSet(resp.Questions); err != nil {
		return s.fail(KindGeneration, PhaseLoadingQuestions, msgQuestionsFailed, splitJoined(err)...)
	}
	if s.Mode == ModeBulk {
		if errs := bulk.CheckScopes(resp.Questions, s.Requirements); len(errs) > 0 {
			return s.fail(KindGeneration, PhaseLoadingQuestions, msgQuestionsFailed, errs...)
		}
	}

	s.Questions = slices.Clone(resp.Questions)
	s.Answers = models.Answers{}
	s.CurrentIndex = 0
	s.Reasoning = resp.Reasoning
	s.SuggestedTechCategory = resp.SuggestedTechCategory
	s.Phase = PhaseInterview
	s.Err = nil
	return s
}

func interview(s State, ev Event) (State, Effect, bool) {
	switch e := ev.(type) {
	case Answer:
		if _, ok := models.FindQuestion(s.Questions, e.QuestionID); !ok {
			return s, Effect{}, false
		}
		if validation.IsEmpty(e.Value) {
			s.Answers = s.Answers.Without(e.QuestionID)
		} else {
			s.Answers = s.Answers.With(e.QuestionID, e.Value, e.At)
		}
		return s, Effect{}, true

	case Next:
		if !s.CanProceed() || s.IsLastQuestion() {
			return s, Effect{}, false
		}
		s.CurrentIndex++
		return s, Effect{}, true

	case Previous:
		if s.CurrentIndex == 0 {
			return s, Effect{}, false
		}
		s.CurrentIndex--
		return s, Effect{}, true

	case Complete:
		if errs := validation.Validate(s.Answers, s.Questions); len(errs) > 0 {
			return s.fail(KindValidation, PhaseInterview, msgInvalidAnswers, errs...), Effect{}, true
		}
		s.Err = nil
		s.Phase = PhaseGenerating
		s.Token++
		return s, s.generate(), true
	}
	return s, Effect{}, false
}

func presetGenerated(s State, resp *generation.PresetResponse) State {
	switch {
	case resp == nil:
		return s.fail(KindGeneration, PhaseGenerating, msgPresetFailed)
	case !resp.Success:
		return s.fail(KindGeneration, PhaseGenerating, orDefault(resp.Error, msgPresetFailed))
	case resp.Preset == nil || len(resp.Preset.Activities) == 0:
		return s.fail(KindGeneration, PhaseGenerating, msgPresetFailed, "the preset has no activities")
	}
	if err := resp.Preset.Validate(); err != nil {
		return s.fail(KindGeneration, PhaseGenerating, msgPresetFailed, splitJoined(err)...)
	}
	s.Draft = review.New(*resp.Preset)
	s.Metadata = resp.Metadata
	s.Phase = PhaseReview
	s.Err = nil
	s.Notice = ""
	return s
}

func estimationsGenerated(s State, resp *generation.EstimationResponse) State {
	switch {
	case resp == nil:
		return s.fail(KindGeneration, PhaseGenerating, msgEstimationsFailed)
	case !resp.Success:
		return s.fail(KindGeneration, PhaseGenerating, orDefault(resp.Error, msgEstimationsFailed))
	case len(resp.Results) == 0:
		return s.fail(KindGeneration, PhaseGenerating, msgEstimationsFailed, "no estimations were returned")
	}
	results := make([]models.EstimationResult, len(resp.Results))
	var errs []string
	for i, r := range resp.Results {
		results[i] = r.Normalize()
		if err := results[i].Validate(); err != nil {
			errs = append(errs, splitJoined(err)...)
		}
	}
	if len(errs) > 0 {
		return s.fail(KindGeneration, PhaseGenerating, msgEstimationsFailed, errs...)
	}
	s.Estimations = results
	s.Selection = bulk.SelectAllSuccessful(s.Estimations)
	s.Phase = PhaseReview
	s.Err = nil
	s.Notice = ""
	return s
}

func reviewEdit(s State, ev Event) (State, Effect, bool) {
	var (
		d   review.Draft
		err error
	)
	switch e := ev.(type) {
	case Rename:
		if s.Mode != ModeSingle {
			return s, Effect{}, false
		}
		d, err = s.Draft.Rename(e.Name)
	case Redescribe:
		if s.Mode != ModeSingle {
			return s, Effect{}, false
		}
		d, err = s.Draft.Redescribe(e.Description)
	case ToggleActivity:
		if s.Mode != ModeSingle {
			return s, Effect{}, false
		}
		d, err = s.Draft.ToggleActivity(e.Code)

	case ToggleSelection:
		if s.Mode != ModeBulk {
			return s, Effect{}, false
		}
		s.Selection = s.Selection.Toggle(s.Estimations, e.RequirementID)
		s.Notice = ""
		return s, Effect{}, true
	case SelectAll:
		if s.Mode != ModeBulk {
			return s, Effect{}, false
		}
		s.Selection = bulk.SelectAllSuccessful(s.Estimations)
		s.Notice = ""
		return s, Effect{}, true

	case Save:
		return save(s)
	default:
		return s, Effect{}, false
	}

	if err != nil {
		s.Notice = err.Error()
		return s, Effect{}, true
	}
	s.Draft = d
	s.Notice = ""
	return s, Effect{}, true
}

func save(s State) (State, Effect, bool) {
	if s.Mode == ModeBulk {
		if s.Selection.Len() == 0 {
			s.Notice = msgSelectToSave
			return s, Effect{}, true
		}
		s.SaveQueue = s.Selection.Items(s.Estimations)
	}
	s.SaveProgress = 0
	s.Tally = bulk.Tally{}
	s.SaveFailures = nil
	s.Notice = ""
	s.Phase = PhaseSaving
	s.Token++
	return s, s.persist(), true
}

func itemSaved(s State, p bulk.Progress) State {
	if p.Err != nil {
		s.Tally.Failed++
		s.SaveFailures = append(slices.Clone(s.SaveFailures), ItemFailure{RequirementID: p.Item.RequirementID, Message: p.Err.Error()})
	} else {
		s.Tally.Success++
	}
	s.SaveProgress = p.Percent
	if s.Tally.Total() >= len(s.SaveQueue) {
		s.SaveProgress = 100
		s.Phase = PhaseComplete
	}
	return s
}

func retry(s State) (State, Effect, bool) {
	if s.Err == nil {
		return s, Effect{}, false
	}
	failed := s.Err.Phase
	s.Err = nil
	switch failed {
	case PhaseInterview:
		s.Phase = PhaseInterview
		return s, Effect{}, true
	case PhaseLoadingQuestions:
		s.Phase = PhaseLoadingQuestions
		s.Token++
		return s, s.loadQuestions(), true
	case PhaseGenerating:
		s.Phase = PhaseGenerating
		s.Token++
		return s, s.generate(), true
	case PhaseSaving:
		return save(s)
	}
	s.Phase = PhaseIdle
	return s, Effect{}, true
}

func (s State) loadQuestions() Effect {
	return Effect{
		Kind:  EffectLoadQuestions,
		Token: s.Token,
		Questions: generation.QuestionRequest{
			Description:  s.Description,
			TechCategory: s.TechCategory,
			Requirements: s.Requirements,
		},
	}
}

func (s State) generate() Effect {
	if s.Mode == ModeBulk {
		return Effect{
			Kind:  EffectGenerateEstimations,
			Token: s.Token,
			Estimations: generation.EstimationRequest{
				Description:  s.Description,
				Requirements: s.Requirements,
				Questions:    s.Questions,
				Answers:      s.Answers,
			},
		}
	}
	return Effect{
		Kind:  EffectGeneratePreset,
		Token: s.Token,
		Preset: generation.PresetRequest{
			Description:           s.Description,
			Answers:               s.Answers,
			SuggestedTechCategory: orDefault(s.SuggestedTechCategory, s.TechCategory),
		},
	}
}

func (s State) persist() Effect {
	if s.Mode == ModeBulk {
		return Effect{Kind: EffectSaveEstimations, Token: s.Token, Items: s.SaveQueue}
	}
	return Effect{Kind: EffectSavePreset, Token: s.Token, Draft: s.Draft.Current()}
}

func (s State) fail(kind ErrorKind, phase Phase, msg string, details ...string) State {
	s.Err = &Error{Kind: kind, Message: msg, Details: details, Phase: phase}
	s.Phase = PhaseError
	return s
}

func (s State) withToken(t uint64) State {
	s.Token = t
	return s
}

func (s State) generationFailedMessage() string {
	if s.Mode == ModeBulk {
		return msgEstimationsFailed
	}
	return msgPresetFailed
}

// SanitizeDescription drops control characters, collapses runs of
// whitespace and trims the result.
func SanitizeDescription(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func checkRequirements(reqs []models.RequirementStub) []string {
	if len(reqs) == 0 {
		return []string{"no requirements"}
	}
	var errs []string
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		id := strings.TrimSpace(r.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Sprintf("requirement %d has no id", i+1))
		case seen[id]:
			errs = append(errs, fmt.Sprintf("requirement id %q is repeated", id))
		}
		seen[id] = true
	}
	return errs
}

// failureKind separates results the generator answered badly from calls
// that never produced an answer.
func failureKind(err error) ErrorKind {
	if errors.Is(err, generation.ErrMalformedResult) || errors.Is(err, generation.ErrEmptyResult) {
		return KindGeneration
	}
	return KindTransport
}

func errDetails(err error) []string {
	if err == nil {
		return nil
	}
	return []string{err.Error()}
}

// splitJoined flattens an errors.Join result into one message per error.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
