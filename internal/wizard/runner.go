// Package wizard renders an interview session in the terminal: one form
// field per question, the review menu, and the bulk result picker.
package wizard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spboyer/estimator/internal/interview"
	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/spinner"
	"github.com/spboyer/estimator/internal/validation"
)

// Session is the part of [interview.Wizard] the runner drives.
type Session interface {
	State() interview.State
	Submit(description, techCategory string, requirements ...models.RequirementStub)
	Answer(questionID string, v models.Value)
	Next()
	Previous()
	Complete()
	Rename(name string)
	Redescribe(description string)
	ToggleActivity(code string)
	ToggleSelection(requirementID string)
	SelectAll()
	Save()
	Retry()
	Reset()
	Wait()
}

var _ Session = (*interview.Wizard)(nil)

// Start seeds the first submission. An empty Description is asked for.
type Start struct {
	Description  string
	TechCategory string
	Requirements []models.RequirementStub
}

const (
	actionNext     = "next"
	actionBack     = "back"
	actionSave     = "save"
	actionRename   = "rename"
	actionDescribe = "describe"
	actionToggle   = "toggle"
	actionPick     = "pick"
	actionAll      = "all"
	actionRetry    = "retry"
	actionRestart  = "restart"
	actionQuit     = "quit"
)

// Runner walks the user through a session until it completes or they quit.
type Runner struct {
	session Session
	prompt  Prompter
	out     io.Writer
	logger  *slog.Logger

	lastDescription string

	mu   sync.Mutex
	spin *spinner.Spinner
}

// NewRunner returns a Runner. A nil logger uses slog.Default().
func NewRunner(session Session, prompt Prompter, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{session: session, prompt: prompt, out: out, logger: logger}
}

// Observe updates the progress line while the session is busy. Wire it to
// [interview.Config.OnChange].
func (r *Runner) Observe(s interview.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin == nil {
		return
	}
	r.spin.Update(busyLabel(s))
}

// Run drives the session from start to a terminal phase. It returns the final
// state; the error is [ErrQuit] when the user leaves, or a prompt failure.
func (r *Runner) Run(ctx context.Context, start Start) (interview.State, error) {
	submitted := false
	for {
		if err := ctx.Err(); err != nil {
			return r.session.State(), err
		}

		s := r.session.State()
		r.logger.Debug("Rendering", "phase", s.Phase, "token", s.Token)

		var err error
		switch s.Phase {
		case interview.PhaseIdle:
			err = r.describe(s, start, submitted)
			submitted = true
		case interview.PhaseLoadingQuestions, interview.PhaseGenerating, interview.PhaseSaving:
			err = r.wait(s)
		case interview.PhaseInterview:
			err = r.ask(s)
		case interview.PhaseReview:
			err = r.review(s)
		case interview.PhaseError:
			err = r.recover(s)
		case interview.PhaseComplete:
			r.summarize(s)
			return s, nil
		default:
			err = fmt.Errorf("unexpected phase %q", s.Phase)
		}
		if err != nil {
			return r.session.State(), err
		}
	}
}

//nolint:errcheck // terminal output
func (r *Runner) describe(s interview.State, start Start, submitted bool) error {
	desc := start.Description
	if submitted || strings.TrimSpace(desc) == "" {
		if s.Err != nil {
			r.printError(s.Err)
		}
		var err error
		desc, err = r.prompt.Input(InputPrompt{
			Title:       "Describe the project",
			Description: fmt.Sprintf("Between %d and %d characters.", s.Limits.MinDescription, s.Limits.MaxDescription),
			Placeholder: "B2B ecommerce platform with ERP integration",
			Value:       r.lastDescription,
			CharLimit:   s.Limits.MaxDescription,
			Multiline:   true,
		})
		if err != nil {
			return err
		}
	}
	r.lastDescription = desc
	r.session.Submit(desc, start.TechCategory, start.Requirements...)
	return nil
}

func (r *Runner) wait(s interview.State) error {
	sp := spinner.Start(r.out, busyLabel(s))
	r.mu.Lock()
	r.spin = sp
	r.mu.Unlock()

	r.session.Wait()

	r.mu.Lock()
	r.spin = nil
	r.mu.Unlock()
	sp.Stop()

	next := r.session.State()
	if next.Phase == s.Phase && next.Token == s.Token && next.SaveProgress == s.SaveProgress {
		return fmt.Errorf("session stalled while %s", s.Phase)
	}
	return nil
}

func busyLabel(s interview.State) string {
	switch s.Phase {
	case interview.PhaseLoadingQuestions:
		return "Generating questions"
	case interview.PhaseGenerating:
		if s.Mode == interview.ModeBulk {
			return fmt.Sprintf("Estimating %d requirements", len(s.Requirements))
		}
		return "Generating preset"
	case interview.PhaseSaving:
		if s.Mode == interview.ModeBulk {
			return fmt.Sprintf("Saving estimations %d/%d", s.Tally.Total(), len(s.SaveQueue))
		}
		return "Saving preset"
	}
	return "Working"
}

//nolint:errcheck // terminal output
func (r *Runner) ask(s interview.State) error {
	q, ok := s.CurrentQuestion()
	if !ok {
		return fmt.Errorf("no question at index %d", s.CurrentIndex)
	}
	fmt.Fprintf(r.out, "\nQuestion %d of %d (%.0f%%)\n", s.CurrentIndex+1, len(s.Questions), s.Progress())

	v, err := r.answer(q, s.Answers.Value(q.ID))
	if err != nil {
		return err
	}
	r.session.Answer(q.ID, v)

	s = r.session.State()
	if !s.CanProceed() {
		fmt.Fprintln(r.out, "An answer is required to continue.")
		return nil
	}

	action := actionNext
	if !s.IsFirstQuestion() {
		next := "Next question"
		if s.IsLastQuestion() {
			next = "Finish"
		}
		action, err = r.prompt.Select("Continue?", "", []Choice{
			{Label: next, Value: actionNext},
			{Label: "Previous question", Value: actionBack},
		}, actionNext)
		if err != nil {
			return err
		}
	}

	switch {
	case action == actionBack:
		r.session.Previous()
	case s.IsLastQuestion():
		r.session.Complete()
	default:
		r.session.Next()
	}
	return nil
}

// answer asks q and returns the new value. A nil value clears the answer.
func (r *Runner) answer(q models.Question, current models.Value) (models.Value, error) {
	title := q.Label
	if !q.Required {
		title += " (optional)"
	}

	switch q.Kind {
	case models.KindSingleChoice:
		return r.answerSingle(q, title, current)
	case models.KindMultipleChoice:
		return r.answerMultiple(q, title, current)
	case models.KindText:
		cur, _ := current.(models.TextValue)
		text, err := r.prompt.Input(InputPrompt{
			Title:       title,
			Description: q.HelpText,
			Value:       string(cur),
			CharLimit:   q.MaxLength,
			Multiline:   true,
		})
		if err != nil || strings.TrimSpace(text) == "" {
			return nil, err
		}
		return models.TextValue(strings.TrimSpace(text)), nil
	case models.KindRange:
		return r.answerRange(q, title, current)
	}
	return nil, fmt.Errorf("question %q: unknown type %q", q.ID, q.Kind)
}

func (r *Runner) answerSingle(q models.Question, title string, current models.Value) (models.Value, error) {
	cur, _ := current.(models.TextValue)
	value := string(cur)
	custom := ""
	if value != "" && !q.HasOption(value) {
		custom = value
		value = models.OtherOptionID
	}

	choices := optionChoices(q)
	if !q.Required {
		choices = append(choices, Choice{Label: "Skip", Value: ""})
	}
	picked, err := r.prompt.Select(title, q.HelpText, choices, value)
	if err != nil || picked == "" {
		return nil, err
	}
	if picked != models.OtherOptionID || !q.AllowsOther() {
		return models.TextValue(picked), nil
	}

	text, err := r.prompt.Input(InputPrompt{Title: "Other", Description: "Describe your answer.", Value: custom})
	if err != nil {
		return nil, err
	}
	return models.TextValue(models.OtherEntry(text)), nil
}

func (r *Runner) answerMultiple(q models.Question, title string, current models.Value) (models.Value, error) {
	cur, _ := current.(models.ChoicesValue)
	var selected []string
	for _, o := range q.Options {
		if slices.Contains(cur, o.ID) {
			selected = append(selected, o.ID)
		}
	}
	if _, active := models.OtherText(q, cur); active && !slices.Contains(selected, models.OtherOptionID) {
		selected = append(selected, models.OtherOptionID)
	}

	picked, err := r.prompt.MultiSelect(title, q.HelpText, optionChoices(q), selected)
	if err != nil {
		return nil, err
	}

	next := cur
	for _, o := range q.Options {
		if slices.Contains(picked, o.ID) != slices.Contains(selected, o.ID) {
			next = models.ToggleChoice(q, next, o.ID)
		}
	}
	if text, active := models.OtherText(q, next); active {
		text, err = r.prompt.Input(InputPrompt{Title: "Other", Description: "Describe the other choice.", Value: text})
		if err != nil {
			return nil, err
		}
		next = models.SetOtherText(q, next, text)
	}
	if len(next) == 0 {
		return nil, nil
	}
	return next, nil
}

func (r *Runner) answerRange(q models.Question, title string, current models.Value) (models.Value, error) {
	value := ""
	switch {
	case current != nil:
		if n, ok := current.(models.NumberValue); ok {
			value = formatNumber(float64(n))
		}
	case q.DefaultValue != nil:
		value = formatNumber(*q.DefaultValue)
	}

	desc := fmt.Sprintf("%s to %s", formatNumber(q.Min), formatNumber(q.Max))
	if q.Unit != "" {
		desc += " " + q.Unit
	}
	if q.HelpText != "" {
		desc = q.HelpText + " (" + desc + ")"
	}

	for {
		text, err := r.prompt.Input(InputPrompt{
			Title:       title,
			Description: desc,
			Value:       value,
			Validate: func(s string) error {
				_, err := parseRange(q, s)
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		n, err := parseRange(q, text)
		if err != nil {
			fmt.Fprintf(r.out, "%v\n", err) //nolint:errcheck // terminal output
			value = text
			continue
		}
		if n == nil {
			return nil, nil
		}
		return *n, nil
	}
}

// parseRange returns nil for an empty optional answer.
func parseRange(q models.Question, s string) (*models.NumberValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if q.Required {
			return nil, fmt.Errorf("%s: a number is required", q.Label)
		}
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", q.Label, s)
	}
	n := models.NumberValue(f)
	if err := validation.CheckValue(q, n); err != nil {
		return nil, err
	}
	return &n, nil
}

func optionChoices(q models.Question) []Choice {
	choices := make([]Choice, 0, len(q.Options))
	for _, o := range q.Options {
		label := o.Label
		if o.Description != "" {
			label += " - " + o.Description
		}
		choices = append(choices, Choice{Label: label, Value: o.ID})
	}
	return choices
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (r *Runner) review(s interview.State) error {
	if s.Mode == interview.ModeBulk {
		return r.reviewEstimations(s)
	}
	return r.reviewPreset(s)
}

//nolint:errcheck // terminal output
func (r *Runner) reviewPreset(s interview.State) error {
	p := s.Draft.Current()
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", p.Name, p.Description)
	r.printActivities(s)
	if s.Notice != "" {
		fmt.Fprintln(r.out, s.Notice)
	}

	var choices []Choice
	if s.CanSave() {
		choices = append(choices, Choice{Label: "Save preset", Value: actionSave})
	} else {
		fmt.Fprintf(r.out, "Keep at least %d activities to save.\n", s.Limits.MinActivities)
	}
	choices = append(choices,
		Choice{Label: "Rename", Value: actionRename},
		Choice{Label: "Edit description", Value: actionDescribe},
		Choice{Label: "Include or exclude an activity", Value: actionToggle},
		Choice{Label: "Start over", Value: actionRestart},
		Choice{Label: "Quit without saving", Value: actionQuit},
	)

	action, err := r.prompt.Select("What next?", "", choices, choices[0].Value)
	if err != nil {
		return err
	}
	switch action {
	case actionSave:
		r.session.Save()
	case actionRename:
		name, err := r.prompt.Input(InputPrompt{Title: "Preset name", Value: p.Name})
		if err != nil {
			return err
		}
		r.session.Rename(name)
	case actionDescribe:
		desc, err := r.prompt.Input(InputPrompt{Title: "Preset description", Value: p.Description, Multiline: true})
		if err != nil {
			return err
		}
		r.session.Redescribe(desc)
	case actionToggle:
		var activities []Choice
		for _, a := range s.Draft.Original().Activities {
			mark := "[ ]"
			if s.Draft.Included(a.Code) {
				mark = "[x]"
			}
			activities = append(activities, Choice{Label: fmt.Sprintf("%s %s %s", mark, a.Code, a.Title), Value: a.Code})
		}
		code, err := r.prompt.Select("Toggle which activity?", "", activities, "")
		if err != nil {
			return err
		}
		r.session.ToggleActivity(code)
	case actionRestart:
		r.session.Reset()
	case actionQuit:
		return ErrQuit
	}
	return nil
}

//nolint:errcheck // terminal output
func (r *Runner) printActivities(s interview.State) {
	var rows [][]string
	for _, a := range s.Draft.Original().Activities {
		mark := " "
		if s.Draft.Included(a.Code) {
			mark = "x"
		}
		rows = append(rows, []string{
			mark, a.Code, a.Title, string(a.Priority),
			formatNumber(a.BaseHours), fmt.Sprintf("%.0f%%", a.Confidence*100),
		})
	}
	writeTable(r.out, []string{"", "Code", "Activity", "Priority", "Hours", "Confidence"}, rows)
	fmt.Fprintf(r.out, "\nTotal: %.1f days\n", s.Draft.TotalDays())
}

//nolint:errcheck // terminal output
func (r *Runner) reviewEstimations(s interview.State) error {
	var rows [][]string
	var successful []Choice
	for _, res := range s.Estimations {
		mark := " "
		if s.Selection.Has(res.RequirementID) {
			mark = "x"
		}
		status, days, note := "ok", fmt.Sprintf("%.1f", res.TotalBaseDays), res.Reasoning
		if !res.Success {
			status, days, note = "failed", "-", res.Error
		} else {
			successful = append(successful, Choice{Label: fmt.Sprintf("%s (%.1f days)", res.ReqCode, res.TotalBaseDays), Value: res.RequirementID})
		}
		rows = append(rows, []string{mark, res.ReqCode, status, days, fmt.Sprintf("%.0f%%", res.ConfidenceScore*100), note})
	}
	fmt.Fprintln(r.out)
	writeTable(r.out, []string{"", "Requirement", "Status", "Days", "Confidence", "Notes"}, rows)
	if s.Notice != "" {
		fmt.Fprintln(r.out, s.Notice)
	}

	var choices []Choice
	if s.CanSave() {
		choices = append(choices, Choice{Label: fmt.Sprintf("Save %d selected", s.Selection.Len()), Value: actionSave})
	}
	choices = append(choices,
		Choice{Label: "Choose estimations", Value: actionPick},
		Choice{Label: "Select all", Value: actionAll},
		Choice{Label: "Start over", Value: actionRestart},
		Choice{Label: "Quit without saving", Value: actionQuit},
	)

	action, err := r.prompt.Select("What next?", "", choices, choices[0].Value)
	if err != nil {
		return err
	}
	switch action {
	case actionSave:
		r.session.Save()
	case actionPick:
		var selected []string
		for _, c := range successful {
			if s.Selection.Has(c.Value) {
				selected = append(selected, c.Value)
			}
		}
		picked, err := r.prompt.MultiSelect("Estimations to save", "", successful, selected)
		if err != nil {
			return err
		}
		for _, c := range successful {
			if slices.Contains(picked, c.Value) != s.Selection.Has(c.Value) {
				r.session.ToggleSelection(c.Value)
			}
		}
	case actionAll:
		r.session.SelectAll()
	case actionRestart:
		r.session.Reset()
	case actionQuit:
		return ErrQuit
	}
	return nil
}

func (r *Runner) recover(s interview.State) error {
	r.printError(s.Err)

	retry := "Try again"
	if s.Err != nil && s.Err.Kind == interview.KindValidation {
		retry = "Review answers"
	}
	action, err := r.prompt.Select("How do you want to continue?", "", []Choice{
		{Label: retry, Value: actionRetry},
		{Label: "Start over", Value: actionRestart},
		{Label: "Quit", Value: actionQuit},
	}, actionRetry)
	if err != nil {
		return err
	}
	switch action {
	case actionRetry:
		r.session.Retry()
	case actionRestart:
		r.session.Reset()
	case actionQuit:
		return ErrQuit
	}
	return nil
}

//nolint:errcheck // terminal output
func (r *Runner) printError(e *interview.Error) {
	if e == nil {
		return
	}
	fmt.Fprintf(r.out, "\n✗ %s\n", e.Message)
	for _, d := range e.Details {
		fmt.Fprintf(r.out, "  - %s\n", d)
	}
}

//nolint:errcheck // terminal output
func (r *Runner) summarize(s interview.State) {
	if s.Mode == interview.ModeSingle {
		p := s.Draft.Current()
		fmt.Fprintf(r.out, "\n✓ Saved preset %q (%d activities, %.1f days)\n", p.Name, len(p.Activities), p.TotalDays())
		return
	}
	fmt.Fprintf(r.out, "\nSaved %d of %d estimations\n", s.Tally.Success, s.Tally.Total())
	for _, f := range s.SaveFailures {
		fmt.Fprintf(r.out, "  ✗ %s: %s\n", f.RequirementID, f.Message)
	}
}
