package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spboyer/estimator/internal/bulk"
	"github.com/spboyer/estimator/internal/generation"
	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/session"
	"github.com/spboyer/estimator/internal/store"
)

// Config wires a Wizard to its collaborators. Single mode needs Presets and
// PresetWriter; bulk mode needs Estimations and EstimationWriter.
type Config struct {
	Mode   Mode
	Limits Limits

	Questions   generation.QuestionGenerator
	Presets     generation.PresetGenerator
	Estimations generation.EstimationGenerator

	PresetWriter     store.PresetWriter
	EstimationWriter store.EstimationWriter

	Logger *slog.Logger
	// SessionLog receives one event per accepted transition. Defaults to [session.NopLogger].
	SessionLog session.Logger
	// Engine and Model label the session log.
	Engine string
	Model  string

	// OnChange is called with a snapshot after every accepted event, in the
	// order the events were applied. It may be called from any goroutine but
	// never concurrently with itself.
	OnChange func(State)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Wizard owns one interview session. Its methods never return errors:
// failures are reported through [State.Err]. A Wizard is safe for concurrent
// use; separate Wizards share nothing.
type Wizard struct {
	cfg    Config
	logger *slog.Logger
	events session.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc

	// pending holds applied events not yet reported; notifyMu is held by
	// whichever goroutine is reporting them.
	pending  []applied
	notifyMu sync.Mutex

	resetTimer *time.Timer
	resetGen   uint64

	wg      sync.WaitGroup
	started time.Time
}

// NewWizard returns an idle Wizard.
func NewWizard(cfg Config) (*Wizard, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeSingle
	}
	var errs []error
	if cfg.Questions == nil {
		errs = append(errs, errors.New("a question generator is required"))
	}
	switch cfg.Mode {
	case ModeSingle:
		if cfg.Presets == nil {
			errs = append(errs, errors.New("a preset generator is required"))
		}
		if cfg.PresetWriter == nil {
			errs = append(errs, errors.New("a preset writer is required"))
		}
	case ModeBulk:
		if cfg.Estimations == nil {
			errs = append(errs, errors.New("an estimation generator is required"))
		}
		if cfg.EstimationWriter == nil {
			errs = append(errs, errors.New("an estimation writer is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", cfg.Mode))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("configuring wizard: %w", err)
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	w := &Wizard{
		cfg:     cfg,
		logger:  cfg.Logger,
		events:  cfg.SessionLog,
		state:   NewState(cfg.Mode, cfg.Limits),
		started: cfg.Now(),
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("mode", string(cfg.Mode))
	if w.events == nil {
		w.events = session.NopLogger{}
	}
	w.record(session.EventSessionStart, session.SessionStartData(string(cfg.Mode), cfg.Engine, cfg.Model))
	return w, nil
}

// State returns a snapshot of the session. Treat its slices and maps as read-only.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Dispatch applies ev and starts any work it asks for.
func (w *Wizard) Dispatch(ev Event) {
	w.dispatch(ev, nil)
}

func (w *Wizard) Submit(description, techCategory string, requirements ...models.RequirementStub) {
	w.Dispatch(Submit{Description: description, TechCategory: techCategory, Requirements: requirements})
}

// Answer records v for questionID. A nil or empty v clears the answer.
func (w *Wizard) Answer(questionID string, v models.Value) {
	w.Dispatch(Answer{QuestionID: questionID, Value: v, At: w.cfg.Now()})
}

func (w *Wizard) Next()                                { w.Dispatch(Next{}) }
func (w *Wizard) Previous()                            { w.Dispatch(Previous{}) }
func (w *Wizard) Complete()                            { w.Dispatch(Complete{}) }
func (w *Wizard) Rename(name string)                   { w.Dispatch(Rename{Name: name}) }
func (w *Wizard) Redescribe(description string)        { w.Dispatch(Redescribe{Description: description}) }
func (w *Wizard) ToggleActivity(code string)           { w.Dispatch(ToggleActivity{Code: code}) }
func (w *Wizard) ToggleSelection(requirementID string) { w.Dispatch(ToggleSelection{RequirementID: requirementID}) }
func (w *Wizard) SelectAll()                           { w.Dispatch(SelectAll{}) }
func (w *Wizard) Save()                                { w.Dispatch(Save{}) }
func (w *Wizard) Retry()                               { w.Dispatch(Retry{}) }

// Reset discards the session and cancels any call in flight.
func (w *Wizard) Reset() {
	w.Dispatch(Reset{})
}

// Close drops the session: responses still in flight are ignored from now on
// and the reset itself runs after delay, unless [Wizard.Open] comes first.
func (w *Wizard) Close(delay time.Duration) {
	w.Dispatch(Abandon{})

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.resetTimer != nil {
		w.resetTimer.Stop()
	}
	w.resetGen++
	gen := w.resetGen
	w.resetTimer = time.AfterFunc(delay, func() {
		w.dispatch(Reset{}, func() bool {
			if w.resetGen != gen {
				return false
			}
			w.resetTimer = nil
			return true
		})
	})
}

// Open prepares the Wizard for a new session. A reset still pending from
// [Wizard.Close] is cancelled and applied immediately.
func (w *Wizard) Open() {
	w.mu.Lock()
	pending := w.resetTimer != nil
	if pending {
		w.resetTimer.Stop()
		w.resetTimer = nil
		w.resetGen++
	}
	w.mu.Unlock()

	if pending {
		w.Dispatch(Reset{})
	}
}

// Wait blocks until no work started by the Wizard is running.
func (w *Wizard) Wait() {
	w.wg.Wait()
}

// dispatch applies ev under the lock. guard, when set, runs under the same
// lock and can veto the event.
func (w *Wizard) dispatch(ev Event, guard func() bool) {
	w.mu.Lock()
	if guard != nil && !guard() {
		w.mu.Unlock()
		return
	}
	prev := w.state
	next, eff, ok := apply(prev, ev)
	if !ok {
		w.mu.Unlock()
		w.logger.Debug("Ignoring event", "event", ev.eventName(), "phase", prev.Phase, "token", prev.Token)
		return
	}
	w.state = next

	if next.Token != prev.Token && w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	var ctx context.Context
	if eff.Kind != EffectNone {
		ctx, w.cancel = context.WithCancel(context.Background())
		w.wg.Add(1)
	}
	w.pending = append(w.pending, applied{ev: ev, prev: prev, next: next})
	w.mu.Unlock()

	w.drain()
	if eff.Kind != EffectNone {
		go w.run(ctx, eff)
	}
}

type applied struct {
	ev         Event
	prev, next State
}

// drain reports pending events in the order they were applied. A caller
// that finds another goroutine draining leaves its event to that goroutine.
func (w *Wizard) drain() {
	for {
		if !w.notifyMu.TryLock() {
			return
		}
		for {
			w.mu.Lock()
			if len(w.pending) == 0 {
				w.mu.Unlock()
				break
			}
			a := w.pending[0]
			w.pending = w.pending[1:]
			w.mu.Unlock()

			w.observe(a.ev, a.prev, a.next)
			if w.cfg.OnChange != nil {
				w.cfg.OnChange(a.next)
			}
		}
		w.notifyMu.Unlock()

		w.mu.Lock()
		empty := len(w.pending) == 0
		w.mu.Unlock()
		if empty {
			return
		}
	}
}

func (w *Wizard) observe(ev Event, prev, next State) {
	name := ev.eventName()
	if prev.Phase != next.Phase {
		w.logger.Info("Phase changed", "event", name, "from", prev.Phase, "to", next.Phase, "token", next.Token)
	} else {
		w.logger.Debug("Event applied", "event", name, "phase", next.Phase, "token", next.Token)
	}
	w.record(session.EventTransition, session.TransitionData(name, string(prev.Phase), string(next.Phase), next.Token))

	if is, ok := ev.(ItemSaved); ok {
		w.record(session.EventItemSaved, session.ItemSavedData(is.Progress.Item.RequirementID, is.Progress.Err == nil, next.SaveProgress))
	}
	if next.Phase == PhaseError && prev.Phase != PhaseError && next.Err != nil {
		w.logger.Warn("Session failed", "kind", next.Err.Kind, "phase", next.Err.Phase, "error", next.Err.Error())
		w.record(session.EventError, session.ErrorData(next.Err.Message, map[string]any{
			"kind":    string(next.Err.Kind),
			"phase":   string(next.Err.Phase),
			"details": next.Err.Details,
		}))
	}
	if next.Phase == PhaseComplete && prev.Phase != PhaseComplete {
		saved, failed := next.Tally.Success, next.Tally.Failed
		if next.Mode == ModeSingle {
			saved = 1
		}
		w.record(session.EventSessionEnd, session.SessionCompleteData(string(next.Phase), saved, failed, w.cfg.Now().Sub(w.started).Milliseconds()))
	}
}

func (w *Wizard) record(t session.EventType, data map[string]any) {
	if err := w.events.Log(session.NewEvent(t, data)); err != nil {
		w.logger.Warn("Failed to write session event", "type", t, "error", err)
	}
}

// run performs eff and feeds the outcome back as an event.
func (w *Wizard) run(ctx context.Context, eff Effect) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Effect panicked", "effect", eff.Kind, "panic", r)
			w.Dispatch(failure(eff, fmt.Errorf("internal error: %v", r)))
		}
	}()

	w.logger.Debug("Running effect", "effect", eff.Kind, "token", eff.Token)
	switch eff.Kind {
	case EffectLoadQuestions:
		resp, err := w.cfg.Questions.GenerateQuestions(ctx, eff.Questions)
		if err != nil {
			w.Dispatch(QuestionsFailed{Token: eff.Token, Err: err})
			return
		}
		w.Dispatch(QuestionsLoaded{Token: eff.Token, Response: resp})

	case EffectGeneratePreset:
		resp, err := w.cfg.Presets.GeneratePreset(ctx, eff.Preset)
		if err != nil {
			w.Dispatch(GenerationFailed{Token: eff.Token, Err: err})
			return
		}
		w.Dispatch(PresetGenerated{Token: eff.Token, Response: resp})

	case EffectGenerateEstimations:
		resp, err := w.cfg.Estimations.GenerateEstimations(ctx, eff.Estimations)
		if err != nil {
			w.Dispatch(GenerationFailed{Token: eff.Token, Err: err})
			return
		}
		w.Dispatch(EstimationsGenerated{Token: eff.Token, Response: resp})

	case EffectSavePreset:
		if err := w.cfg.PresetWriter.SavePreset(ctx, eff.Draft); err != nil {
			w.Dispatch(SaveFailed{Token: eff.Token, Err: err})
			return
		}
		w.Dispatch(Saved{Token: eff.Token})

	case EffectSaveEstimations:
		tally := bulk.Save(ctx, eff.Items, w.cfg.EstimationWriter, func(p bulk.Progress) {
			w.Dispatch(ItemSaved{Token: eff.Token, Progress: p})
		})
		w.logger.Info("Bulk save finished", "success", tally.Success, "failed", tally.Failed)
	}
}

// failure is the event that reports err for the request behind eff.
func failure(eff Effect, err error) Event {
	switch eff.Kind {
	case EffectLoadQuestions:
		return QuestionsFailed{Token: eff.Token, Err: err}
	case EffectGeneratePreset, EffectGenerateEstimations:
		return GenerationFailed{Token: eff.Token, Err: err}
	default:
		return SaveFailed{Token: eff.Token, Err: err}
	}
}
