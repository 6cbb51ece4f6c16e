package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spboyer/estimator/internal/generation"
	"github.com/spboyer/estimator/internal/interview"
	"github.com/spboyer/estimator/internal/models"
	"github.com/spboyer/estimator/internal/projectconfig"
	"github.com/spboyer/estimator/internal/session"
	"github.com/spboyer/estimator/internal/store"
	"github.com/spboyer/estimator/internal/wizard"
	"github.com/spf13/cobra"
)

// wizardFlags are shared by the preset and bulk commands. Empty values fall
// back to .estimator.yaml.
type wizardFlags struct {
	techCategory string
	engine       string
	model        string
	outputDir    string
	sessionLog   bool
	requirements string
}

func (f *wizardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.engine, "engine", "", fmt.Sprintf("Generation engine (%s)", strings.Join(projectconfig.Engines, ", ")))
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model used by the engine")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory the results are saved to")
	cmd.Flags().BoolVar(&f.sessionLog, "session-log", false, "Write the session events as NDJSON")
}

func runWizard(cmd *cobra.Command, mode interview.Mode, flags *wizardFlags, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	cfg, err := projectconfig.Load(cwd)
	if err != nil {
		return err
	}

	engineName := orDefault(flags.engine, cfg.Defaults.Engine)
	if !slices.Contains(projectconfig.Engines, engineName) {
		return fmt.Errorf("unknown engine %q, expected one of %v", engineName, projectconfig.Engines)
	}
	model := orDefault(flags.model, cfg.Defaults.Model)
	outputDir := orDefault(flags.outputDir, cfg.Paths.Output)

	var reqs []models.RequirementStub
	if mode == interview.ModeBulk {
		if reqs, err = loadRequirements(flags.requirements); err != nil {
			return err
		}
	}

	logger := slog.Default()
	engine, err := newEngine(ctx, engineName, model, logger)
	if err != nil {
		return fmt.Errorf("creating %s engine: %w", engineName, err)
	}
	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing %s engine: %w", engineName, err)
	}
	defer func() {
		if err := engine.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Engine shutdown failed", "engine", engineName, "error", err)
		}
	}()

	adapter, err := generation.NewEngineAdapter(engine, generation.Options{
		ModelID:   model,
		Timeout:   cfg.Timeout(),
		CacheSize: cfg.CacheSize(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	fs := store.New(outputDir)

	var events session.Logger = session.NopLogger{}
	if flags.sessionLog || cfg.SessionLogEnabled() {
		jl, err := session.NewJSONLogger(session.DefaultLogPath(cfg.Paths.Sessions, string(mode)))
		if err != nil {
			return err
		}
		defer jl.Close() //nolint:errcheck
		fmt.Fprintf(cmd.ErrOrStderr(), "Session log: %s\n", jl.Path())
		events = jl
	}

	var runner *wizard.Runner
	w, err := interview.NewWizard(interview.Config{
		Mode: mode,
		Limits: interview.Limits{
			MinDescription: cfg.Wizard.MinDescription,
			MaxDescription: cfg.Wizard.MaxDescription,
			MinActivities:  cfg.Wizard.MinActivities,
		},
		Questions:        adapter,
		Presets:          adapter,
		Estimations:      adapter,
		PresetWriter:     fs,
		EstimationWriter: fs,
		Logger:           logger,
		SessionLog:       events,
		Engine:           engineName,
		Model:            model,
		OnChange: func(s interview.State) {
			if runner != nil {
				runner.Observe(s)
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		w.Close(cfg.ResetDelay())
		w.Wait()
	}()

	runner = wizard.NewRunner(w, newPrompter(cmd.InOrStdin(), out), out, logger)
	s, err := runner.Run(ctx, wizard.Start{
		Description:  strings.Join(args, " "),
		TechCategory: flags.techCategory,
		Requirements: reqs,
	})
	if errors.Is(err, wizard.ErrQuit) {
		fmt.Fprintln(out, "Closed without saving.")
		return nil
	}
	if err != nil {
		return err
	}

	if mode == interview.ModeSingle {
		fmt.Fprintf(out, "Saved to %s\n", fs.PresetPath(s.Draft.Current().Name))
		return nil
	}
	fmt.Fprintf(out, "Saved to %s\n", fs.Dir())
	if s.Tally.Failed > 0 {
		return &SaveFailureError{Failed: s.Tally.Failed, Total: s.Tally.Total()}
	}
	return nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
