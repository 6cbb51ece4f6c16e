package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimator",
		Short: "Estimator - AI-assisted project estimation interviews",
		Long: `Estimator interviews you about a project, asks a model for the
questions that matter, and turns your answers into a reviewed preset of
activities or into per-requirement estimations.

API keys are read from the environment or from a .env file in the working
directory (GEMINI_API_KEY for the gemini engine).`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		// A missing .env is fine; variables may come from the environment.
		_ = godotenv.Load()
	}

	cmd.AddCommand(newPresetCommand())
	cmd.AddCommand(newBulkCommand())
	cmd.AddCommand(newSessionCommand())

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
