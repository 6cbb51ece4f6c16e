package main

import (
	"github.com/spboyer/estimator/internal/interview"
	"github.com/spf13/cobra"
)

func newPresetCommand() *cobra.Command {
	var flags wizardFlags

	cmd := &cobra.Command{
		Use:   "preset [description]",
		Short: "Interview a project and build a technology preset",
		Long: `Runs the single-project wizard.

The description is used to generate a short interview. Your answers produce a
preset of candidate activities which you can rename, re-describe and trim
before it is saved as YAML under the output directory.`,
		Example: `  estimator preset "B2B ecommerce platform with ERP integration"
  estimator preset --engine gemini --model gemini-2.5-pro
  estimator preset --tech-category ECOMMERCE -o presets/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(cmd, interview.ModeSingle, &flags, args)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.techCategory, "tech-category", "", "Technology category hint, e.g. ECOMMERCE")

	return cmd
}
