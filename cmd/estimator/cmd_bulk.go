package main

import (
	"github.com/spboyer/estimator/internal/interview"
	"github.com/spf13/cobra"
)

func newBulkCommand() *cobra.Command {
	var flags wizardFlags

	cmd := &cobra.Command{
		Use:   "bulk --requirements <file> [description]",
		Short: "Estimate a batch of requirements with one shared interview",
		Long: `Runs the bulk wizard.

The requirements file is a YAML list of stubs:

  - id: req-1
    code: REQ-001
    title: Customer login

One interview covers the whole batch; questions may apply to every
requirement or only to some. Each requirement gets its own estimation, you
pick which to keep, and the selected ones are saved one by one. A failed save
does not stop the others; the command exits with status 1 when any failed.`,
		Example: `  estimator bulk --requirements reqs.yaml "Customer portal for a wholesale distributor"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(cmd, interview.ModeBulk, &flags, args)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.requirements, "requirements", "r", "", "YAML file listing the requirements (required)")
	_ = cmd.MarkFlagRequired("requirements")

	return cmd
}
