package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spboyer/estimator/internal/projectconfig"
	"github.com/spboyer/estimator/internal/session"
	"github.com/spf13/cobra"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "View recorded wizard sessions",
		Long: `View wizard session event logs.

Session logs are NDJSON files written when --session-log or
defaults.session_log is enabled. They record every accepted step of the
wizard: submissions, answers, generation results, saves and errors.`,
	}

	cmd.AddCommand(newSessionListCommand())
	cmd.AddCommand(newSessionViewCommand())

	return cmd
}

func newSessionListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded session logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				cfg, err := projectconfig.Load(cwd)
				if err != nil {
					return err
				}
				dir = cfg.Paths.Sessions
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			files, err := session.ListSessions(absDir)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No session logs found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tMODE\tOUTCOME\tSAVED\tFAILED\tMODIFIED")
			for _, f := range files {
				s := f.Summary
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					f.Name, s.Mode, s.Outcome(), s.Saved, s.Failed, f.ModTime.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to search for session logs (default paths.sessions)")

	return cmd
}

func newSessionViewCommand() *cobra.Command {
	var errorsOnly bool

	cmd := &cobra.Command{
		Use:   "view <session-file>",
		Short: "View a session timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := session.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading session: %w", err)
			}

			out := cmd.OutOrStdout()
			if !errorsOnly {
				session.RenderTimeline(out, events)
				return nil
			}
			errs := session.Summarize(events).Errors
			if len(errs) == 0 {
				fmt.Fprintln(out, "No errors recorded.")
			}
			for _, msg := range errs {
				fmt.Fprintln(out, msg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&errorsOnly, "errors", false, "Print only the recorded error messages")

	return cmd
}
