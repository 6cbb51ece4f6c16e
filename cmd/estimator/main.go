package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Wizard finished or was closed by the user
	ExitSaveFailed = 1 // One or more estimations could not be saved
	ExitError      = 2 // Configuration or runtime error
)

// SaveFailureError indicates that the wizard completed but some items of a
// bulk save failed.
type SaveFailureError struct {
	Failed int
	Total  int
}

func (e *SaveFailureError) Error() string {
	return fmt.Sprintf("%d of %d estimations could not be saved", e.Failed, e.Total)
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var saveErr *SaveFailureError
	if errors.As(err, &saveErr) {
		return ExitSaveFailed
	}
	return ExitError
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
