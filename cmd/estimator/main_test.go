package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaveFailureError(t *testing.T) {
	err := &SaveFailureError{Failed: 1, Total: 5}
	assert.Equal(t, "1 of 5 estimations could not be saved", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"save failure", &SaveFailureError{Failed: 2, Total: 3}, ExitSaveFailed},
		{"wrapped save failure", fmt.Errorf("bulk: %w", &SaveFailureError{Failed: 1, Total: 1}), ExitSaveFailed},
		{"regular error", errors.New("config error"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
