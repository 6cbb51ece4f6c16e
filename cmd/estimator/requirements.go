package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spboyer/estimator/internal/models"
	"gopkg.in/yaml.v3"
)

// loadRequirements reads a YAML list of requirement stubs.
func loadRequirements(path string) ([]models.RequirementStub, error) {
	if path == "" {
		return nil, errors.New("--requirements is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading requirements: %w", err)
	}
	var reqs []models.RequirementStub
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("parsing requirements %s: %w", path, err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("requirements %s: no requirements listed", path)
	}
	for i := range reqs {
		if reqs[i].Code == "" {
			reqs[i].Code = reqs[i].ID
		}
	}
	return reqs, nil
}
