package models

import (
	"errors"
	"fmt"
	"strings"
)

// RequirementStub identifies one requirement of a bulk batch.
type RequirementStub struct {
	ID          string `yaml:"id" json:"id" mapstructure:"id"`
	Code        string `yaml:"code" json:"code" mapstructure:"code"`
	Title       string `yaml:"title" json:"title" mapstructure:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
}

// EstimatedActivity is one activity proposed for a requirement.
type EstimatedActivity struct {
	Code           string  `yaml:"code" json:"code" mapstructure:"code"`
	Name           string  `yaml:"name" json:"name" mapstructure:"name"`
	BaseHours      float64 `yaml:"base_hours" json:"base_hours" mapstructure:"base_hours"`
	Reason         string  `yaml:"reason,omitempty" json:"reason,omitempty" mapstructure:"reason"`
	FromQuestionID string  `yaml:"from_question_id,omitempty" json:"from_question_id,omitempty" mapstructure:"from_question_id"`
	FromAnswer     string  `yaml:"from_answer,omitempty" json:"from_answer,omitempty" mapstructure:"from_answer"`
}

// EstimationResult is the bulk-mode artifact for a single requirement.
type EstimationResult struct {
	RequirementID   string              `yaml:"requirement_id" json:"requirement_id" mapstructure:"requirement_id"`
	ReqCode         string              `yaml:"req_code" json:"req_code" mapstructure:"req_code"`
	Success         bool                `yaml:"success" json:"success" mapstructure:"success"`
	Activities      []EstimatedActivity `yaml:"activities,omitempty" json:"activities,omitempty" mapstructure:"activities"`
	TotalBaseDays   float64             `yaml:"total_base_days" json:"total_base_days" mapstructure:"-"`
	ConfidenceScore float64             `yaml:"confidence_score" json:"confidence_score" mapstructure:"confidence_score"`
	Reasoning       string              `yaml:"reasoning,omitempty" json:"reasoning,omitempty" mapstructure:"reasoning"`
	Error           string              `yaml:"error,omitempty" json:"error,omitempty" mapstructure:"error"`
}

// Normalize enforces the result invariants: a failed result carries an error
// and no activities, and TotalBaseDays is always derived from the activities.
func (r EstimationResult) Normalize() EstimationResult {
	if !r.Success {
		r.Activities = nil
		r.TotalBaseDays = 0
		if strings.TrimSpace(r.Error) == "" {
			r.Error = "estimation failed"
		}
		return r
	}
	r.Error = ""
	var hours float64
	for _, a := range r.Activities {
		hours += a.BaseHours
	}
	r.TotalBaseDays = hours / HoursPerDay
	return r
}

// Validate checks a normalized result.
func (r EstimationResult) Validate() error {
	var errs []error
	if strings.TrimSpace(r.RequirementID) == "" {
		errs = append(errs, errors.New("requirement id is required"))
	}
	if !r.Success && len(r.Activities) > 0 {
		errs = append(errs, fmt.Errorf("requirement %q: failed result has activities", r.RequirementID))
	}
	if !r.Success && strings.TrimSpace(r.Error) == "" {
		errs = append(errs, fmt.Errorf("requirement %q: failed result has no error", r.RequirementID))
	}
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		errs = append(errs, fmt.Errorf("requirement %q: confidence %v outside [0, 1]", r.RequirementID, r.ConfidenceScore))
	}
	return errors.Join(errs...)
}
