package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Priority classifies how essential an activity is to a preset.
type Priority string

const (
	PriorityCore        Priority = "core"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

// Priorities lists the priorities in display order.
func Priorities() []Priority {
	return []Priority{PriorityCore, PriorityRecommended, PriorityOptional}
}

// HoursPerDay converts base hours into estimated days.
const HoursPerDay = 8.0

// Activity is one unit of work proposed for a preset.
type Activity struct {
	Code       string   `yaml:"code" json:"code" mapstructure:"code"`
	Title      string   `yaml:"title" json:"title" mapstructure:"title"`
	BaseHours  float64  `yaml:"base_hours" json:"base_hours" mapstructure:"base_hours"`
	Confidence float64  `yaml:"confidence" json:"confidence" mapstructure:"confidence"`
	Priority   Priority `yaml:"priority" json:"priority" mapstructure:"priority"`
	Reasoning  string   `yaml:"reasoning,omitempty" json:"reasoning,omitempty" mapstructure:"reasoning"`
}

// Preset is the artifact generated in single mode: a technology preset with
// its candidate activities, estimation driver values and risks.
type Preset struct {
	Name         string            `yaml:"name" json:"name" mapstructure:"name"`
	Description  string            `yaml:"description" json:"description" mapstructure:"description"`
	TechCategory string            `yaml:"tech_category,omitempty" json:"tech_category,omitempty" mapstructure:"tech_category"`
	Confidence   float64           `yaml:"confidence" json:"confidence" mapstructure:"confidence"`
	Reasoning    string            `yaml:"reasoning,omitempty" json:"reasoning,omitempty" mapstructure:"reasoning"`
	Activities   []Activity        `yaml:"activities" json:"activities" mapstructure:"activities"`
	DriverValues map[string]string `yaml:"driver_values,omitempty" json:"driver_values,omitempty" mapstructure:"driver_values"`
	RiskCodes    []string          `yaml:"risk_codes,omitempty" json:"risk_codes,omitempty" mapstructure:"risk_codes"`
}

// Clone returns a deep copy of p.
func (p Preset) Clone() Preset {
	out := p
	out.Activities = slices.Clone(p.Activities)
	out.RiskCodes = slices.Clone(p.RiskCodes)
	if p.DriverValues != nil {
		out.DriverValues = make(map[string]string, len(p.DriverValues))
		for k, v := range p.DriverValues {
			out.DriverValues[k] = v
		}
	}
	return out
}

// TotalDays sums the activities' base hours expressed in days.
func (p Preset) TotalDays() float64 {
	var hours float64
	for _, a := range p.Activities {
		hours += a.BaseHours
	}
	return hours / HoursPerDay
}

// Validate checks the preset invariants: a name, confidence in [0,1] and
// unique activity codes.
func (p Preset) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("preset name is required"))
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		errs = append(errs, fmt.Errorf("preset confidence %v outside [0, 1]", p.Confidence))
	}
	seen := make(map[string]bool, len(p.Activities))
	for _, a := range p.Activities {
		if strings.TrimSpace(a.Code) == "" {
			errs = append(errs, errors.New("activity code is required"))
			continue
		}
		if seen[a.Code] {
			errs = append(errs, fmt.Errorf("duplicate activity code %q", a.Code))
		}
		seen[a.Code] = true
		if a.BaseHours < 0 {
			errs = append(errs, fmt.Errorf("activity %q: negative base hours", a.Code))
		}
		switch a.Priority {
		case PriorityCore, PriorityRecommended, PriorityOptional:
		default:
			errs = append(errs, fmt.Errorf("activity %q: unknown priority %q", a.Code, a.Priority))
		}
	}
	return errors.Join(errs...)
}
