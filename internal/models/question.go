package models

import (
	"errors"
	"fmt"
	"strings"
)

// QuestionKind identifies the shape of a question and of the answer it takes.
type QuestionKind string

const (
	KindSingleChoice   QuestionKind = "single-choice"
	KindMultipleChoice QuestionKind = "multiple-choice"
	KindText           QuestionKind = "text"
	KindRange          QuestionKind = "range"
)

// Valid reports whether k is one of the known question kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindSingleChoice, KindMultipleChoice, KindText, KindRange:
		return true
	}
	return false
}

// IsChoice reports whether answers to k are picked from an option list.
func (k QuestionKind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultipleChoice
}

// OtherOptionID is the sentinel option that lets the user type a custom answer
// instead of picking one of the listed options.
const OtherOptionID = "other"

// Scope says which requirements of a bulk batch a question's answer applies to.
type Scope string

const (
	ScopeGlobal           Scope = "global"
	ScopeMultiRequirement Scope = "multi-requirement"
	ScopeSpecific         Scope = "specific"
)

// Option is one selectable choice of a choice question.
type Option struct {
	ID          string `yaml:"id" json:"id" mapstructure:"id"`
	Label       string `yaml:"label" json:"label" mapstructure:"label"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
}

// Question is a single generated interview question. Questions are produced
// by the question generator and are never modified afterwards.
type Question struct {
	ID       string       `yaml:"id" json:"id" mapstructure:"id"`
	Kind     QuestionKind `yaml:"type" json:"type" mapstructure:"type"`
	Label    string       `yaml:"question" json:"question" mapstructure:"question"`
	HelpText string       `yaml:"help_text,omitempty" json:"help_text,omitempty" mapstructure:"help_text"`
	Required bool         `yaml:"required" json:"required" mapstructure:"required"`

	// choice kinds
	Options []Option `yaml:"options,omitempty" json:"options,omitempty" mapstructure:"options"`

	// range
	Min          float64  `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max          float64  `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Step         float64  `yaml:"step,omitempty" json:"step,omitempty" mapstructure:"step"`
	Unit         string   `yaml:"unit,omitempty" json:"unit,omitempty" mapstructure:"unit"`
	DefaultValue *float64 `yaml:"default_value,omitempty" json:"default_value,omitempty" mapstructure:"default_value"`

	// text
	MaxLength int `yaml:"max_length,omitempty" json:"max_length,omitempty" mapstructure:"max_length"`

	// display only
	Category         string `yaml:"category,omitempty" json:"category,omitempty" mapstructure:"category"`
	TechnicalContext string `yaml:"technical_context,omitempty" json:"technical_context,omitempty" mapstructure:"technical_context"`
	ImpactOnEstimate string `yaml:"impact_on_estimate,omitempty" json:"impact_on_estimate,omitempty" mapstructure:"impact_on_estimate"`

	// bulk only
	Scope                  Scope    `yaml:"scope,omitempty" json:"scope,omitempty" mapstructure:"scope"`
	AffectedRequirementIDs []string `yaml:"affected_requirement_ids,omitempty" json:"affected_requirement_ids,omitempty" mapstructure:"affected_requirement_ids"`
}

// HasOption reports whether id is one of the question's option ids.
func (q Question) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// AllowsOther reports whether the question carries the "other" sentinel option.
func (q Question) AllowsOther() bool {
	return q.HasOption(OtherOptionID)
}

// Validate checks that the question is internally consistent.
func (q Question) Validate() error {
	var errs []error
	if strings.TrimSpace(q.ID) == "" {
		errs = append(errs, errors.New("question id is required"))
	}
	if strings.TrimSpace(q.Label) == "" {
		errs = append(errs, fmt.Errorf("question %q: text is required", q.ID))
	}
	switch q.Kind {
	case KindSingleChoice, KindMultipleChoice:
		if len(q.Options) == 0 {
			errs = append(errs, fmt.Errorf("question %q: choice question needs options", q.ID))
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if seen[o.ID] {
				errs = append(errs, fmt.Errorf("question %q: duplicate option %q", q.ID, o.ID))
			}
			seen[o.ID] = true
		}
	case KindRange:
		if q.Min > q.Max {
			errs = append(errs, fmt.Errorf("question %q: min %v is greater than max %v", q.ID, q.Min, q.Max))
		}
		if q.DefaultValue != nil && (*q.DefaultValue < q.Min || *q.DefaultValue > q.Max) {
			errs = append(errs, fmt.Errorf("question %q: default %v outside [%v, %v]", q.ID, *q.DefaultValue, q.Min, q.Max))
		}
	case KindText:
		if q.MaxLength < 0 {
			errs = append(errs, fmt.Errorf("question %q: negative max length", q.ID))
		}
	default:
		errs = append(errs, fmt.Errorf("question %q: unknown type %q", q.ID, q.Kind))
	}
	return errors.Join(errs...)
}

// ValidateQuestionSet validates every question and checks ids are unique.
func ValidateQuestionSet(questions []Question) error {
	var errs []error
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = true
	}
	return errors.Join(errs...)
}

// FindQuestion returns the question with the given id.
func FindQuestion(questions []Question, id string) (Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
