// Package review holds the local edit logic applied to a generated preset
// before it is saved. Every edit returns a new Draft; nothing is mutated in
// place, so the original generated preset is always available for diffing.
package review

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spboyer/estimator/internal/models"
)

const (
	// MinNameLength is the minimum trimmed length of a preset name.
	MinNameLength = 3
	// MinDescriptionLength is the minimum trimmed length of a preset description.
	MinDescriptionLength = 10
	// DefaultMinActivities is the number of included activities required before saving.
	DefaultMinActivities = 3
)

var (
	// ErrNameTooShort is returned by Rename.
	ErrNameTooShort = fmt.Errorf("name must be at least %d characters", MinNameLength)
	// ErrDescriptionTooShort is returned by Redescribe.
	ErrDescriptionTooShort = fmt.Errorf("description must be at least %d characters", MinDescriptionLength)
	// ErrUnknownActivity is returned by ToggleActivity for a code that was never generated.
	ErrUnknownActivity = errors.New("activity is not part of the generated preset")
)

// Draft pairs the preset as generated with the preset as currently edited.
type Draft struct {
	original models.Preset
	current  models.Preset
}

// New starts a review of a freshly generated preset.
func New(generated models.Preset) Draft {
	return Draft{
		original: generated.Clone(),
		current:  generated.Clone(),
	}
}

// Original returns a copy of the preset as generated.
func (d Draft) Original() models.Preset { return d.original.Clone() }

// Current returns a copy of the preset as edited.
func (d Draft) Current() models.Preset { return d.current.Clone() }

// Rename sets the preset name.
func (d Draft) Rename(name string) (Draft, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < MinNameLength {
		return d, ErrNameTooShort
	}
	next := d.current.Clone()
	next.Name = name
	return Draft{original: d.original, current: next}, nil
}

// Redescribe sets the preset description.
func (d Draft) Redescribe(description string) (Draft, error) {
	description = strings.TrimSpace(description)
	if len([]rune(description)) < MinDescriptionLength {
		return d, ErrDescriptionTooShort
	}
	next := d.current.Clone()
	next.Description = description
	return Draft{original: d.original, current: next}, nil
}

// ToggleActivity removes the activity with the given code if it is included,
// otherwise re-inserts the exact activity from the generated preset at its
// original relative position. Removing and re-adding is a no-op.
func (d Draft) ToggleActivity(code string) (Draft, error) {
	next := d.current.Clone()
	if i := slices.IndexFunc(next.Activities, func(a models.Activity) bool { return a.Code == code }); i >= 0 {
		next.Activities = slices.Delete(next.Activities, i, i+1)
		return Draft{original: d.original, current: next}, nil
	}

	origIdx := slices.IndexFunc(d.original.Activities, func(a models.Activity) bool { return a.Code == code })
	if origIdx < 0 {
		return d, fmt.Errorf("%w: %q", ErrUnknownActivity, code)
	}

	// Insert before the first included activity that comes after it in the
	// generated order.
	rank := make(map[string]int, len(d.original.Activities))
	for i, a := range d.original.Activities {
		if _, ok := rank[a.Code]; !ok {
			rank[a.Code] = i
		}
	}
	at := len(next.Activities)
	for i, a := range next.Activities {
		if r, ok := rank[a.Code]; ok && r > origIdx {
			at = i
			break
		}
	}
	next.Activities = slices.Insert(next.Activities, at, d.original.Activities[origIdx])
	return Draft{original: d.original, current: next}, nil
}

// Included reports whether the activity with code is currently part of the preset.
func (d Draft) Included(code string) bool {
	return slices.ContainsFunc(d.current.Activities, func(a models.Activity) bool { return a.Code == code })
}

// TotalDays is the current estimate in days.
func (d Draft) TotalDays() float64 {
	return d.current.TotalDays()
}

// ByPriority groups the included activities by priority for display.
func (d Draft) ByPriority() map[models.Priority][]models.Activity {
	groups := make(map[models.Priority][]models.Activity)
	for _, a := range d.current.Activities {
		groups[a.Priority] = append(groups[a.Priority], a)
	}
	return groups
}

// CanSave reports whether enough activities are included to save.
func (d Draft) CanSave(minActivities int) bool {
	if minActivities <= 0 {
		minActivities = DefaultMinActivities
	}
	return len(d.current.Activities) >= minActivities
}

// Changed reports whether the current preset differs from the generated one.
func (d Draft) Changed() bool {
	if d.current.Name != d.original.Name || d.current.Description != d.original.Description {
		return true
	}
	return !slices.Equal(d.current.Activities, d.original.Activities)
}

// IsZero reports whether the draft was never initialized.
func (d Draft) IsZero() bool {
	return d.original.Name == "" && len(d.original.Activities) == 0
}
