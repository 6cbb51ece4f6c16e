package validation

import (
	"errors"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/spboyer/estimator/internal/models"
)

// Validate checks answers against the question set and returns every
// violation found, in question order. It never mutates its inputs, so it is
// safe to call repeatedly. An empty result means every required question has
// a structurally valid answer and no answer is malformed.
func Validate(answers models.Answers, questions []models.Question) []string {
	var errs []string
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true

		v := answers.Value(q.ID)
		if IsEmpty(v) {
			if q.Required {
				errs = append(errs, printer.Sprintf("%s: an answer is required", q.Label))
			}
			continue
		}
		if err := CheckValue(q, v); err != nil {
			errs = append(errs, err.Error())
		}
	}

	var stray []string
	for id := range answers {
		if !known[id] {
			stray = append(stray, id)
		}
	}
	slices.Sort(stray)
	for _, id := range stray {
		errs = append(errs, printer.Sprintf("answer for unknown question %q", id))
	}
	return errs
}

// IsEmpty reports whether v counts as "not answered".
func IsEmpty(v models.Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case models.TextValue:
		return strings.TrimSpace(string(val)) == ""
	case models.ChoicesValue:
		return len(val) == 0
	case models.NumberValue:
		return false
	}
	return false
}

// IsAnswered reports whether v is a non-empty, structurally valid answer to q.
func IsAnswered(q models.Question, v models.Value) bool {
	return !IsEmpty(v) && CheckValue(q, v) == nil
}

// CheckValue validates the shape of a single non-empty answer value.
func CheckValue(q models.Question, v models.Value) error {
	switch q.Kind {
	case models.KindSingleChoice:
		s, ok := v.(models.TextValue)
		if !ok {
			return errors.New(printer.Sprintf("%s: expected a single choice", q.Label))
		}
		if len(q.Options) > 0 && !q.HasOption(string(s)) && !q.AllowsOther() {
			return errors.New(printer.Sprintf("%s: %q is not one of the options", q.Label, string(s)))
		}
		return nil

	case models.KindMultipleChoice:
		list, ok := v.(models.ChoicesValue)
		if !ok {
			return errors.New(printer.Sprintf("%s: expected a list of choices", q.Label))
		}
		custom := 0
		seen := make(map[string]bool, len(list))
		for _, item := range list {
			if seen[item] {
				return errors.New(printer.Sprintf("%s: %q is selected more than once", q.Label, item))
			}
			seen[item] = true
			if q.HasOption(item) {
				continue
			}
			if !q.AllowsOther() {
				return errors.New(printer.Sprintf("%s: %q is not one of the options", q.Label, item))
			}
			custom++
		}
		if custom > 1 {
			return errors.New(printer.Sprintf("%s: only one custom entry is allowed, got %d", q.Label, custom))
		}
		return nil

	case models.KindText:
		s, ok := v.(models.TextValue)
		if !ok {
			return errors.New(printer.Sprintf("%s: expected text", q.Label))
		}
		if n := utf8.RuneCountInString(string(s)); q.MaxLength > 0 && n > q.MaxLength {
			return errors.New(printer.Sprintf("%s: %d characters exceeds the limit of %d", q.Label, n, q.MaxLength))
		}
		return nil

	case models.KindRange:
		n, ok := v.(models.NumberValue)
		if !ok {
			return errors.New(printer.Sprintf("%s: expected a number", q.Label))
		}
		f := float64(n)
		if math.IsNaN(f) || f < q.Min || f > q.Max {
			return errors.New(printer.Sprintf("%s: %v is outside the range %v to %v", q.Label, f, q.Min, q.Max))
		}
		return nil
	}
	return errors.New(printer.Sprintf("%s: unknown question type %q", q.Label, string(q.Kind)))
}
