package models

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Value is the payload of an answer. It is a closed set: TextValue for
// single-choice and text questions, ChoicesValue for multiple-choice and
// NumberValue for range questions.
type Value interface {
	isValue()
	// Raw returns the plain Go value sent to generators (string, []string or float64).
	Raw() any
}

// TextValue is a single string answer.
type TextValue string

// ChoicesValue is a list of selected option ids, possibly including one custom entry.
type ChoicesValue []string

// NumberValue is a numeric answer.
type NumberValue float64

func (TextValue) isValue()    {}
func (ChoicesValue) isValue() {}
func (NumberValue) isValue()  {}

func (v TextValue) Raw() any    { return string(v) }
func (v ChoicesValue) Raw() any { return []string(slices.Clone(v)) }
func (v NumberValue) Raw() any  { return float64(v) }

// ValueFromRaw converts a decoded JSON/YAML value back into a Value.
func ValueFromRaw(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return TextValue(v), nil
	case []string:
		return ChoicesValue(slices.Clone(v)), nil
	case []any:
		out := make(ChoicesValue, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a string", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	case float64:
		return NumberValue(v), nil
	case float32:
		return NumberValue(v), nil
	case int:
		return NumberValue(v), nil
	case int64:
		return NumberValue(v), nil
	default:
		return nil, fmt.Errorf("unsupported answer value type %T", raw)
	}
}

// Answer is a user's answer to one question.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Value      Value     `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// Answers maps question ids to answers. Values are treated as immutable:
// the mutating helpers return a new map and leave the receiver untouched.
type Answers map[string]Answer

// With returns a copy of a with the answer for questionID set to v.
func (a Answers) With(questionID string, v Value, at time.Time) Answers {
	out := maps.Clone(a)
	if out == nil {
		out = Answers{}
	}
	out[questionID] = Answer{QuestionID: questionID, Value: v, Timestamp: at}
	return out
}

// Without returns a copy of a with the answer for questionID removed.
func (a Answers) Without(questionID string) Answers {
	out := maps.Clone(a)
	if out == nil {
		return Answers{}
	}
	delete(out, questionID)
	return out
}

// Value returns the answer value for questionID, or nil.
func (a Answers) Value(questionID string) Value {
	if ans, ok := a[questionID]; ok {
		return ans.Value
	}
	return nil
}

// Raw flattens the answers into the map shape the generators expect.
func (a Answers) Raw() map[string]any {
	out := make(map[string]any, len(a))
	for id, ans := range a {
		if ans.Value != nil {
			out[id] = ans.Value.Raw()
		}
	}
	return out
}

// OtherEntry returns the value stored for a custom "other" answer: the
// trimmed text, or the sentinel option id while the text box is empty.
func OtherEntry(text string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return OtherOptionID
}

// ToggleChoice adds or removes optionID from a multiple-choice value.
// Toggling the "other" option off also drops any custom text entry.
func ToggleChoice(q Question, current ChoicesValue, optionID string) ChoicesValue {
	if optionID == OtherOptionID && q.AllowsOther() {
		if _, active := OtherText(q, current); active {
			return dropOther(q, current)
		}
		return append(slices.Clone(current), OtherOptionID)
	}
	if i := slices.Index(current, optionID); i >= 0 {
		return slices.Delete(slices.Clone(current), i, i+1)
	}
	return append(slices.Clone(current), optionID)
}

// SetOtherText replaces the custom entry of a multiple-choice value with
// text. Clearing the text restores the sentinel placeholder so the "other"
// selection itself is kept.
func SetOtherText(q Question, current ChoicesValue, text string) ChoicesValue {
	return append(dropOther(q, current), OtherEntry(text))
}

// OtherText returns the custom entry of a multiple-choice value. active is
// true when "other" is selected, even if only the placeholder is present.
func OtherText(q Question, current ChoicesValue) (text string, active bool) {
	for _, v := range current {
		if v == OtherOptionID {
			active = true
			continue
		}
		if !q.HasOption(v) {
			return v, true
		}
	}
	return "", active
}

func dropOther(q Question, current ChoicesValue) ChoicesValue {
	out := make(ChoicesValue, 0, len(current))
	for _, v := range current {
		if v == OtherOptionID || !q.HasOption(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
