package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stackQuestion() Question {
	return Question{
		ID:    "stack",
		Kind:  KindMultipleChoice,
		Label: "Which integrations are needed?",
		Options: []Option{
			{ID: "sap", Label: "SAP"},
			{ID: "crm", Label: "CRM"},
			{ID: OtherOptionID, Label: "Other"},
		},
	}
}

func TestAnswers_WithDoesNotMutateReceiver(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	base := Answers{}.With("q1", TextValue("a"), at)

	next := base.With("q2", NumberValue(4), at)

	assert.Len(t, base, 1)
	assert.Len(t, next, 2)
	assert.Equal(t, NumberValue(4), next.Value("q2"))
	assert.Nil(t, base.Value("q2"))
}

func TestAnswers_Without(t *testing.T) {
	a := Answers{}.With("q1", TextValue("a"), time.Now())

	b := a.Without("q1")

	assert.Empty(t, b)
	assert.Len(t, a, 1)
	assert.NotNil(t, Answers(nil).Without("x"))
}

func TestAnswers_Raw(t *testing.T) {
	now := time.Now()
	a := Answers{}.
		With("single", TextValue("sap"), now).
		With("multi", ChoicesValue{"sap", "crm"}, now).
		With("range", NumberValue(12.5), now)

	raw := a.Raw()

	assert.Equal(t, "sap", raw["single"])
	assert.Equal(t, []string{"sap", "crm"}, raw["multi"])
	assert.Equal(t, 12.5, raw["range"])
}

func TestValueFromRaw(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    Value
		wantErr bool
	}{
		{"string", "x", TextValue("x"), false},
		{"strings", []string{"a"}, ChoicesValue{"a"}, false},
		{"any list", []any{"a", "b"}, ChoicesValue{"a", "b"}, false},
		{"float", 3.5, NumberValue(3.5), false},
		{"int", 7, NumberValue(7), false},
		{"mixed list", []any{"a", 1}, nil, true},
		{"bool", true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueFromRaw(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToggleChoice_RegularOption(t *testing.T) {
	q := stackQuestion()

	v := ToggleChoice(q, nil, "sap")
	assert.Equal(t, ChoicesValue{"sap"}, v)

	v = ToggleChoice(q, v, "crm")
	assert.Equal(t, ChoicesValue{"sap", "crm"}, v)

	v = ToggleChoice(q, v, "sap")
	assert.Equal(t, ChoicesValue{"crm"}, v)
}

func TestToggleChoice_OtherAddsPlaceholderAndRemovesCustomText(t *testing.T) {
	q := stackQuestion()

	v := ToggleChoice(q, ChoicesValue{"sap"}, OtherOptionID)
	assert.Equal(t, ChoicesValue{"sap", OtherOptionID}, v)

	v = SetOtherText(q, v, "Salesforce")
	assert.Equal(t, ChoicesValue{"sap", "Salesforce"}, v)

	v = ToggleChoice(q, v, OtherOptionID)
	assert.Equal(t, ChoicesValue{"sap"}, v)
}

func TestSetOtherText_ClearingRestoresPlaceholder(t *testing.T) {
	q := stackQuestion()
	v := ChoicesValue{"crm", OtherOptionID}

	v = SetOtherText(q, v, "Salesforce")
	text, active := OtherText(q, v)
	assert.True(t, active)
	assert.Equal(t, "Salesforce", text)

	v = SetOtherText(q, v, "   ")
	assert.Equal(t, ChoicesValue{"crm", OtherOptionID}, v)
	text, active = OtherText(q, v)
	assert.True(t, active)
	assert.Empty(t, text)

	// clearing twice is stable
	assert.Equal(t, v, SetOtherText(q, v, ""))
}

func TestToggleChoice_DoesNotMutateInput(t *testing.T) {
	q := stackQuestion()
	in := ChoicesValue{"sap", "crm"}

	_ = ToggleChoice(q, in, "sap")

	assert.Equal(t, ChoicesValue{"sap", "crm"}, in)
}
