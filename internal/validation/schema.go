package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/estimator/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats every validation message.
var printer = message.NewPrinter(language.English)

// payloadSchema checks one kind of generator payload.
type payloadSchema struct {
	name   string
	schema *jsonschema.Schema
}

var (
	questionsPayload   = compilePayloadSchema("questions.schema.json", schemas.QuestionsSchemaJSON)
	presetPayload      = compilePayloadSchema("preset.schema.json", schemas.PresetSchemaJSON)
	estimationsPayload = compilePayloadSchema("estimations.schema.json", schemas.EstimationsSchemaJSON)
)

// compilePayloadSchema panics on a broken embedded schema.
func compilePayloadSchema(name, raw string) payloadSchema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("embedded schema %s: %v", name, err))
	}
	sch, err := c.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s: %v", name, err))
	}
	return payloadSchema{name: name, schema: sch}
}

// ValidateQuestionsPayload validates a decoded question generator payload.
func ValidateQuestionsPayload(doc any) []string {
	return questionsPayload.check(doc)
}

// ValidatePresetPayload validates a decoded preset generator payload.
func ValidatePresetPayload(doc any) []string {
	return presetPayload.check(doc)
}

// ValidateEstimationsPayload validates a decoded bulk estimation payload.
func ValidateEstimationsPayload(doc any) []string {
	return estimationsPayload.check(doc)
}

// check returns one "pointer: reason" line per failing leaf of the schema
// error tree.
func (p payloadSchema) check(doc any) []string {
	err := p.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{fmt.Sprintf("%s: %v", p.name, err)}
	}

	var out []string
	pending := []*jsonschema.ValidationError{ve}
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		if len(cur.Causes) > 0 {
			pending = append(pending, cur.Causes...)
			continue
		}
		out = append(out, "/"+strings.Join(cur.InstanceLocation, "/")+": "+cur.ErrorKind.LocalizedString(printer))
	}
	return out
}
