// Package schemas embeds the JSON Schemas that generator payloads must satisfy.
package schemas

import _ "embed"

//go:embed questions.schema.json
var QuestionsSchemaJSON string

//go:embed preset.schema.json
var PresetSchemaJSON string

//go:embed estimations.schema.json
var EstimationsSchemaJSON string
