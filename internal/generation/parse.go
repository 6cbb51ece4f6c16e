package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// extractJSON pulls the JSON document out of a model reply. It accepts a
// fenced code block (with or without a language tag) or bare JSON surrounded
// by prose.
func extractJSON(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyResult
	}

	if start := strings.Index(trimmed, "```"); start >= 0 {
		rest := trimmed[start+3:]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			trimmed = strings.TrimSpace(rest[:end])
		}
	}

	open := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if open < 0 || end < open {
		return "", fmt.Errorf("%w: no JSON object in reply", ErrMalformedResult)
	}
	return trimmed[open : end+1], nil
}

// decodePayload parses the reply, checks it with validate and decodes it into out.
func decodePayload(raw string, validate func(any) []string, out any) error {
	doc, err := extractJSON(raw)
	if err != nil {
		return err
	}

	var generic any
	if err := json.Unmarshal([]byte(doc), &generic); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	if errs := validate(generic); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrMalformedResult, strings.Join(errs, "; "))
	}

	if err := mapstructure.Decode(generic, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	return nil
}
