// Package llmjson pulls a JSON object out of free-form model output. Models are asked for
// strict JSON but often wrap it in prose or markdown fences, so the object is taken to be
// the span from the first '{' to the last '}' of the reply.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON means the reply contains no '{' ... '}' span.
var ErrNoJSON = errors.New("no JSON object found in reply")

// ParseError reports a reply that could not be turned into the expected value.
type ParseError struct {
	Reply string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract returns the text between the first '{' and the last '}' inclusive.
func Extract(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", &ParseError{Reply: text, Err: ErrNoJSON}
	}
	return text[start : end+1], nil
}

// Decode extracts the object span from text and unmarshals it into v.
func Decode(text string, v any) error {
	span, err := Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return &ParseError{Reply: text, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}
	return nil
}
