// Package json extracts structured objects from language-model output.
//
// Models asked for JSON frequently wrap it in markdown fences or surround it
// with commentary. The routing oracle depends on these helpers to recover
// the decision object from such responses.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds the JSON object in a model response. It tries, in order:
// the whole response after stripping markdown fences, then the span from the
// first '{' to the last '}'.
//
// Only objects are handled, and brace matching is textual, so a response
// with braces inside string values can defeat it.
func extractJSON(response string) (string, error) {
	response = stripFences(response)

	var probe any
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end > start {
			candidate := response[start : end+1]
			if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
				return candidate, nil
			}
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON object in response: %q", preview)
}

// stripFences removes ```json / ``` markers around a response.
func stripFences(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}

// Decode extracts the JSON object from a model response and unmarshals it
// into T.
func Decode[T any](response string) (T, error) {
	var result T
	raw, err := extractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// DecodeInto extracts the JSON object into a provided pointer for cases
// where generics are awkward.
func DecodeInto(response string, result any) error {
	raw, err := extractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// Extract returns the raw JSON portion of a response.
func Extract(response string) (string, error) {
	return extractJSON(response)
}
