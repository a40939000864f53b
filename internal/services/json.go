package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in response")

// extractJSON returns the span from the first '{' to the last '}' of text.
// Models often wrap the payload in prose or markdown fences.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", errNoJSONObject
	}
	return text[start : end+1], nil
}

// parseJSONResponse extracts and decodes the JSON object embedded in a model
// response. Failures are parse errors.
func parseJSONResponse[T any](op, response string) (T, error) {
	var result T

	jsonStr, err := extractJSON(response)
	if err != nil {
		return result, parseError(op, err)
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, parseError(op, fmt.Errorf("failed to unmarshal JSON: %w", err))
	}

	return result, nil
}
