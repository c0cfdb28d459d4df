package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONArray is returned when a response contains no bracketed array.
var ErrNoJSONArray = errors.New("no JSON array in response")

// ExtractJSONArray returns the substring from the first '[' to the last ']'.
// Models often wrap JSON in prose or markdown fences.
func ExtractJSONArray(response string) (string, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start < 0 || end <= start {
		return "", ErrNoJSONArray
	}
	return response[start : end+1], nil
}

// ParseStringArray extracts a JSON array of strings from a model response.
// Any non-string element fails the whole parse.
func ParseStringArray(response string) ([]string, error) {
	raw, err := ExtractJSONArray(response)
	if err != nil {
		return nil, err
	}

	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("unmarshal string array: %w", err)
	}
	return out, nil
}
