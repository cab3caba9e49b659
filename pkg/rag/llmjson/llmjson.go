// Package llmjson pulls a JSON document out of a model reply.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSON = errors.New("no JSON found in response")

// Extract strips code fences and surrounding prose and returns the outermost
// JSON object or array, or "" when there is none.
func Extract(response string) string {
	content := strings.TrimSpace(response)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.ReplaceAll(content, "```", "")
		content = strings.TrimSpace(content)
	}

	start := strings.IndexAny(content, "{[")
	if start == -1 {
		return ""
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end <= start {
		return ""
	}
	return content[start : end+1]
}

// Decode extracts the JSON part of response and unmarshals it into v.
func Decode(response string, v interface{}) error {
	content := Extract(response)
	if content == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	return nil
}
