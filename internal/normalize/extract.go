package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject pulls the JSON object out of raw model text. Generators
// routinely wrap their JSON in commentary or markdown fences, so the
// substring between the first "{" and the last "}" is what gets parsed.
// A failure here is terminal for the generation attempt.
func ExtractObject(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return obj, nil
}

// Truncate shortens raw response text for diagnostics.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
