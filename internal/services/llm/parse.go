package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CleanJSONResponse strips markdown code fences the model may wrap around
// JSON output and trims surrounding noise.
func CleanJSONResponse(response string) string {
	content := strings.TrimSpace(response)

	if strings.Contains(content, "```json") {
		start := strings.Index(content, "```json") + 7
		if end := strings.Index(content[start:], "```"); end != -1 {
			content = content[start : start+end]
		} else {
			content = content[start:]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if end := strings.LastIndex(content, "```"); end != -1 {
			content = content[:end]
		}
	}

	return strings.TrimSpace(content)
}

// DecodeJSON parses model output into target, stripping code fences first.
// Failures are typed KindParse so the retry machinery treats them as
// transient.
func DecodeJSON(response string, target interface{}) error {
	cleaned := CleanJSONResponse(response)
	if cleaned == "" {
		return NewError(KindParse, fmt.Errorf("empty model output"))
	}
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return NewError(KindParse, fmt.Errorf("failed to parse model output: %w", err))
	}
	return nil
}
