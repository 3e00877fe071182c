package util

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSONObject extracts and unmarshals the first JSON object found in
// raw model output. Models frequently wrap JSON in markdown fences or
// surrounding prose; this helper strips both before decoding. A failure is
// always a recoverable parse error, never a panic.
func DecodeJSONObject(raw string, v any) error {
	s := strings.TrimSpace(raw)

	// Strip markdown code fences (```json ... ``` or ``` ... ```).
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found in output")
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("decode JSON object: %w", err)
	}
	return nil
}
