// File: internal/llmutil/parser.go
package llmutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Regexes use \x60 for backticks because Go raw strings cannot contain them.
var fencedJSONRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*([{\\[].*[}\\]])\\s*\x60\x60\x60")

// ExtractJSON pulls the JSON payload out of an LLM response that may be
// wrapped in markdown fences or conversational text. It returns the substring
// between the first opening brace and the last closing brace, which is enough
// for the flat objects this system asks models to produce.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		if m := fencedJSONRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1], nil
		}
		// Fenced but the regex missed; strip the fences and fall through.
		response = strings.Trim(response, "`")
		response = strings.TrimPrefix(strings.TrimSpace(response), "json")
	}

	first := strings.Index(response, "{")
	last := strings.LastIndex(response, "}")
	if first == -1 || last == -1 || last <= first {
		return "", fmt.Errorf("no JSON object found in LLM output")
	}
	return response[first : last+1], nil
}

// ParseJSONResponse extracts and unmarshals an LLM response into T,
// tolerating markdown fences and surrounding prose.
func ParseJSONResponse[T any](response string) (*T, error) {
	payload, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM JSON response: %w. Extracted JSON (truncated): %s",
			err, Truncate(payload, 500))
	}
	return &result, nil
}

// Truncate shortens s to at most maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
