package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

var answerPattern = regexp.MustCompile(`(?s)"answer"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ExtractAnswer unwraps a final answer the model may have over-wrapped:
// a literal "json" prefix, JSON nested inside the answer string, or an
// answer field embedded in otherwise broken JSON. Plain text passes through.
func ExtractAnswer(text string) string {
	t := strings.TrimSpace(text)
	if len(t) >= 4 && strings.EqualFold(t[:4], "json") {
		t = strings.TrimSpace(t[4:])
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(t), &payload); err == nil {
		if answer, ok := payload["answer"].(string); ok {
			return answer
		}
	}

	if match := answerPattern.FindStringSubmatch(t); match != nil {
		return strings.ReplaceAll(match[1], `\n`, "\n")
	}

	return t
}
