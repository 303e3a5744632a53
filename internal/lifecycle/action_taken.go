package lifecycle

import "strings"

// StandardSentence closes the action-taken text of every completed job.
const StandardSentence = "Tested all safety devices prior to returning equipment to service."

// NormalizeActionTaken makes s end with StandardSentence exactly once.
// Empty text becomes the sentence alone; other text gets the sentence
// appended after a blank line unless it already ends with it.
// NormalizeActionTaken(NormalizeActionTaken(s)) == NormalizeActionTaken(s).
func NormalizeActionTaken(s string) string {
	trimmed := strings.TrimRight(s, " \t\r\n")
	if trimmed == "" {
		return StandardSentence
	}
	if strings.HasSuffix(trimmed, StandardSentence) {
		return trimmed
	}
	return trimmed + "\n\n" + StandardSentence
}
