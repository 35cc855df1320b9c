package domain

import "strings"

// TruncateHead clips text to at most limit runes, keeping the head of
// the document. The same policy applies to generation prompts and chat
// excerpts so identical inputs always produce identical prompt text.
func TruncateHead(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return strings.TrimSpace(string(runes[:limit])), true
}
