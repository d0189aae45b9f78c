package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// UserAgent is sent by every raw HTTP client.
const UserAgent = "GoClip/1.0"

// CleanText decodes HTML entities (the Data API escapes snippet text,
// e.g. "Newton&#39;s Laws") and trims whitespace.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TopicLabel turns a topic key like "chemical_reactions" into "Chemical reactions".
func TopicLabel(topic string) string {
	s := strings.TrimSpace(strings.ReplaceAll(topic, "_", " "))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// StripFences removes markdown code fences from LLM output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
