package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeString trims input, drops null bytes and caps it at maxRunes runes.
func SanitizeString(input string, maxRunes int) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if maxRunes > 0 && utf8.RuneCountInString(input) > maxRunes {
		input = strings.TrimSpace(string([]rune(input)[:maxRunes]))
	}

	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeText strips markup from plain-text input. The policy's entity
// escaping is undone since the result is never rendered as HTML.
func SanitizeText(input string, maxRunes int) string {
	input = SanitizeString(input, 0)
	if input == "" {
		return ""
	}
	return SanitizeString(html.UnescapeString(SanitizeHTML(input)), maxRunes)
}

// ValidateAge checks if age is within the range accepted for matching
func ValidateAge(age int) bool {
	return age >= 18 && age <= 99
}
