package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanString trims s and reports whether anything is left.
func CleanString(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != ""
}

// CleanLower trims and case-folds s. Blank input yields "".
func CleanLower(s string) string {
	t, ok := CleanString(s)
	if !ok {
		return ""
	}
	return strings.ToLower(t)
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t, ok := CleanString(p); ok {
			out = append(out, t)
		}
	}
	return out
}

// UniqueLower case-folds the entries and removes blanks and duplicates, keeping first-seen order.
func UniqueLower(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := CleanLower(item)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UpperFirst upper-cases the first rune of s and leaves the rest untouched.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
