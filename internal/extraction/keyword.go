package extraction

import (
	"context"
	"regexp"
	"strings"
)

var (
	ageRe      = regexp.MustCompile(`\b(\d{2})\b`)
	locationRe = regexp.MustCompile(`\b(?:in|from|near|live in|based in)\s+([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)?)`)
)

type keyword struct {
	phrase string
	value  string
}

var intentKeywords = []keyword{
	{"long term", "long_term"},
	{"long-term", "long_term"},
	{"serious relationship", "long_term"},
	{"marriage", "marriage"},
	{"get married", "marriage"},
	{"companionship", "companionship"},
	{"companion", "companionship"},
	{"friendship", "friendship"},
	{"hang out", "hangout"},
	{"plus one", "partner_for_event"},
}

var temperamentKeywords = []keyword{
	{"calm", "calm"},
	{"laid back", "calm"},
	{"energetic", "energetic"},
	{"outgoing", "energetic"},
}

var communicationKeywords = []keyword{
	{"direct", "direct"},
	{"straightforward", "direct"},
	{"gentle", "gentle"},
	{"reserved", "reserved"},
	{"shy", "reserved"},
}

var smokingKeywords = []keyword{
	{"no smoking", "no"},
	{"don't smoke", "no"},
	{"non-smoker", "no"},
	{"i smoke", "yes"},
	{"smoker", "yes"},
}

// KnownValues are the value words the keyword extractor recognizes.
var KnownValues = []string{
	"honesty", "humor", "kindness", "family", "faith", "loyalty", "ambition", "travel", "respect", "adventure",
}

// KeywordExtractor is a local heuristic used when no model is configured or
// the model call fails. It never errors.
type KeywordExtractor struct{}

func (KeywordExtractor) Extract(_ context.Context, transcript string) (map[string]any, error) {
	lower := strings.ToLower(transcript)
	out := map[string]any{}

	if m := ageRe.FindStringSubmatch(transcript); m != nil {
		out["age"] = m[1]
	}
	if m := locationRe.FindStringSubmatch(transcript); m != nil {
		out["location"] = m[1]
	}
	if v := firstMatch(lower, intentKeywords); v != "" {
		out["relationship_intent"] = v
	}
	if v := firstMatch(lower, temperamentKeywords); v != "" {
		out["temperament"] = v
	}
	if v := firstMatch(lower, communicationKeywords); v != "" {
		out["communication_style"] = v
	}
	if v := firstMatch(lower, smokingKeywords); v != "" {
		out["smoking"] = v
	}

	values := []any{}
	for _, v := range KnownValues {
		if strings.Contains(lower, v) {
			values = append(values, v)
		}
	}
	out["values"] = values

	return out, nil
}

func firstMatch(lower string, table []keyword) string {
	for _, k := range table {
		if strings.Contains(lower, k.phrase) {
			return k.value
		}
	}
	return ""
}
