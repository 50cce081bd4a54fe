// Package profile turns loosely typed profile input into canonical records.
//
// Normalization never fails: values that are missing, of the wrong type or
// outside their closed set come out empty, so a bad field never blocks the
// matching pipeline.
package profile

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/security"
	"github.com/mroshb/hitched/pkg/utils"
)

const (
	maxNotesRunes    = 240
	maxLocationRunes = 120
	noExtractedData  = "No extracted data"
)

// Closed value sets.
var (
	DefaultIntents = []string{
		"long_term", "marriage", "companionship", "friendship", "hangout", "partner_for_event",
	}
	DefaultTemperaments        = []string{"calm", "energetic", "mixed"}
	DefaultCommunicationStyles = []string{"direct", "gentle", "reserved"}
	Genders                    = []string{models.GenderMale, models.GenderFemale}

	// FlagKeys are the boolean attributes a dealbreaker may name.
	FlagKeys = []string{"smoking", "drinking", "has_children", "wants_children", "pets", "religious"}
)

// Set is a closed enumeration.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[strings.ToLower(v)] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

type Normalizer struct {
	Intents             Set
	Temperaments        Set
	CommunicationStyles Set
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Intents:             NewSet(DefaultIntents...),
		Temperaments:        NewSet(DefaultTemperaments...),
		CommunicationStyles: NewSet(DefaultCommunicationStyles...),
	}
}

var genders = NewSet(Genders...)

// Normalize builds a canonical profile for userID from raw input. Unknown keys
// are dropped.
func (n *Normalizer) Normalize(userID string, raw map[string]any) models.Profile {
	p := models.Profile{UserID: userID}
	if raw == nil {
		raw = map[string]any{}
	}

	p.Gender = enum(raw["gender"], genders)
	p.SeekingGender = enum(raw["seeking_gender"], genders)
	p.ExplicitSeeking = p.SeekingGender != ""
	if !p.ExplicitSeeking {
		p.SeekingGender = opposite(p.Gender)
	}

	p.Age = optionalInt(raw["age"])
	p.Location = utils.CleanLower(security.SanitizeText(str(raw["location"]), maxLocationRunes))

	intent := raw["intent"]
	if intent == nil {
		intent = raw["relationship_intent"]
	}
	p.Intent = enum(intent, n.Intents)
	p.Temperament = enum(raw["temperament"], n.Temperaments)
	p.CommunicationStyle = enum(raw["communication_style"], n.CommunicationStyles)

	p.Values = list(raw["values"])
	p.Lifestyle = list(raw["lifestyle"])
	p.Dealbreakers = list(raw["dealbreakers"])
	p.Flags = flags(raw)

	p.AgeRangeMin = intOrDefault(raw["age_range_min"], models.DefaultAgeRangeMin)
	p.AgeRangeMax = intOrDefault(raw["age_range_max"], models.DefaultAgeRangeMax)
	p.MaxDistanceKm = intOrDefault(raw["max_distance_km"], models.DefaultMaxDistanceKm)

	notes := raw["notes_for_matching"]
	if notes == nil {
		notes = raw["notes"]
	}
	p.Notes = security.SanitizeText(str(notes), maxNotesRunes)

	return p
}

// NormalizeExtracted normalizes the output of the text-extraction service.
// A missing result, or one that reports an error, becomes an explicit error
// marker instead of failing the caller.
func (n *Normalizer) NormalizeExtracted(raw map[string]any) models.Traits {
	if raw == nil {
		return models.Traits{Error: noExtractedData}
	}
	if e, ok := raw["error"]; ok && e != nil && e != false && e != "" {
		reason := str(e)
		if reason == "" {
			reason = noExtractedData
		}
		return models.Traits{Error: reason}
	}

	return models.Traits{
		RelationshipIntent: enum(raw["relationship_intent"], n.Intents),
		Temperament:        enum(raw["temperament"], n.Temperaments),
		CommunicationStyle: enum(raw["communication_style"], n.CommunicationStyles),
		Location:           utils.CleanLower(str(raw["location"])),
		Values:             onlyList(raw["values"]),
	}
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []any, []string, map[string]any:
		return ""
	}
	out, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return out
}

func enum(v any, allowed Set) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = utils.CleanLower(s)
	if !allowed.Has(s) {
		return ""
	}
	return s
}

func opposite(gender string) string {
	switch gender {
	case models.GenderMale:
		return models.GenderFemale
	case models.GenderFemale:
		return models.GenderMale
	}
	return ""
}

func optionalInt(v any) *int {
	switch t := v.(type) {
	case nil, bool:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		v = strings.TrimSpace(t)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func intOrDefault(v any, fallback int) *int {
	if n := optionalInt(v); n != nil {
		return n
	}
	return models.IntPtr(fallback)
}

// list accepts an array or a comma separated string.
func list(v any) models.StringList {
	if s, ok := v.(string); ok {
		return utils.UniqueLower(utils.SplitList(s))
	}
	return onlyList(v)
}

func onlyList(v any) models.StringList {
	var items []string
	switch t := v.(type) {
	case []string:
		items = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return models.StringList{}
	}
	return utils.UniqueLower(items)
}

func flags(raw map[string]any) models.FlagSet {
	out := models.FlagSet{}
	for _, key := range FlagKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr {
			switch utils.CleanLower(s) {
			case "yes", "y":
				out[key] = true
				continue
			case "no", "n", "indifferent":
				out[key] = false
				continue
			}
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			continue
		}
		out[key] = b
	}
	return out
}
