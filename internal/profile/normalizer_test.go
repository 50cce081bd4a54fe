package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mroshb/hitched/internal/models"
)

func TestNormalize_FullInput(t *testing.T) {
	n := NewNormalizer()

	p := n.Normalize("u-1", map[string]any{
		"gender":          " Male ",
		"age":             "30",
		"location":        "  Birmingham ",
		"intent":          "LONG_TERM",
		"temperament":     "Calm",
		"values":          []any{"Honesty", "humor", "honesty", 7, " "},
		"lifestyle":       "gym, Travel ,gym",
		"dealbreakers":    []string{"Smoking"},
		"smoking":         "no",
		"pets":            true,
		"age_range_min":   25.0,
		"age_range_max":   "40",
		"max_distance_km": 20,
		"favourite_color": "blue",
	})

	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, models.GenderMale, p.Gender)
	assert.Equal(t, models.GenderFemale, p.SeekingGender)
	require.NotNil(t, p.Age)
	assert.Equal(t, 30, *p.Age)
	assert.Equal(t, "birmingham", p.Location)
	assert.Equal(t, "long_term", p.Intent)
	assert.Equal(t, "calm", p.Temperament)
	assert.Empty(t, p.CommunicationStyle)
	assert.Equal(t, models.StringList{"honesty", "humor"}, p.Values)
	assert.Equal(t, models.StringList{"gym", "travel"}, p.Lifestyle)
	assert.Equal(t, models.StringList{"smoking"}, p.Dealbreakers)
	assert.Equal(t, models.FlagSet{"smoking": false, "pets": true}, p.Flags)

	minAge, maxAge := p.AgeBounds()
	assert.Equal(t, 25, minAge)
	assert.Equal(t, 40, maxAge)
	assert.Equal(t, 20, p.DistanceLimit())
}

func TestNormalize_Defaults(t *testing.T) {
	p := NewNormalizer().Normalize("u-2", map[string]any{"gender": "female"})

	assert.Equal(t, models.GenderMale, p.SeekingGender)
	assert.Nil(t, p.Age)
	require.NotNil(t, p.AgeRangeMin)
	require.NotNil(t, p.AgeRangeMax)
	require.NotNil(t, p.MaxDistanceKm)
	assert.Equal(t, models.DefaultAgeRangeMin, *p.AgeRangeMin)
	assert.Equal(t, models.DefaultAgeRangeMax, *p.AgeRangeMax)
	assert.Equal(t, models.DefaultMaxDistanceKm, *p.MaxDistanceKm)
	assert.Empty(t, p.Values)
	assert.NotNil(t, p.Values)
}

func TestNormalize_MalformedInputNeverFails(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "nil map", raw: nil},
		{name: "empty map", raw: map[string]any{}},
		{name: "wrong types", raw: map[string]any{
			"gender":          42,
			"seeking_gender":  []any{"male"},
			"age":             map[string]any{"years": 30},
			"location":        []any{"x"},
			"intent":          true,
			"values":          12,
			"age_range_min":   "soon",
			"max_distance_km": false,
		}},
		{name: "values outside closed sets", raw: map[string]any{
			"gender":              "other",
			"seeking_gender":      "any",
			"intent":              "casual_fling",
			"temperament":         "grumpy",
			"communication_style": "loud",
		}},
	}

	n := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p models.Profile
			require.NotPanics(t, func() { p = n.Normalize("u", tt.raw) })
			assert.Empty(t, p.Gender)
			assert.Empty(t, p.SeekingGender)
			assert.Empty(t, p.Intent)
			assert.Empty(t, p.Temperament)
			assert.Empty(t, p.CommunicationStyle)
			assert.Nil(t, p.Age)
			assert.Empty(t, p.Values)
			assert.Equal(t, models.DefaultAgeRangeMin, *p.AgeRangeMin)
			assert.Equal(t, models.DefaultMaxDistanceKm, *p.MaxDistanceKm)
		})
	}
}

func TestNormalize_ExplicitSeekingGenderKept(t *testing.T) {
	p := NewNormalizer().Normalize("u", map[string]any{"gender": "male", "seeking_gender": "MALE"})
	assert.Equal(t, models.GenderMale, p.SeekingGender)
}

func TestNormalize_NotesStripped(t *testing.T) {
	p := NewNormalizer().Normalize("u", map[string]any{"notes": "<script>x()</script>Loves <i>jazz</i> & tea"})
	assert.Equal(t, "Loves jazz & tea", p.Notes)
}

func TestNormalizeExtracted(t *testing.T) {
	n := NewNormalizer()

	t.Run("valid result", func(t *testing.T) {
		tr := n.NormalizeExtracted(map[string]any{
			"relationship_intent": "Marriage",
			"temperament":         "ENERGETIC",
			"communication_style": "shouty",
			"location":            " Leeds ",
			"values":              []any{"Family", "family", "faith"},
			"extra":               "dropped",
		})
		assert.Equal(t, models.Traits{
			RelationshipIntent: "marriage",
			Temperament:        "energetic",
			Location:           "leeds",
			Values:             models.StringList{"family", "faith"},
		}, tr)
	})

	t.Run("nil result", func(t *testing.T) {
		assert.Equal(t, models.Traits{Error: "No extracted data"}, n.NormalizeExtracted(nil))
	})

	t.Run("error marker passes through", func(t *testing.T) {
		tr := n.NormalizeExtracted(map[string]any{"error": "model timeout", "temperament": "calm"})
		assert.Equal(t, models.Traits{Error: "model timeout"}, tr)
	})

	t.Run("custom closed sets", func(t *testing.T) {
		custom := &Normalizer{
			Intents:             NewSet("long_term"),
			Temperaments:        NewSet("calm"),
			CommunicationStyles: NewSet("direct"),
		}
		tr := custom.NormalizeExtracted(map[string]any{"relationship_intent": "marriage"})
		assert.Empty(t, tr.RelationshipIntent)
		assert.Empty(t, tr.Error)
	})
}

func TestToRaw_RoundTrip(t *testing.T) {
	n := NewNormalizer()
	p := n.Normalize("u", map[string]any{
		"gender":              "female",
		"age":                 29,
		"location":            "York",
		"intent":              "marriage",
		"temperament":         "mixed",
		"communication_style": "gentle",
		"values":              "faith, family",
		"dealbreakers":        []any{"smoking"},
		"pets":                "yes",
		"max_distance_km":     10,
		"notes":               "Loves jazz & tea",
	})

	again := n.Normalize("u", ToRaw(p))

	assert.Equal(t, p, again)
}

func TestToRaw_DerivedSeekingGenderOmitted(t *testing.T) {
	n := NewNormalizer()

	derived := n.Normalize("u", map[string]any{"gender": "male"})
	assert.False(t, derived.ExplicitSeeking)
	assert.NotContains(t, ToRaw(derived), "seeking_gender")

	explicit := n.Normalize("u", map[string]any{"gender": "male", "seeking_gender": "female"})
	assert.True(t, explicit.ExplicitSeeking)
	assert.Equal(t, "female", ToRaw(explicit)["seeking_gender"])
}

func TestMerge(t *testing.T) {
	base := map[string]any{"age": 30, "location": "york", "intent": "marriage"}

	got := Merge(base, map[string]any{"age": "31", "location": "", "temperament": "calm"})

	assert.Equal(t, map[string]any{"age": "31", "intent": "marriage", "temperament": "calm"}, got)
	assert.Equal(t, 30, base["age"], "base must not be modified")
}

func TestCheckCompleteness(t *testing.T) {
	n := NewNormalizer()

	incomplete := n.Normalize("u", map[string]any{"age": 30, "location": "Leeds"})
	c := CheckCompleteness(&incomplete)
	assert.False(t, c.Complete)
	assert.Equal(t, []string{"relationship_intent", "values", "communication_style", "temperament"}, c.Missing)

	complete := n.Normalize("u", map[string]any{
		"age":                 30,
		"location":            "Leeds",
		"intent":              "long_term",
		"values":              "honesty,humor",
		"communication_style": "direct",
		"temperament":         "calm",
	})
	c = CheckCompleteness(&complete)
	assert.True(t, c.Complete)
	assert.Empty(t, c.Missing)

	assert.False(t, CheckCompleteness(nil).Complete)
}
