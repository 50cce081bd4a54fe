package profile

import "github.com/mroshb/hitched/internal/models"

// ToRaw converts a profile back into normalizer input. Normalize(ToRaw(p))
// reproduces p's matching fields, which lets callers apply partial updates.
// A seeking gender derived from the gender is left out so it follows later
// gender changes.
func ToRaw(p models.Profile) map[string]any {
	raw := map[string]any{}
	setString := func(key, v string) {
		if v != "" {
			raw[key] = v
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			raw[key] = *v
		}
	}
	setList := func(key string, v models.StringList) {
		if len(v) > 0 {
			raw[key] = []string(v)
		}
	}

	setString("gender", p.Gender)
	if p.ExplicitSeeking {
		setString("seeking_gender", p.SeekingGender)
	}
	setInt("age", p.Age)
	setString("location", p.Location)
	setString("intent", p.Intent)
	setString("temperament", p.Temperament)
	setString("communication_style", p.CommunicationStyle)
	setList("values", p.Values)
	setList("lifestyle", p.Lifestyle)
	setList("dealbreakers", p.Dealbreakers)
	for k, v := range p.Flags {
		raw[k] = v
	}
	setInt("age_range_min", p.AgeRangeMin)
	setInt("age_range_max", p.AgeRangeMax)
	setInt("max_distance_km", p.MaxDistanceKm)
	setString("notes", p.Notes)

	return raw
}

// Merge overlays patch on base and returns a new map. A nil or empty string
// value in patch clears the key.
func Merge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		if v == nil || v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
