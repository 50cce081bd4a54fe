// Package compatibility decides whether two normalized profiles match and how well.
//
// Evaluate runs ordered hard gates followed by an additive score. ScoreMatch is
// a separate, coarser pass over extracted traits used before full profiles exist.
// Both are pure and safe for concurrent use.
package compatibility

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mroshb/hitched/internal/models"
)

const (
	GradeExcellent = "Excellent"
	GradeStrong    = "Strong"
	GradeModerate  = "Moderate"
	GradeWeak      = "Weak"
	GradeRejected  = "Rejected"

	// CompatibleThreshold is the lowest score considered a match.
	CompatibleThreshold = 60
)

// Gate names, reported on rejected results.
const (
	GateRequiredFields = "required_fields"
	GateOrientation    = "orientation"
	GateSeeking        = "seeking"
	GateIntent         = "intent"
	GateAgeRange       = "age_range"
	GateDistance       = "distance"
)

// Rejection reasons.
const (
	ReasonMissingFields     = "One or both profiles missing required fields"
	ReasonUnsupportedGender = "Only heterosexual matching is supported (male/female)"
	ReasonSameGender        = "Only heterosexual matching is supported (opposite gender required)"
	ReasonSeekingMismatch   = "Seeking preference mismatch (not mutually compatible)"
	ReasonIntentMismatch    = "Different relationship intent"
	ReasonOtherOutOfRange   = "Other user outside your age range"
	ReasonSelfOutOfRange    = "You are outside the other user's age range"
)

// Component weights.
const (
	maxAgePoints        = 15
	maxDistancePoints   = 15
	intentPoints        = 20
	maxValuePoints      = 20
	maxLifestylePoints  = 15
	dealbreakerPoints   = 15
	placeholderDistance = 30
)

// Breakdown holds the points awarded by each scoring component.
type Breakdown struct {
	Age          int `json:"age"`
	Distance     int `json:"distance"`
	Intent       int `json:"intent"`
	Values       int `json:"values"`
	Lifestyle    int `json:"lifestyle"`
	Dealbreakers int `json:"dealbreakers"`
}

func (b Breakdown) Total() int {
	return b.Age + b.Distance + b.Intent + b.Values + b.Lifestyle + b.Dealbreakers
}

type Result struct {
	Compatible bool       `json:"compatible"`
	Score      int        `json:"score"`
	Grade      string     `json:"grade"`
	Reasons    []string   `json:"reasons,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Gate       string     `json:"gate,omitempty"`
	DistanceKm int        `json:"distance_km"`
	Breakdown  *Breakdown `json:"breakdown,omitempty"`
}

// Rejected reports whether a hard gate stopped the evaluation.
func (r Result) Rejected() bool {
	return r.Gate != ""
}

// Snapshot converts the result into a history entry.
func (r Result) Snapshot(at time.Time) models.CompatibilitySnapshot {
	notes := r.Notes
	if notes == "" {
		notes = strings.Join(r.Reasons, " | ")
	}
	return models.CompatibilitySnapshot{
		EvaluatedAt: at.UTC(),
		Score:       r.Score,
		Grade:       r.Grade,
		Compatible:  r.Compatible,
		Notes:       notes,
	}
}

func reject(gate, reason string) Result {
	return Result{
		Compatible: false,
		Score:      0,
		Grade:      GradeRejected,
		Reasons:    []string{reason},
		Reason:     reason,
		Gate:       gate,
	}
}

var supportedGenders = map[string]bool{
	models.GenderMale:   true,
	models.GenderFemale: true,
}

// Evaluate checks the hard gates in order and scores the pair when all pass.
// The first failing gate decides the rejection reason.
func Evaluate(a, b models.Profile) Result {
	if !hasRequired(&a) || !hasRequired(&b) {
		return reject(GateRequiredFields, ReasonMissingFields)
	}

	if !supportedGenders[a.Gender] || !supportedGenders[b.Gender] {
		return reject(GateOrientation, ReasonUnsupportedGender)
	}
	if a.Gender == b.Gender {
		return reject(GateOrientation, ReasonSameGender)
	}

	if a.SeekingGender != b.Gender || b.SeekingGender != a.Gender {
		return reject(GateSeeking, ReasonSeekingMismatch)
	}

	if a.Intent != b.Intent {
		return reject(GateIntent, ReasonIntentMismatch)
	}

	aMin, aMax := a.AgeBounds()
	bMin, bMax := b.AgeBounds()
	var outOfRange []string
	if *b.Age < aMin || *b.Age > aMax {
		outOfRange = append(outOfRange, ReasonOtherOutOfRange)
	}
	if *a.Age < bMin || *a.Age > bMax {
		outOfRange = append(outOfRange, ReasonSelfOutOfRange)
	}
	if len(outOfRange) > 0 {
		return reject(GateAgeRange, strings.Join(outOfRange, " | "))
	}

	d := DistanceKm(a.Location, b.Location)
	maxAllowed := min(a.DistanceLimit(), b.DistanceLimit())
	if d > maxAllowed {
		r := reject(GateDistance, fmt.Sprintf("Distance too far (%dkm > %dkm)", d, maxAllowed))
		r.DistanceKm = d
		return r
	}

	breakdown := Breakdown{
		Age:          scoreAge(*a.Age, *b.Age),
		Distance:     scoreDistance(d),
		Intent:       intentPoints,
		Values:       scoreOverlap(a.Values, b.Values, maxValuePoints),
		Lifestyle:    scoreOverlap(a.Lifestyle, b.Lifestyle, maxLifestylePoints),
		Dealbreakers: scoreDealbreakers(&a, &b),
	}
	score := breakdown.Total()

	return Result{
		Compatible: score >= CompatibleThreshold,
		Score:      score,
		Grade:      GradeFor(score),
		Notes:      Explain(score),
		DistanceKm: d,
		Breakdown:  &breakdown,
	}
}

func hasRequired(p *models.Profile) bool {
	return p.Gender != "" &&
		p.SeekingGender != "" &&
		p.Age != nil &&
		p.Location != "" &&
		p.Intent != ""
}

// DistanceKm is a placeholder metric: 0 when either location is empty or both
// are equal after case folding, 30 otherwise.
func DistanceKm(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" || a == b {
		return 0
	}
	return placeholderDistance
}

func GradeFor(score int) string {
	switch {
	case score >= 85:
		return GradeExcellent
	case score >= 70:
		return GradeStrong
	case score >= CompatibleThreshold:
		return GradeModerate
	default:
		return GradeWeak
	}
}

// Explain returns the one-sentence explanation for a score band.
func Explain(score int) string {
	switch {
	case score >= 85:
		return "Excellent match: strong alignment across major factors."
	case score >= 70:
		return "Strong match: good alignment with minor differences."
	case score >= CompatibleThreshold:
		return "Moderate match: workable, but discuss expectations early."
	default:
		return "Weak match: proceed carefully; major differences likely."
	}
}

func scoreAge(a, b int) int {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 2:
		return maxAgePoints
	case diff <= 5:
		return 10
	case diff <= 8:
		return 5
	default:
		return 0
	}
}

func scoreDistance(d int) int {
	switch {
	case d <= 5:
		return maxDistancePoints
	case d <= 15:
		return 10
	case d <= 30:
		return 5
	default:
		return 0
	}
}

// scoreOverlap awards round(|A∩B| / max(|A|,|B|) * weight) over the case-folded
// distinct entries of both lists.
func scoreOverlap(a, b []string, weight int) int {
	setA := foldSet(a)
	setB := foldSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	overlap := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			overlap++
		}
	}
	denom := len(setA)
	if len(setB) > denom {
		denom = len(setB)
	}
	return int(math.Round(float64(overlap) / float64(denom) * float64(weight)))
}

func foldSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out[item] = struct{}{}
		}
	}
	return out
}

// scoreDealbreakers zeroes the component when either side names a dealbreaker
// that is a true flag on the other side. It never rejects the pair.
func scoreDealbreakers(a, b *models.Profile) int {
	if vetoes(a.Dealbreakers, b.Flags) || vetoes(b.Dealbreakers, a.Flags) {
		return 0
	}
	return dealbreakerPoints
}

func vetoes(dealbreakers []string, flags models.FlagSet) bool {
	for _, key := range dealbreakers {
		if flags[strings.ToLower(key)] {
			return true
		}
	}
	return false
}
