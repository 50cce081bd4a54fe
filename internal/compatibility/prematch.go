package compatibility

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mroshb/hitched/internal/models"
)

const (
	VerdictHigh   = "high"
	VerdictMedium = "medium"
	VerdictLow    = "low"
)

// PreMatch is the coarse score computed from extracted traits.
type PreMatch struct {
	Score   int      `json:"score"`
	Verdict string   `json:"verdict"`
	Reasons []string `json:"reasons"`
}

// ScoreMatch compares four equality signals and shared values. It is kept apart
// from Evaluate: pairs scored here may still be rejected by the full gates.
func ScoreMatch(a, b models.Traits) PreMatch {
	score := 0
	reasons := []string{}

	if a.RelationshipIntent != "" && a.RelationshipIntent == b.RelationshipIntent {
		score += 30
		reasons = append(reasons, "Same relationship intent")
	}
	if a.Temperament != "" && a.Temperament == b.Temperament {
		score += 15
		reasons = append(reasons, "Compatible temperament")
	}
	if a.CommunicationStyle != "" && a.CommunicationStyle == b.CommunicationStyle {
		score += 15
		reasons = append(reasons, "Similar communication style")
	}
	if a.Location != "" && a.Location == b.Location {
		score += 10
		reasons = append(reasons, "Same location")
	}

	var shared []string
	for _, v := range a.Values {
		if slices.Contains(b.Values, v) {
			shared = append(shared, v)
		}
	}
	if len(shared) > 0 {
		score += len(shared) * 5
		reasons = append(reasons, fmt.Sprintf("Shared values: %s", strings.Join(shared, ", ")))
	}

	return PreMatch{Score: score, Verdict: verdict(score), Reasons: reasons}
}

func verdict(score int) string {
	switch {
	case score >= 60:
		return VerdictHigh
	case score >= 35:
		return VerdictMedium
	default:
		return VerdictLow
	}
}

// Candidate is one ranked suggestion.
type Candidate struct {
	UserID string `json:"user_id"`
	PreMatch
}

// Rank coarse-scores every candidate against self, drops low verdicts and
// orders the rest by score, highest first, then by user id.
func Rank(self models.Profile, candidates []models.Profile) []Candidate {
	selfTraits := self.Traits()
	out := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.UserID == self.UserID {
			continue
		}
		pm := ScoreMatch(selfTraits, c.Traits())
		if pm.Verdict == VerdictLow {
			continue
		}
		out = append(out, Candidate{UserID: c.UserID, PreMatch: pm})
	}

	slices.SortFunc(out, func(x, y Candidate) int {
		if x.Score != y.Score {
			return y.Score - x.Score
		}
		return strings.Compare(x.UserID, y.UserID)
	})
	return out
}
