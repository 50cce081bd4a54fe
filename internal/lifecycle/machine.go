// Package lifecycle holds the legal stage transitions of a match.
//
// The machine only answers questions. It never mutates a match; callers apply
// the new status after GuardTransition allows it.
package lifecycle

import (
	"fmt"
	"slices"

	"github.com/mroshb/hitched/internal/models"
)

// transitions maps each status to its allowed successors. created is the state
// before the first participant confirmed and behaves like matched.
var transitions = map[string][]string{
	models.MatchStatusCreated:        {models.MatchStatusInviteSent},
	models.MatchStatusMatched:        {models.MatchStatusInviteSent},
	models.MatchStatusInviteSent:     {models.MatchStatusInviteAccepted},
	models.MatchStatusInviteAccepted: {models.MatchStatusDateScheduled},
	models.MatchStatusDateScheduled:  {models.MatchStatusSecondDate, models.MatchStatusClosed},
	models.MatchStatusSecondDate:     {models.MatchStatusClosed},
	models.MatchStatusClosed:         {},
}

// States lists every known status in lifecycle order.
var States = []string{
	models.MatchStatusCreated,
	models.MatchStatusMatched,
	models.MatchStatusInviteSent,
	models.MatchStatusInviteAccepted,
	models.MatchStatusDateScheduled,
	models.MatchStatusSecondDate,
	models.MatchStatusClosed,
}

type Decision struct {
	Allowed bool   `json:"allowed"`
	Error   string `json:"error,omitempty"`
}

// IsKnown reports whether status belongs to the state set.
func IsKnown(status string) bool {
	_, ok := transitions[status]
	return ok
}

// Successors returns a copy of the allowed next states. Unknown states have none.
func Successors(status string) []string {
	return slices.Clone(transitions[status])
}

// IsTerminal reports whether no transition leaves status. Unknown states are terminal.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

func CanTransition(current, requested string) bool {
	if current == "" || requested == "" {
		return false
	}
	return slices.Contains(transitions[current], requested)
}

// GuardTransition validates moving match to requested against its current status.
func GuardTransition(match *models.Match, requested string) Decision {
	current := ""
	if match != nil {
		current = match.Status
	}
	if !CanTransition(current, requested) {
		return Decision{
			Allowed: false,
			Error:   fmt.Sprintf("Invalid state transition: %s → %s", current, requested),
		}
	}
	return Decision{Allowed: true}
}
