package lifecycle

import "github.com/mroshb/hitched/internal/models"

const (
	StageOnboarding = "onboarding"
	StagePaused     = "paused"
	StageUnknown    = "unknown"
)

// Stage tells the client what to show for a match.
type Stage struct {
	Stage           string   `json:"stage"`
	VisibleFeatures []string `json:"visible_features"`
	Message         string   `json:"message"`
}

// Flow maps a match to its UI stage. A nil match means the user has not been
// matched yet. Paused matches show the pause screen whatever their status.
func Flow(match *models.Match) Stage {
	if match == nil {
		return Stage{
			Stage:           StageOnboarding,
			VisibleFeatures: []string{"expectation_screen", "profile_setup"},
			Message:         "Take your time getting started.",
		}
	}
	if match.Paused {
		return Stage{
			Stage:           StagePaused,
			VisibleFeatures: []string{"resume", "exit_confirmation"},
			Message:         "This connection is paused. There is no obligation to continue or decide anything now.",
		}
	}

	switch match.Status {
	case models.MatchStatusCreated, models.MatchStatusMatched:
		return Stage{
			Stage:           models.MatchStatusMatched,
			VisibleFeatures: []string{"match_summary", "wait_state"},
			Message:         "A connection is available when you’re ready.",
		}
	case models.MatchStatusInviteSent:
		return Stage{
			Stage:           models.MatchStatusInviteSent,
			VisibleFeatures: []string{"invite_notification", "accept_button"},
			Message:         "No rush. Accept when it feels right.",
		}
	case models.MatchStatusInviteAccepted:
		return Stage{
			Stage:           models.MatchStatusInviteAccepted,
			VisibleFeatures: []string{"date_options", "coach_before_date"},
			Message:         "Here are a few gentle options.",
		}
	case models.MatchStatusDateScheduled:
		return Stage{
			Stage:           models.MatchStatusDateScheduled,
			VisibleFeatures: []string{"date_details", "coach_before_date", "safety_reminders"},
			Message:         "Focus on the experience, not the outcome.",
		}
	case models.MatchStatusSecondDate:
		return Stage{
			Stage:           models.MatchStatusSecondDate,
			VisibleFeatures: []string{"second_date_guidance", "relationship_coach", "number_exchange_optional"},
			Message:         "If you’re curious, here are some ideas.",
		}
	case models.MatchStatusClosed:
		return Stage{
			Stage:           models.MatchStatusClosed,
			VisibleFeatures: []string{"reflection", "exit_confirmation"},
			Message:         "Thank you for being intentional.",
		}
	default:
		return Stage{
			Stage:           StageUnknown,
			VisibleFeatures: []string{},
			Message:         "Take a pause.",
		}
	}
}
