// Package coach builds the fixed coaching and guidance payloads. Payloads are
// plain maps so the safety pipeline can walk them before delivery.
package coach

import "time"

const (
	StageBeforeDate = "before_date"
	StageAfterDate  = "after_date"
)

// Relationship coach intents.
const (
	IntentContinue = "continue"
	IntentPause    = "pause"
	IntentEnd      = "end"
)

func stamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

// Respond is the general date coach for the given stage.
func Respond(stage string, now time.Time) map[string]any {
	reflection := "Take a moment to reflect on how you felt during the interaction."
	if stage == StageBeforeDate {
		reflection = "It’s normal to feel a mix of curiosity and nerves before meeting someone."
	}

	var suggested any
	nextStep := "attend_date"
	if stage == StageAfterDate {
		suggested = "I enjoyed meeting you. I’d like to reflect and see how we both feel before planning next steps."
		nextStep = "complete_post_date_reflection"
	}

	return map[string]any{
		"tone": "calm and encouraging",
		"reminders": []any{
			"Don’t forget to smile — it helps both of you relax.",
			"Stay present and kind to yourself.",
		},
		"boundaries": []any{
			"Avoid exchanging numbers until after the post-date review.",
			"This helps reduce pressure and keeps things intentional.",
		},
		"reflection": reflection,
		"guidance": []any{
			"Be honest about your intentions.",
			"Listen more than you speak.",
			"Notice how you feel around them, not just what they say.",
		},
		"suggested_message": suggested,
		"next_step":         nextStep,
		"generated_at":      stamp(now),
	}
}

// DateGuidance offers conversation starters and low-pressure activities.
func DateGuidance(now time.Time) map[string]any {
	return map[string]any{
		"questions": []any{
			"What does a good weekend look like for you?",
			"What’s something you’ve learned about yourself this year?",
			"What kind of friendships do you value most?",
			"What does ‘intentional connection’ mean to you?",
		},
		"activities": []any{
			"Take a short walk after meeting to ease nerves",
			"Order something new and share why you chose it",
			"Play a light question game (no rapid-fire)",
		},
		"tips": []any{
			"Be present — no phone checking",
			"Listen to understand, not to respond",
			"There is no pressure to impress",
		},
		"tone":         "relaxed and curious",
		"generated_at": stamp(now),
	}
}

// RelationshipCoach responds to a reflection with next steps for intent.
func RelationshipCoach(reflection, intent string, now time.Time) map[string]any {
	summary := "It’s okay to take time to reflect."
	if reflection != "" {
		summary = "You’re taking time to understand how you feel — that’s healthy."
	}

	var next []any
	switch intent {
	case IntentContinue:
		next = []any{"Plan another relaxed meeting", "Discuss expectations gently", "Continue learning about each other"}
	case IntentPause:
		next = []any{"Take space to reflect", "Avoid pressure or forced contact", "Reconnect later if clarity improves"}
	case IntentEnd:
		next = []any{"Communicate honestly and kindly", "Avoid ghosting", "Close the interaction respectfully"}
	default:
		next = []any{"Reflect further", "Ask yourself what you want", "There is no rush"}
	}

	return map[string]any{
		"tone":               "supportive and neutral",
		"reflection_summary": summary,
		"guidance": []any{
			"You don’t need to rush decisions.",
			"Notice how you feel during and after interactions.",
			"Clear communication reduces anxiety for both people.",
		},
		"communication_tips": []any{
			"Use 'I feel' statements rather than assumptions.",
			"It’s okay to ask for clarity.",
			"Respect your own boundaries.",
		},
		"possible_next_steps": next,
		"reassurance":         "You are allowed to choose what feels right for you.",
		"generated_at":        stamp(now),
	}
}

// EmotionalSafety grounds a user who reports a strong feeling.
func EmotionalSafety(feeling, intensity string, now time.Time) map[string]any {
	if intensity == "" {
		intensity = "unknown"
	}
	return map[string]any{
		"tone":       "calm and grounding",
		"feeling":    feeling,
		"validation": "What you’re feeling is understandable. Dating can bring up strong emotions.",
		"grounding": []any{
			"Take a slow breath in through your nose.",
			"Let your shoulders relax.",
			"Notice where you are right now.",
		},
		"reassurance": "You don’t need to make any decisions while emotions are high.",
		"guidance": []any{
			"Give yourself time before responding.",
			"Avoid reading meaning into silence.",
			"Focus on how you feel, not what you fear.",
		},
		"intensity_level":  intensity,
		"external_support": "If these feelings feel overwhelming, consider talking to someone you trust.",
		"boundaries":       "I can help you reflect, but I can’t replace human support.",
		"generated_at":     stamp(now),
	}
}

// SafetyReceipt acknowledges a safety report. The internal record is stored
// separately and never shown back to the user.
func SafetyReceipt(now time.Time) map[string]any {
	return map[string]any{
		"status":      "received",
		"message":     "Thank you for speaking up. Your report has been recorded. You are not required to take any further action.",
		"reassurance": "Your safety and comfort matter. You may step back or exit the match at any time.",
		"next_steps": []any{
			"Take time for yourself",
			"Reach out to someone you trust",
			"Continue only if you feel comfortable",
		},
		"received_at": stamp(now),
	}
}

// SecondDateGuidance is shown once both participants want to meet again.
func SecondDateGuidance(now time.Time) map[string]any {
	return map[string]any{
		"message": "You both expressed interest in seeing each other again.",
		"suggested_date_styles": []any{
			"Casual dinner with time to talk",
			"Shared activity (museum, games, class)",
			"Relaxed walk + coffee",
		},
		"guidance": []any{
			"Keep expectations light.",
			"Focus on enjoying time together.",
			"If it feels right, you may exchange numbers.",
		},
		"coach_note":    "Don’t forget to smile — comfort creates connection.",
		"autonomy_note": "You’re free to take things forward in your own way. The coach is here if you want guidance.",
		"generated_at":  stamp(now),
	}
}

// SafetyReminders accompany a scheduled date.
var SafetyReminders = []string{
	"Meet in a public place.",
	"Let someone you trust know where you’re going.",
	"You can leave at any time if you feel uncomfortable.",
}

const (
	PauseMessage   = "This connection is paused. There is no obligation to continue or decide anything now."
	ClosingMessage = "This connection has been gently closed. Thank you for being intentional."
	InviteMessage  = "You have a blind-date invite"
)
