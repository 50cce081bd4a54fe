package handlers

import (
	"strings"

	"github.com/mroshb/hitched/internal/coach"
	"github.com/mroshb/hitched/internal/models"
)

var intensities = map[string]bool{"low": true, "medium": true, "high": true}

// HandleCoach sends the date coach for "before" or "after". Without an
// argument the stage follows the current match.
func (h *HandlerManager) HandleCoach(user *models.User, args string, bot BotInterface) {
	stage := coach.StageBeforeDate
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "after", coach.StageAfterDate:
		stage = coach.StageAfterDate
	case "before", coach.StageBeforeDate:
	default:
		if m, err := h.Matches.Current(user.ID); err == nil && afterFirstDate(m) {
			stage = coach.StageAfterDate
		}
	}
	bot.SendMessage(user.TelegramID, renderPayload("🧭 Date coach", h.Coach.Coach(stage), coachSections), nil)
}

func afterFirstDate(m *models.Match) bool {
	switch m.Status {
	case models.MatchStatusSecondDate, models.MatchStatusClosed:
		return true
	case models.MatchStatusDateScheduled:
		return len(m.Feedback) > 0
	}
	return false
}

func (h *HandlerManager) HandleGuidance(user *models.User, bot BotInterface) {
	bot.SendMessage(user.TelegramID, renderPayload("💬 Date guidance", h.Coach.DateGuidance(), guidanceSections), nil)
}

// HandleReflect takes "continue|pause|end" followed by a free-text reflection.
func (h *HandlerManager) HandleReflect(user *models.User, args string, bot BotInterface) {
	intent, reflection, _ := strings.Cut(strings.TrimSpace(args), " ")
	switch strings.ToLower(intent) {
	case coach.IntentContinue, coach.IntentPause, coach.IntentEnd:
		intent = strings.ToLower(intent)
	default:
		reflection = strings.TrimSpace(args)
		intent = ""
	}
	bot.SendMessage(user.TelegramID, renderPayload("🪞 Reflection", h.Coach.RelationshipCoach(reflection, intent), reflectSections), nil)
}

// HandleFeeling takes a feeling with an optional trailing intensity.
func (h *HandlerManager) HandleFeeling(user *models.User, args string, bot BotInterface) {
	words := strings.Fields(args)
	if len(words) == 0 {
		bot.SendMessage(user.TelegramID, MsgFeelingUsage, nil)
		return
	}
	intensity := ""
	if last := strings.ToLower(words[len(words)-1]); len(words) > 1 && intensities[last] {
		intensity = last
		words = words[:len(words)-1]
	}
	payload := h.Coach.EmotionalSafety(strings.Join(words, " "), intensity)
	bot.SendMessage(user.TelegramID, renderPayload("🌿 Let's slow down", payload, feelingSections), nil)
}

// HandleReport records a safety concern about the current connection.
func (h *HandlerManager) HandleReport(user *models.User, args string, bot BotInterface) {
	reason, details, _ := strings.Cut(strings.TrimSpace(args), "|")
	if strings.TrimSpace(reason) == "" {
		bot.SendMessage(user.TelegramID, MsgReportPrompt, nil)
		return
	}

	matchID := ""
	if m, err := h.Matches.Current(user.ID); err == nil {
		matchID = m.ID
	}
	receipt, err := h.Coach.Report(user.ID, matchID, reason, details, "")
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	bot.SendMessage(user.TelegramID, renderPayload("🛡 Report received", receipt, receiptSections), nil)
}
