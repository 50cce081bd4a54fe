package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mroshb/hitched/internal/compatibility"
	"github.com/mroshb/hitched/internal/models"
)

// Callback data prefixes.
const (
	CallbackPair     = "pair:"
	CallbackPick     = "pick:"
	CallbackFeedback = "fb:"
	CallbackAction   = "act:"
)

// Actions carried by CallbackAction buttons.
const (
	ActionInvite     = "invite"
	ActionDates      = "dates"
	ActionSecondDate = "seconddate"
	ActionClose      = "close"
	ActionPause      = "pause"
	ActionCancel     = "cancel"
	ActionResume     = "resume"
	ActionEvaluate   = "evaluate"
	ActionCoach      = "coach"
)

// SuggestionsKeyboard offers one connect button per candidate.
func SuggestionsKeyboard(candidates []compatibility.Candidate, names map[string]string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range candidates {
		label := fmt.Sprintf("🤝 %s (%d)", names[c.UserID], c.Score)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CallbackPair+c.UserID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DateOptionsKeyboard creates one button per proposed date.
func DateOptionsKeyboard(options []models.DateOption) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, opt := range options {
		label := fmt.Sprintf("%d. %s, %s %s", i+1, opt.Location, opt.Date, opt.Time)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CallbackPick+opt.OptionID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func FeedbackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😊 I'd like to meet again", CallbackFeedback+"yes"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🙏 Not for me", CallbackFeedback+"no"),
		),
	)
}

// MatchActionsKeyboard shows the next steps available for the match.
func MatchActionsKeyboard(m *models.Match) tgbotapi.InlineKeyboardMarkup {
	action := func(label, name string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, CallbackAction+name)
	}

	if m.Paused {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(action("▶️ Resume", ActionResume)),
		)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	exit := action("✋ Cancel", ActionCancel)
	switch m.Status {
	case models.MatchStatusCreated, models.MatchStatusMatched:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(action("💌 Send invite", ActionInvite)))
	case models.MatchStatusInviteAccepted:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(action("📅 Date options", ActionDates)))
	case models.MatchStatusDateScheduled, models.MatchStatusSecondDate:
		if m.Status == models.MatchStatusDateScheduled && m.Recommendation == models.RecommendationSecondDate {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(action("✨ Plan a second date", ActionSecondDate)))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(action("🧭 Coach", ActionCoach)))
		exit = action("👋 Close", ActionClose)
	case models.MatchStatusClosed:
		return tgbotapi.NewInlineKeyboardMarkup()
	}
	if len(m.Participants) == 2 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(action("📊 Compatibility", ActionEvaluate)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(action("⏸ Pause", ActionPause), exit))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
