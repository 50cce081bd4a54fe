package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard labels. A press is routed like the matching command.
const (
	BtnProfile  = "👤 My profile"
	BtnSuggest  = "🔎 Suggestions"
	BtnStatus   = "📍 My connection"
	BtnDates    = "📅 Date options"
	BtnCoach    = "🧭 Coach"
	BtnFeeling  = "🌿 I need a moment"
	BtnHelp     = "❓ Help"
	BtnReport   = "🛡 Report a concern"
	BtnExport   = "📊 Export"
	BtnCancel   = "❌ Cancel"
	BtnSafetyDB = "📋 Reports"
)

// buttonCommands maps reply keyboard labels to commands.
var buttonCommands = map[string]string{
	BtnProfile:  "me",
	BtnSuggest:  "suggest",
	BtnStatus:   "status",
	BtnDates:    "dates",
	BtnCoach:    "coach",
	BtnFeeling:  "feeling",
	BtnHelp:     "help",
	BtnReport:   "report",
	BtnExport:   "export",
	BtnSafetyDB: "reports",
}

// MainMenuKeyboard creates the main menu keyboard. Administrators get an
// extra row with the export and report views.
func MainMenuKeyboard(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnSuggest),
			tgbotapi.NewKeyboardButton(BtnStatus),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnDates),
			tgbotapi.NewKeyboardButton(BtnCoach),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnProfile),
			tgbotapi.NewKeyboardButton(BtnFeeling),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnReport),
			tgbotapi.NewKeyboardButton(BtnHelp),
		),
	}

	if isAdmin {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnExport),
			tgbotapi.NewKeyboardButton(BtnSafetyDB),
		))
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}

// CancelKeyboard is shown while the bot waits for free text.
func CancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnCancel)),
	)
}
