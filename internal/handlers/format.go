package handlers

import (
	"fmt"
	"html"
	"strings"

	"github.com/mroshb/hitched/internal/compatibility"
	"github.com/mroshb/hitched/internal/lifecycle"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/profile"
	apperrors "github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
)

// section names one payload key and the heading it is rendered under. An
// empty title renders the value without a heading.
type section struct {
	key   string
	title string
}

var (
	coachSections = []section{
		{"reflection", ""}, {"reminders", "Reminders"}, {"guidance", "Guidance"},
		{"boundaries", "Boundaries"}, {"suggested_message", "A message you could send"},
	}
	guidanceSections = []section{
		{"questions", "Conversation starters"}, {"activities", "Activities"}, {"tips", "Tips"},
	}
	reflectSections = []section{
		{"reflection_summary", ""}, {"guidance", "Guidance"}, {"communication_tips", "Communication"},
		{"possible_next_steps", "Possible next steps"}, {"reassurance", ""},
	}
	feelingSections = []section{
		{"validation", ""}, {"grounding", "Grounding"}, {"reassurance", ""},
		{"guidance", "Guidance"}, {"external_support", ""}, {"boundaries", ""},
	}
	receiptSections = []section{
		{"message", ""}, {"reassurance", ""}, {"next_steps", "Next steps"},
	}
	secondDateSections = []section{
		{"message", ""}, {"suggested_date_styles", "Date ideas"}, {"guidance", "Guidance"},
		{"coach_note", ""}, {"autonomy_note", ""},
	}
)

// renderPayload turns a coaching payload into Telegram HTML.
func renderPayload(title string, payload map[string]any, sections []section) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("<b>" + html.EscapeString(title) + "</b>\n")
	}
	for _, s := range sections {
		switch v := payload[s.key].(type) {
		case string:
			if v == "" {
				continue
			}
			sb.WriteString("\n")
			if s.title != "" {
				sb.WriteString("<b>" + html.EscapeString(s.title) + ":</b> ")
			}
			sb.WriteString(html.EscapeString(v) + "\n")
		case []any:
			if len(v) == 0 {
				continue
			}
			sb.WriteString("\n")
			if s.title != "" {
				sb.WriteString("<b>" + html.EscapeString(s.title) + "</b>\n")
			}
			for _, item := range v {
				sb.WriteString("• " + html.EscapeString(fmt.Sprint(item)) + "\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderList(title string, items []string) string {
	var sb strings.Builder
	sb.WriteString("<b>" + html.EscapeString(title) + "</b>\n")
	for _, item := range items {
		sb.WriteString("• " + html.EscapeString(item) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderStage(stage lifecycle.Stage) string {
	return fmt.Sprintf("<b>Where you are:</b> %s\n%s",
		html.EscapeString(strings.ReplaceAll(stage.Stage, "_", " ")),
		html.EscapeString(stage.Message))
}

func renderProfile(p *models.Profile, c profile.Completeness) string {
	var sb strings.Builder
	sb.WriteString("<b>Your profile</b>\n")
	line := func(label, value string) {
		if value == "" {
			value = "—"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, html.EscapeString(value)))
	}

	age := ""
	if p.Age != nil {
		age = fmt.Sprint(*p.Age)
	}
	minAge, maxAge := p.AgeBounds()

	line("Gender", p.Gender)
	line("Seeking", p.SeekingGender)
	line("Age", age)
	line("Location", p.Location)
	line("Intent", p.Intent)
	line("Temperament", p.Temperament)
	line("Communication", p.CommunicationStyle)
	line("Values", strings.Join(p.Values, ", "))
	line("Lifestyle", strings.Join(p.Lifestyle, ", "))
	line("Dealbreakers", strings.Join(p.Dealbreakers, ", "))
	line("Age range", fmt.Sprintf("%d-%d", minAge, maxAge))
	line("Max distance", fmt.Sprintf("%d km", p.DistanceLimit()))
	if p.Notes != "" {
		line("Notes", p.Notes)
	}
	if p.Extracted != nil && p.Extracted.Error != "" {
		line("Last extraction", "failed: "+p.Extracted.Error)
	}

	if c.Complete {
		sb.WriteString("\n✅ Your profile is ready for matching.")
	} else {
		sb.WriteString("\nStill needed for matching: " + html.EscapeString(strings.Join(c.Missing, ", ")))
	}
	return sb.String()
}

func renderEvaluation(res *compatibility.Result, explanation string, historyCount int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Compatibility:</b> %d/100 (%s)\n", res.Score, html.EscapeString(res.Grade)))
	if res.Rejected() {
		sb.WriteString(html.EscapeString(res.Reason) + "\n")
	} else {
		sb.WriteString(html.EscapeString(explanation) + "\n")
		if res.Breakdown != nil {
			b := res.Breakdown
			sb.WriteString(fmt.Sprintf("Age %d · Distance %d · Intent %d · Values %d · Lifestyle %d · Dealbreakers %d\n",
				b.Age, b.Distance, b.Intent, b.Values, b.Lifestyle, b.Dealbreakers))
		}
	}
	sb.WriteString(fmt.Sprintf("Evaluations recorded: %d", historyCount))
	return sb.String()
}

func renderDate(opt models.DateOption) string {
	return fmt.Sprintf("%s, %s at %s (%s)", html.EscapeString(opt.Location), opt.Date, opt.Time, opt.Type)
}

func renderDateOption(i int, opt models.DateOption) string {
	return fmt.Sprintf("%d. %s", i+1, renderDate(opt))
}

// sendError reports err to the user. Unexpected errors are logged and shown
// generically.
func (h *HandlerManager) sendError(chatID int64, err error, bot BotInterface) {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeNotFound:
		bot.SendMessage(chatID, MsgNoMatch, nil)
	case apperrors.ErrCodeValidation, apperrors.ErrCodeForbidden, apperrors.ErrCodeUnauthorized,
		apperrors.ErrCodeAlreadyExists, apperrors.ErrCodeInvalidTransition, apperrors.ErrCodeExtractionFailed:
		bot.SendMessage(chatID, "⚠️ "+html.EscapeString(apperrors.MessageOf(err)), nil)
	default:
		logger.Error("Handler failed", "chat_id", chatID, "error", err)
		bot.SendMessage(chatID, MsgSomethingWrong, nil)
	}
}
