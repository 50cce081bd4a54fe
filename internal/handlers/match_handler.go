package handlers

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/mroshb/hitched/internal/models"
	apperrors "github.com/mroshb/hitched/pkg/errors"
)

// HandleSuggest lists ranked people the user might get along with.
func (h *HandlerManager) HandleSuggest(user *models.User, bot BotInterface) {
	candidates, err := h.Matches.Suggest(user.ID, 0)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	if len(candidates) == 0 {
		bot.SendMessage(user.TelegramID, MsgSuggestNone, nil)
		return
	}

	names := make(map[string]string, len(candidates))
	var sb strings.Builder
	sb.WriteString("<b>People you might get along with</b>\n")
	for i, c := range candidates {
		names[c.UserID] = h.displayName(c.UserID)
		sb.WriteString(fmt.Sprintf("\n%d. %s, %s fit (%d)\n", i+1, html.EscapeString(names[c.UserID]), c.Verdict, c.Score))
		for _, r := range c.Reasons {
			sb.WriteString("   • " + html.EscapeString(r) + "\n")
		}
	}
	bot.SendMessage(user.TelegramID, sb.String(), SuggestionsKeyboard(candidates, names))
}

// HandlePair connects the user with a suggested person.
func (h *HandlerManager) HandlePair(user *models.User, partnerID string, bot BotInterface) {
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		bot.SendMessage(user.TelegramID, "Choose someone from /suggest.", nil)
		return
	}

	m, err := h.Matches.Pair(user.ID, partnerID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			bot.SendMessage(user.TelegramID, "⚠️ That person is no longer available.", nil)
			return
		}
		h.sendError(user.TelegramID, err, bot)
		return
	}

	text := fmt.Sprintf("🤝 You're matched with %s. When you feel ready, send the invite.", html.EscapeString(h.displayName(partnerID)))
	bot.SendMessage(user.TelegramID, text, MatchActionsKeyboard(m))
}

// HandleMatch opens a connection and immediately prepares its invite.
func (h *HandlerManager) HandleMatch(user *models.User, bot BotInterface) {
	m, err := h.Matches.Create(user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	h.sendInvite(user, m.ID, bot)
}

// HandleInvite sends the invite for the user's current connection.
func (h *HandlerManager) HandleInvite(user *models.User, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	h.sendInvite(user, m.ID, bot)
}

func (h *HandlerManager) sendInvite(user *models.User, matchID string, bot BotInterface) {
	inv, err := h.Matches.Invite(matchID, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	expires := inv.ExpiresAt.UTC().Format("2 Jan 15:04 UTC")
	bot.SendMessage(user.TelegramID, fmt.Sprintf(MsgInviteShare, expires), nil)

	message, _ := inv.Payload["message"].(string)
	share := fmt.Sprintf("%s from %s.\n\nOpen @%s and send:\n<code>/accept %s</code>",
		html.EscapeString(message), html.EscapeString(user.DisplayName()),
		html.EscapeString(h.Config.BotUsername), html.EscapeString(inv.Token))
	bot.SendMessage(user.TelegramID, share, nil)

	if inv.Match.Partner(user.ID) != "" {
		h.notifyPartner(inv.Match, user.ID, share, nil, bot)
	}
}

// HandleAccept redeems an invite token.
func (h *HandlerManager) HandleAccept(user *models.User, token string, bot BotInterface) {
	token = strings.TrimSpace(token)
	if token == "" {
		bot.SendMessage(user.TelegramID, MsgAcceptUsage, nil)
		return
	}

	m, err := h.Matches.Accept(token, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	stage, _ := h.Matches.Flow(user.ID)
	bot.SendMessage(user.TelegramID, fmt.Sprintf(MsgAccepted, html.EscapeString(stage.Message)), MatchActionsKeyboard(m))
	h.notifyPartner(m, user.ID, fmt.Sprintf(MsgInviteReceived, html.EscapeString(user.DisplayName())), MatchActionsKeyboard(m), bot)
}

// HandleDates shows the first-date options.
func (h *HandlerManager) HandleDates(user *models.User, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	options, err := h.Matches.ProposeDates(m.ID, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>A few gentle options</b>\n")
	for i, opt := range options {
		sb.WriteString(renderDateOption(i, opt) + "\n")
	}
	sb.WriteString("\nPick one below or with /pick <i>n</i>.")
	bot.SendMessage(user.TelegramID, sb.String(), DateOptionsKeyboard(options))
}

// HandlePick schedules a date. choice is an option number or option id.
func (h *HandlerManager) HandlePick(user *models.User, choice string, bot BotInterface) {
	choice = strings.TrimSpace(choice)
	if n, err := strconv.Atoi(choice); err == nil {
		choice = fmt.Sprintf("opt%d", n)
	}
	if choice == "" {
		bot.SendMessage(user.TelegramID, MsgPickUsage, nil)
		return
	}

	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	res, err := h.Matches.Schedule(m.ID, user.ID, choice)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	details := ""
	if res.Match.DateDetails != nil {
		details = renderDate(*res.Match.DateDetails)
	}
	bot.SendMessage(user.TelegramID, fmt.Sprintf(MsgDateScheduled, details)+"\n\n"+renderList("Before you go", res.SafetyReminders), nil)
	h.notifyPartner(res.Match, user.ID,
		fmt.Sprintf(MsgPartnerDate, html.EscapeString(user.DisplayName()), details)+"\n\n"+renderList("Before you go", res.SafetyReminders), nil, bot)
}

// HandleFeedback records "yes" or "no" with optional notes after the date.
func (h *HandlerManager) HandleFeedback(user *models.User, args string, bot BotInterface) {
	answer, notes, _ := strings.Cut(strings.TrimSpace(args), " ")
	var interested bool
	switch strings.ToLower(answer) {
	case "yes", "y":
		interested = true
	case "no", "n":
		interested = false
	default:
		bot.SendMessage(user.TelegramID, MsgFeedbackUsage, FeedbackKeyboard())
		return
	}

	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	res, err := h.Matches.RecordFeedback(m.ID, user.ID, interested, notes)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	bot.SendMessage(user.TelegramID, html.EscapeString(res.Message), nil)
	switch res.Recommendation {
	case models.RecommendationSecondDate:
		h.notifyPartner(res.Match, user.ID, MsgSecondDate, MatchActionsKeyboard(res.Match), bot)
		bot.SendMessage(user.TelegramID, MsgSecondDate, MatchActionsKeyboard(res.Match))
	case models.RecommendationClose:
		bot.SendMessage(user.TelegramID, "It sounds like this wasn't the right fit for either of you, and that's okay. You can /close when ready.", nil)
	}
}

func (h *HandlerManager) HandleSecondDate(user *models.User, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	res, err := h.Matches.SecondDate(m.ID, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	text := renderPayload("Second date", res.Payload, secondDateSections)
	bot.SendMessage(user.TelegramID, text, MatchActionsKeyboard(res.Match))
	h.notifyPartner(res.Match, user.ID, text, MatchActionsKeyboard(res.Match), bot)
}

func (h *HandlerManager) HandleClose(user *models.User, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	res, err := h.Matches.Close(m.ID, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	message, _ := res.Payload["message"].(string)
	bot.SendMessage(user.TelegramID, html.EscapeString(message), nil)
	h.notifyPartner(res.Match, user.ID, MsgPartnerClosed, nil, bot)
}

func (h *HandlerManager) HandlePause(user *models.User, bot BotInterface) {
	h.setPaused(user, true, bot)
}

func (h *HandlerManager) HandleResume(user *models.User, bot BotInterface) {
	h.setPaused(user, false, bot)
}

func (h *HandlerManager) setPaused(user *models.User, paused bool, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}

	pause := h.Matches.Resume
	if paused {
		pause = h.Matches.Pause
	}
	res, err := pause(m.ID, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	message, _ := res.Payload["message"].(string)
	bot.SendMessage(user.TelegramID, html.EscapeString(message), MatchActionsKeyboard(res.Match))
}

// HandleCancel withdraws the current connection before a date is set.
func (h *HandlerManager) HandleCancel(user *models.User, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	if err := h.Matches.Cancel(m.ID, user.ID); err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	bot.SendMessage(user.TelegramID, MsgCancelled, nil)
	h.notifyPartner(m, user.ID, MsgPartnerCancel, nil, bot)
}

// HandleEvaluate runs the full compatibility check for the current connection.
func (h *HandlerManager) HandleEvaluate(user *models.User, bot BotInterface) {
	m, ok := h.currentMatch(user, bot)
	if !ok {
		return
	}
	ev, err := h.Matches.Evaluate(m.ID, user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	bot.SendMessage(user.TelegramID, renderEvaluation(&ev.Result, ev.Explanation, ev.HistoryCount), nil)
}
