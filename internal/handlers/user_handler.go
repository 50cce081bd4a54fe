package handlers

import (
	"context"
	"strings"

	"github.com/mroshb/hitched/internal/models"
	apperrors "github.com/mroshb/hitched/pkg/errors"
	"github.com/mroshb/hitched/pkg/logger"
)

// InvitePrefix marks an invite token in a /start payload.
const InvitePrefix = "inv_"

// HandleStart greets the user. A payload starting with InvitePrefix is treated
// as an invite token.
func (h *HandlerManager) HandleStart(user *models.User, args string, bot BotInterface) {
	args = strings.TrimSpace(args)
	if strings.HasPrefix(args, InvitePrefix) {
		h.HandleAccept(user, strings.TrimPrefix(args, InvitePrefix), bot)
		return
	}

	if _, err := h.Profiles.Get(user.ID); err == nil {
		bot.SendMessage(user.TelegramID, MsgWelcomeBack, nil)
		h.HandleStatus(user, bot)
		return
	}
	bot.SendMessage(user.TelegramID, MsgWelcome, nil)
}

func (h *HandlerManager) HandleHelp(user *models.User, bot BotInterface) {
	bot.SendMessage(user.TelegramID, MsgHelp, nil)
}

// HandleProfile applies "key: value" lines to the user's profile.
func (h *HandlerManager) HandleProfile(user *models.User, args string, bot BotInterface) {
	patch := ParseProfileLines(args)
	if len(patch) == 0 {
		bot.SendMessage(user.TelegramID, MsgProfileUsage, nil)
		return
	}

	p, err := h.Profiles.Update(user.ID, patch)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	logger.Info("Profile updated", "user_id", user.ID, "fields", len(patch))
	h.sendProfile(user, p, bot)
}

// HandleMe shows the stored profile and what is still missing.
func (h *HandlerManager) HandleMe(user *models.User, bot BotInterface) {
	p, err := h.Profiles.Get(user.ID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			bot.SendMessage(user.TelegramID, MsgProfileUsage, nil)
			return
		}
		h.sendError(user.TelegramID, err, bot)
		return
	}
	h.sendProfile(user, p, bot)
}

// HandleAbout extracts profile traits from a free-text description.
func (h *HandlerManager) HandleAbout(ctx context.Context, user *models.User, transcript string, bot BotInterface) {
	if strings.TrimSpace(transcript) == "" {
		bot.SendMessage(user.TelegramID, MsgAboutPrompt, nil)
		return
	}

	p, err := h.Profiles.Extract(ctx, user.ID, transcript)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	if p.Extracted != nil && p.Extracted.Error != "" {
		bot.SendMessage(user.TelegramID, "I couldn't read much from that just now. You can still fill in your profile with /profile.", nil)
	}
	h.sendProfile(user, p, bot)
}

// HandleStatus shows the user's current stage and the actions open to them.
func (h *HandlerManager) HandleStatus(user *models.User, bot BotInterface) {
	stage, err := h.Matches.Flow(user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	m, err := h.Matches.Current(user.ID)
	if err != nil {
		bot.SendMessage(user.TelegramID, renderStage(stage), nil)
		return
	}
	bot.SendMessage(user.TelegramID, renderStage(stage), MatchActionsKeyboard(m))
}

func (h *HandlerManager) sendProfile(user *models.User, p *models.Profile, bot BotInterface) {
	c, err := h.Profiles.Completeness(user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	bot.SendMessage(user.TelegramID, renderProfile(p, c), nil)
}

// ParseProfileLines reads "key: value" pairs, one per line or separated by
// ";". Keys are lower-cased with spaces turned into underscores. A key with no
// value maps to "" so the field is cleared.
func ParseProfileLines(text string) map[string]any {
	out := map[string]any{}
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ';' })
	for _, field := range fields {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			key, value, ok = strings.Cut(field, "=")
		}
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		key = strings.Join(strings.Fields(key), "_")
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
