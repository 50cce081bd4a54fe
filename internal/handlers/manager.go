package handlers

import (
	"github.com/mroshb/hitched/internal/config"
	"github.com/mroshb/hitched/internal/metrics"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/repositories"
	"github.com/mroshb/hitched/internal/services"
	"github.com/mroshb/hitched/pkg/logger"
)

// BotInterface is the part of the Telegram bot the handlers need. It keeps
// this package free of the transport.
type BotInterface interface {
	SendMessage(chatID int64, text string, keyboard interface{}) int
	SendDocument(chatID int64, fileName string, data []byte, caption string) error
	AnswerCallbackQuery(queryID string, text string, showAlert bool)
}

type HandlerManager struct {
	Config   *config.Config
	Users    repositories.UserStore
	Profiles *services.ProfileService
	Matches  *services.MatchService
	Coach    *services.CoachService
	Metrics  *metrics.Metrics
}

func NewHandlerManager(
	cfg *config.Config,
	users repositories.UserStore,
	profiles *services.ProfileService,
	matches *services.MatchService,
	coachSvc *services.CoachService,
	m *metrics.Metrics,
) *HandlerManager {
	return &HandlerManager{
		Config:   cfg,
		Users:    users,
		Profiles: profiles,
		Matches:  matches,
		Coach:    coachSvc,
		Metrics:  m,
	}
}

// notifyPartner messages the other participant of m, if any.
func (h *HandlerManager) notifyPartner(m *models.Match, userID, text string, keyboard interface{}, bot BotInterface) {
	partnerID := m.Partner(userID)
	if partnerID == "" {
		return
	}
	partner, err := h.Users.FindByID(partnerID)
	if err != nil {
		logger.Warn("Failed to load partner for notification", "match_id", m.ID, "error", err)
		return
	}
	bot.SendMessage(partner.TelegramID, text, keyboard)
}

func (h *HandlerManager) displayName(userID string) string {
	u, err := h.Users.FindByID(userID)
	if err != nil {
		return "someone"
	}
	return u.DisplayName()
}

// currentMatch loads the user's latest match, telling the user when there is none.
func (h *HandlerManager) currentMatch(user *models.User, bot BotInterface) (*models.Match, bool) {
	m, err := h.Matches.Current(user.ID)
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return nil, false
	}
	return m, true
}
