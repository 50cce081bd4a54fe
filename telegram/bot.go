package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mroshb/hitched/internal/config"
	"github.com/mroshb/hitched/internal/handlers"
	"github.com/mroshb/hitched/internal/metrics"
	"github.com/mroshb/hitched/internal/middleware"
	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/logger"
)

// apiClient is the part of tgbotapi.BotAPI used to talk back to users.
type apiClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	client   apiClient
	config   *config.Config
	handlers *handlers.HandlerManager
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics

	// User sessions for conversation state
	sessions map[int64]*Session
	mu       sync.RWMutex

	// Worker pool for parallel processing
	workerChans []chan tgbotapi.Update
	wg          sync.WaitGroup
	ctx         context.Context
}

// Session holds what the bot is waiting for from a user.
type Session struct {
	State     string
	UpdatedAt time.Time
}

// Session states
const (
	StateNone            = ""
	StateAwaitingAbout   = "awaiting_about"
	StateAwaitingProfile = "awaiting_profile"
	StateAwaitingReport  = "awaiting_report"
	StateAwaitingFeeling = "awaiting_feeling"
)

const sessionTTL = 30 * time.Minute

func InitBot(cfg *config.Config, h *handlers.HandlerManager, limiter *middleware.RateLimiter, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)
	if cfg.BotUsername == "" {
		cfg.BotUsername = api.Self.UserName
	}

	b := newBot(api, cfg, h, limiter, m)
	b.api = api
	return b, nil
}

func newBot(client apiClient, cfg *config.Config, h *handlers.HandlerManager, limiter *middleware.RateLimiter, m *metrics.Metrics) *Bot {
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	return &Bot{
		client:      client,
		config:      cfg,
		handlers:    h,
		limiter:     limiter,
		metrics:     m,
		sessions:    make(map[int64]*Session),
		workerChans: make([]chan tgbotapi.Update, workers),
		ctx:         context.Background(),
	}
}

// Start launches the workers and the update listener. It returns at once;
// the listener stops when ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.ctx = ctx
	for i := range b.workerChans {
		b.workerChans[i] = make(chan tgbotapi.Update, 100)
		b.wg.Add(1)
		go b.startWorker(b.workerChans[i])
	}

	go b.startUpdateListener(ctx)
	go b.startBackgroundJobs(ctx)
}

func (b *Bot) startUpdateListener(ctx context.Context) {
	defer func() {
		for _, ch := range b.workerChans {
			close(ch)
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for {
		logger.Info("Starting update listener...")
		updates := b.api.GetUpdatesChan(u)

		for update := range updates {
			b.dispatch(update)
		}

		if ctx.Err() != nil {
			return
		}
		logger.Warn("Update channel closed. Restarting in 5 seconds...")
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// dispatch hands the update to a worker chosen by user id so each user's
// updates are processed in order.
func (b *Bot) dispatch(update tgbotapi.Update) {
	var userID int64
	if update.Message != nil && update.Message.From != nil {
		userID = update.Message.From.ID
	} else if update.CallbackQuery != nil {
		userID = update.CallbackQuery.From.ID
	}

	if userID == 0 {
		go b.handleUpdate(update)
		return
	}

	workerIdx := userID % int64(len(b.workerChans))
	if workerIdx < 0 {
		workerIdx = -workerIdx
	}
	b.workerChans[workerIdx] <- update
}

func (b *Bot) startBackgroundJobs(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := b.expireSessions(time.Now()); n > 0 {
				logger.Debug("Expired idle sessions", "count", n)
			}
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in handleUpdate", "error", r)
		}
	}()

	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// resolveUser loads or registers the sender.
func (b *Bot) resolveUser(from *tgbotapi.User) (*models.User, error) {
	return b.handlers.Users.FindOrCreateByTelegram(models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
	})
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID

	logger.Debug("Received message", "user_id", userID, "is_command", message.IsCommand())

	if !b.limiter.Allow(userID) {
		b.metrics.IncrementRateLimited()
		b.sendMessage(userID, handlers.MsgRateLimited, nil)
		return
	}

	user, err := b.resolveUser(message.From)
	if err != nil {
		logger.Error("Failed to resolve user", "telegram_id", userID, "error", err)
		b.sendMessage(userID, handlers.MsgSomethingWrong, nil)
		return
	}

	if message.IsCommand() {
		b.clearSession(userID)
		b.handleCommand(user, message.Command(), message.CommandArguments())
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == BtnCancel {
		b.clearSession(userID)
		b.sendMessage(userID, "Okay, nothing changed.", b.mainMenu(user))
		return
	}
	if command, ok := buttonCommands[text]; ok {
		b.clearSession(userID)
		b.handleCommand(user, command, "")
		return
	}

	session := b.getSession(userID)
	switch session.State {
	case StateAwaitingAbout:
		b.clearSession(userID)
		b.metrics.ObserveBotUpdate("about")
		b.handlers.HandleAbout(b.ctx, user, text, b)
	case StateAwaitingProfile:
		b.clearSession(userID)
		b.metrics.ObserveBotUpdate("profile")
		b.handlers.HandleProfile(user, text, b)
	case StateAwaitingReport:
		b.clearSession(userID)
		b.metrics.ObserveBotUpdate("report")
		b.handlers.HandleReport(user, text, b)
	case StateAwaitingFeeling:
		b.clearSession(userID)
		b.metrics.ObserveBotUpdate("feeling")
		b.handlers.HandleFeeling(user, text, b)
	default:
		b.sendMessage(userID, handlers.MsgUnknownCommand, nil)
	}
}

func (b *Bot) handleCommand(user *models.User, command, args string) {
	userID := user.TelegramID
	h := b.handlers
	args = strings.TrimSpace(args)

	switch command {
	case "start":
		h.HandleStart(user, args, b.withMenu(user))
	case "help":
		b.sendMessage(userID, handlers.MsgHelp, b.mainMenu(user))
	case "profile":
		if args == "" {
			b.await(userID, StateAwaitingProfile, handlers.MsgProfileUsage)
			break
		}
		h.HandleProfile(user, args, b)
	case "me":
		h.HandleMe(user, b)
	case "about":
		if args == "" {
			b.await(userID, StateAwaitingAbout, handlers.MsgAboutPrompt)
			break
		}
		h.HandleAbout(b.ctx, user, args, b)
	case "status":
		h.HandleStatus(user, b)
	case "suggest":
		h.HandleSuggest(user, b)
	case "pair":
		h.HandlePair(user, args, b)
	case "match":
		h.HandleMatch(user, b)
	case "invite":
		h.HandleInvite(user, b)
	case "accept":
		h.HandleAccept(user, args, b)
	case "dates":
		h.HandleDates(user, b)
	case "pick":
		h.HandlePick(user, args, b)
	case "feedback":
		h.HandleFeedback(user, args, b)
	case "seconddate":
		h.HandleSecondDate(user, b)
	case "close":
		h.HandleClose(user, b)
	case "pause":
		h.HandlePause(user, b)
	case "resume":
		h.HandleResume(user, b)
	case "cancel":
		h.HandleCancel(user, b)
	case "evaluate":
		h.HandleEvaluate(user, b)
	case "coach":
		h.HandleCoach(user, args, b)
	case "guidance":
		h.HandleGuidance(user, b)
	case "reflect":
		h.HandleReflect(user, args, b)
	case "feeling":
		if args == "" {
			b.await(userID, StateAwaitingFeeling, handlers.MsgFeelingUsage)
			break
		}
		h.HandleFeeling(user, args, b)
	case "report":
		if args == "" {
			b.await(userID, StateAwaitingReport, handlers.MsgReportPrompt)
			break
		}
		h.HandleReport(user, args, b)
	case "export":
		h.HandleExport(user, b)
	case "reports":
		h.HandleReports(user, b)
	default:
		b.sendMessage(userID, handlers.MsgUnknownCommand, nil)
		command = "unknown"
	}
	b.metrics.ObserveBotUpdate(command)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	data := query.Data
	logger.Debug("Callback query", "data", data, "user_id", userID)

	if !b.limiter.Allow(userID) {
		b.metrics.IncrementRateLimited()
		b.AnswerCallbackQuery(query.ID, handlers.MsgRateLimited, true)
		return
	}
	b.AnswerCallbackQuery(query.ID, "", false)

	// Remove inline keyboard to keep chat clean
	if query.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(query.Message.Chat.ID, query.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
		if _, err := b.client.Request(edit); err != nil {
			logger.Debug("Failed to clear inline keyboard", "error", err)
		}
	}

	user, err := b.resolveUser(query.From)
	if err != nil {
		logger.Error("Failed to resolve user", "telegram_id", userID, "error", err)
		b.sendMessage(userID, handlers.MsgSomethingWrong, nil)
		return
	}
	b.clearSession(userID)

	h := b.handlers
	switch {
	case strings.HasPrefix(data, handlers.CallbackPair):
		b.metrics.ObserveBotUpdate("pair")
		h.HandlePair(user, strings.TrimPrefix(data, handlers.CallbackPair), b)
	case strings.HasPrefix(data, handlers.CallbackPick):
		b.metrics.ObserveBotUpdate("pick")
		h.HandlePick(user, strings.TrimPrefix(data, handlers.CallbackPick), b)
	case strings.HasPrefix(data, handlers.CallbackFeedback):
		b.metrics.ObserveBotUpdate("feedback")
		h.HandleFeedback(user, strings.TrimPrefix(data, handlers.CallbackFeedback), b)
	case strings.HasPrefix(data, handlers.CallbackAction):
		b.handleAction(user, strings.TrimPrefix(data, handlers.CallbackAction))
	default:
		logger.Warn("Unknown callback", "data", data, "user_id", userID)
	}
}

func (b *Bot) handleAction(user *models.User, action string) {
	switch action {
	case handlers.ActionInvite, handlers.ActionDates, handlers.ActionSecondDate, handlers.ActionClose,
		handlers.ActionPause, handlers.ActionResume, handlers.ActionCancel, handlers.ActionEvaluate,
		handlers.ActionCoach:
		b.handleCommand(user, action, "")
	default:
		logger.Warn("Unknown action", "action", action, "user_id", user.TelegramID)
	}
}

// await asks the user for free text and remembers what it is for.
func (b *Bot) await(userID int64, state, prompt string) {
	b.mu.Lock()
	b.sessions[userID] = &Session{State: state, UpdatedAt: time.Now()}
	b.mu.Unlock()
	b.sendMessage(userID, prompt, CancelKeyboard())
}

func (b *Bot) getSession(userID int64) Session {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if session, exists := b.sessions[userID]; exists {
		return *session
	}
	return Session{State: StateNone}
}

func (b *Bot) clearSession(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, userID)
}

func (b *Bot) expireSessions(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	expired := 0
	for id, s := range b.sessions {
		if now.Sub(s.UpdatedAt) > sessionTTL {
			delete(b.sessions, id)
			expired++
		}
	}
	return expired
}

func (b *Bot) mainMenu(user *models.User) tgbotapi.ReplyKeyboardMarkup {
	return MainMenuKeyboard(b.config.IsAdmin(user.TelegramID))
}

// menuBot attaches the main menu to messages sent without a keyboard.
type menuBot struct {
	*Bot
	menu tgbotapi.ReplyKeyboardMarkup
}

func (m menuBot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	if keyboard == nil {
		keyboard = m.menu
	}
	return m.Bot.sendMessage(chatID, text, keyboard)
}

func (b *Bot) withMenu(user *models.User) handlers.BotInterface {
	return menuBot{Bot: b, menu: b.mainMenu(user)}
}

func (b *Bot) sendMessage(chatID int64, text string, keyboard interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	switch kb := keyboard.(type) {
	case tgbotapi.ReplyKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.InlineKeyboardMarkup:
		if len(kb.InlineKeyboard) > 0 {
			msg.ReplyMarkup = kb
		}
	case tgbotapi.ReplyKeyboardRemove:
		msg.ReplyMarkup = kb
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		sentMsg, err := b.client.Send(msg)
		if err != nil {
			logger.Error("Failed to send message", "error", err, "chat_id", chatID, "attempt", i+1)

			if isNetworkError(err) {
				time.Sleep(time.Duration(i+1) * time.Second)
				continue
			}
			return 0
		}
		return sentMsg.MessageID
	}
	return 0
}

func isNetworkError(err error) bool {
	s := err.Error()
	return strings.Contains(s, "connection reset") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "network is unreachable")
}

func (b *Bot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	return b.sendMessage(chatID, text, keyboard)
}

func (b *Bot) SendDocument(chatID int64, fileName string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	if _, err := b.client.Send(doc); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}

func (b *Bot) AnswerCallbackQuery(queryID string, text string, showAlert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = showAlert
	if _, err := b.client.Request(callback); err != nil {
		logger.Error("Failed to answer callback query", "error", err, "query_id", queryID)
	}
}

// Stop stops polling and waits for the workers to drain. Cancel the context
// given to Start first so the listener does not reconnect.
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	b.wg.Wait()
	logger.Info("Bot stopped receiving updates")
}

func (b *Bot) startWorker(ch chan tgbotapi.Update) {
	defer b.wg.Done()
	for update := range ch {
		b.handleUpdate(update)
	}
}
