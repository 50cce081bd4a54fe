package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/internal/reports"
	"github.com/mroshb/hitched/pkg/logger"
)

// HandleExport sends the administrator a workbook of every match.
func (h *HandlerManager) HandleExport(user *models.User, bot BotInterface) {
	if !h.Config.IsAdmin(user.TelegramID) {
		bot.SendMessage(user.TelegramID, MsgAdminOnly, nil)
		return
	}

	matches, err := h.Matches.ListAll()
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	var buf bytes.Buffer
	if err := reports.ExportMatches(matches, &buf); err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}

	name := fmt.Sprintf("matches-%s.xlsx", time.Now().UTC().Format("20060102-1504"))
	if err := bot.SendDocument(user.TelegramID, name, buf.Bytes(), fmt.Sprintf("📊 %d matches", len(matches))); err != nil {
		logger.Error("Failed to send export", "admin_id", user.TelegramID, "error", err)
		bot.SendMessage(user.TelegramID, MsgSomethingWrong, nil)
		return
	}
	logger.Info("Admin exported matches", "admin_id", user.TelegramID, "count", len(matches))
}

// HandleReports lists the most recent safety reports for the administrator.
func (h *HandlerManager) HandleReports(user *models.User, bot BotInterface) {
	if !h.Config.IsAdmin(user.TelegramID) {
		bot.SendMessage(user.TelegramID, MsgAdminOnly, nil)
		return
	}

	list, err := h.Coach.Reports()
	if err != nil {
		h.sendError(user.TelegramID, err, bot)
		return
	}
	if len(list) == 0 {
		bot.SendMessage(user.TelegramID, "No safety reports.", nil)
		return
	}

	items := make([]string, 0, len(list))
	for i, r := range list {
		if i == 10 {
			break
		}
		items = append(items, fmt.Sprintf("%s · %s · %s", r.CreatedAt.UTC().Format("2006-01-02 15:04"), r.MatchID, r.Reason))
	}
	bot.SendMessage(user.TelegramID, renderList(fmt.Sprintf("🛡 Safety reports (%d)", len(list)), items), nil)
}
