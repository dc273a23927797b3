package server

import (
	"context"
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramWebhook is the Bot API ingress. Telegram retries on any
// non-200, so the handler always acknowledges and hands the update to
// the task queue, which owns retries for the side effects.
func (s *Server) telegramWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Errorf("Failed to decode Telegram update: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	s.tasks.Enqueue("telegram_update", func(ctx context.Context) error {
		return s.bot.ProcessUpdate(ctx, update)
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
