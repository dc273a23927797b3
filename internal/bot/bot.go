package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maximzayviy-pixel/tgwallet/internal/service"
	"github.com/maximzayviy-pixel/tgwallet/utils"
)

// Bot is the Telegram side of the service: it sends invoices and
// notifications and applies the side effects of webhook updates.
// Updates arrive over HTTP (internal/server), not long polling.
type Bot struct {
	API         *tgbotapi.BotAPI
	service     *service.Service
	logger      *utils.Logger
	adminChatID int64
}

func NewBot(api *tgbotapi.BotAPI, svc *service.Service, adminChatID int64, logger *utils.Logger) *Bot {
	return &Bot{
		API:         api,
		service:     svc,
		logger:      logger,
		adminChatID: adminChatID,
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return userID == b.adminChatID
}

func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.API.Request(callback); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}
