package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maximzayviy-pixel/tgwallet/internal/service"
)

// SendStarsInvoice delivers a Telegram Stars invoice to the user's
// chat. Stars invoices carry no provider token.
func (b *Bot) SendStarsInvoice(chatID int64, invoice *service.StarsInvoice) error {
	inv := tgbotapi.NewInvoice(
		chatID,
		invoice.Title,
		invoice.Description,
		invoice.Payload,
		"", // provider token is empty for XTR
		"",
		invoice.Currency,
		[]tgbotapi.LabeledPrice{{Label: invoice.Title, Amount: invoice.AmountStars}},
	)
	inv.SuggestedTipAmounts = []int{}

	if _, err := b.API.Send(inv); err != nil {
		return fmt.Errorf("failed to send invoice: %w", err)
	}
	return nil
}

// NotifyAdminAboutRequest posts a new top-up request to the admin chat
// with confirm/reject buttons. Runs from the task queue, so a send
// failure is retried.
func (b *Bot) NotifyAdminAboutRequest(tgID int64, invoice *service.StarsInvoice) error {
	text := fmt.Sprintf(
		"💫 Новая заявка на пополнение #%d\n\n"+
			"👤 *Пользователь:* `%d`\n"+
			"💰 *Сумма:* `%.2f` RUB (`%d` ⭐)",
		invoice.RequestID, tgID, invoice.AmountRub, invoice.AmountStars,
	)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("%s%d", callbackPayPrefix, invoice.RequestID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("%s%d", callbackRejectPrefix, invoice.RequestID)),
		),
	)

	msg := tgbotapi.NewMessage(b.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.API.Send(msg); err != nil {
		return fmt.Errorf("failed to notify admin: %w", err)
	}
	return nil
}
