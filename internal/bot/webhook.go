package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maximzayviy-pixel/tgwallet/internal/metrics"
	"github.com/maximzayviy-pixel/tgwallet/internal/service"
)

// Callback data tags on admin confirmation keyboards.
const (
	callbackPayPrefix    = "pay:"
	callbackRejectPrefix = "rej:"
)

// ProcessUpdate applies the side effects of one Telegram update. It is
// executed from the task queue, so a returned error means the whole
// update is retried.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		metrics.WebhookUpdates.WithLabelValues("callback_query").Inc()
		return b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		metrics.WebhookUpdates.WithLabelValues("successful_payment").Inc()
		return b.handleSuccessfulPayment(ctx, update.Message)
	default:
		metrics.WebhookUpdates.WithLabelValues("other").Inc()
		return nil
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	data := callback.Data

	var approve bool
	var idStr string
	switch {
	case strings.HasPrefix(data, callbackPayPrefix):
		approve = true
		idStr = strings.TrimPrefix(data, callbackPayPrefix)
	case strings.HasPrefix(data, callbackRejectPrefix):
		approve = false
		idStr = strings.TrimPrefix(data, callbackRejectPrefix)
	default:
		b.answerCallback(callback.ID, "")
		return nil
	}

	if !b.isAdmin(callback.From.ID) {
		b.answerCallback(callback.ID, "Это действие доступно только администратору.")
		return nil
	}

	requestID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.logger.Errorf("Invalid callback data %q: %v", data, err)
		b.answerCallback(callback.ID, "Ошибка: неверные данные кнопки.")
		return nil
	}

	req, err := b.service.DecidePaymentRequest(ctx, requestID, approve)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyProcessed) || errors.Is(err, service.ErrRequestNotFound) {
			b.answerCallback(callback.ID, "Заявка уже обработана.")
			return nil
		}
		b.answerCallback(callback.ID, "Ошибка обработки заявки.")
		return err
	}

	// Remove the keyboard so the decision cannot be clicked twice.
	if callback.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(callback.Message.Chat.ID, callback.Message.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
		if _, err := b.API.Send(edit); err != nil {
			b.logger.Warnf("Failed to remove keyboard: %v", err)
		}
	}

	if approve {
		b.answerCallback(callback.ID, "Заявка подтверждена.")
		b.sendMessage(req.TgID, fmt.Sprintf("✅ Ваша заявка #%d подтверждена, баланс пополнен на `%.2f` RUB.", req.ID, req.AmountRub), nil)
	} else {
		b.answerCallback(callback.ID, "Заявка отклонена.")
		b.sendMessage(req.TgID, fmt.Sprintf("❌ Ваша заявка #%d отклонена.", req.ID), nil)
	}
	return nil
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, message *tgbotapi.Message) error {
	payment := message.SuccessfulPayment
	if payment.Currency != "XTR" {
		b.logger.Warnf("Ignoring successful payment in currency %s", payment.Currency)
		return nil
	}

	applied, err := b.service.ApplyStarsPayment(ctx, message.From.ID, payment.TotalAmount, payment.TelegramPaymentChargeID, payment.InvoicePayload)
	if err != nil {
		return fmt.Errorf("failed to apply stars payment %s: %w", payment.TelegramPaymentChargeID, err)
	}
	if !applied {
		// Duplicate delivery, already credited.
		return nil
	}

	metrics.StarsPaymentsApplied.Inc()
	amount := b.service.AmountForStars(payment.TotalAmount)
	b.sendMessage(message.Chat.ID, fmt.Sprintf("✅ Ваш баланс пополнен на `%.2f` RUB (%d ⭐).", amount, payment.TotalAmount), nil)
	return nil
}
