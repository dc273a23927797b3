package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
)

// invoicePayloadPrefix tags Stars invoice payloads with the payment
// request they were issued for.
const invoicePayloadPrefix = "topup:"

// StarsInvoice carries the parameters the bot needs to send a Telegram
// Stars invoice, and that the Mini-App renders as a payment button.
type StarsInvoice struct {
	RequestID   int64   `json:"request_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Payload     string  `json:"payload"`
	Currency    string  `json:"currency"`
	AmountStars int     `json:"amount_stars"`
	AmountRub   float64 `json:"amount_rub"`
}

// StarsForAmount converts rubles to stars at the configured rate,
// rounding up so the user never underpays.
func (s *Service) StarsForAmount(amountRub float64) int {
	return int(math.Ceil(amountRub * s.config.StarsPerRub))
}

// AmountForStars converts a paid star amount back to rubles.
func (s *Service) AmountForStars(stars int) float64 {
	return float64(stars) / s.config.StarsPerRub
}

// CreateStarsInvoice records a pending PaymentRequest and builds the
// invoice payload for a Stars top-up.
func (s *Service) CreateStarsInvoice(ctx context.Context, telegramID int64, amountRub float64) (*StarsInvoice, error) {
	if amountRub <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.ensureTelegramUser(ctx, telegramID)
		if err != nil {
			return nil, err
		}
	}

	stars := s.StarsForAmount(amountRub)
	req := &models.PaymentRequest{
		UserID:      user.ID,
		TgID:        telegramID,
		AmountRub:   amountRub,
		AmountStars: stars,
		Status:      models.RequestStatusPending,
	}
	if err := s.repo.CreatePaymentRequest(ctx, req); err != nil {
		return nil, err
	}

	return &StarsInvoice{
		RequestID:   req.ID,
		Title:       "Пополнение карты",
		Description: fmt.Sprintf("Пополнение баланса на %.2f RUB", amountRub),
		Payload:     fmt.Sprintf("%s%d", invoicePayloadPrefix, req.ID),
		Currency:    "XTR",
		AmountStars: stars,
		AmountRub:   amountRub,
	}, nil
}

// ApplyStarsPayment credits a user's card for a successful Stars
// payment. Keyed on the Telegram payment charge id: a duplicate
// delivery of the same update is a no-op, so a balance is never
// credited twice. The invoice payload carries the payment request the
// invoice was issued for; that request is closed in the same
// transaction, so an admin callback on it afterwards cannot credit the
// same intent again. Returns whether the payment was applied.
func (s *Service) ApplyStarsPayment(ctx context.Context, telegramID int64, stars int, chargeID, payload string) (bool, error) {
	if stars <= 0 || chargeID == "" {
		return false, ErrInvalidAmount
	}

	user, err := s.ensureTelegramUser(ctx, telegramID)
	if err != nil {
		return false, err
	}

	amount := s.AmountForStars(stars)

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return false, err
	}

	existing, err := s.repo.GetTransactionByExternalID(ctx, chargeID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return false, err
	}
	if existing != nil {
		s.repo.Rollback(tx)
		s.logger.Warnf("Повторная доставка платежа %s, пропускаем", chargeID)
		return false, nil
	}

	ledger := &models.Transaction{
		UserID:      user.ID,
		Type:        models.TxTypeStarsTopup,
		Amount:      amount,
		Description: fmt.Sprintf("Пополнение через Telegram Stars (%d XTR)", stars),
		Status:      models.TxStatusCompleted,
		ExternalID:  &chargeID,
	}

	card := s.pickTargetCard(ctx, user.ID)
	if card != nil {
		ledger.CardID = &card.ID
	}

	if err := s.repo.CreateTransaction(ctx, ledger, tx); err != nil {
		s.repo.Rollback(tx)
		return false, err
	}
	if card != nil {
		if err := s.reconcileCard(ctx, card.ID, tx); err != nil {
			s.repo.Rollback(tx)
			return false, err
		}
	}

	if reqID := parseInvoicePayload(payload); reqID > 0 {
		req, err := s.repo.GetPaymentRequest(ctx, reqID)
		if err != nil {
			s.repo.Rollback(tx)
			return false, err
		}
		if req != nil && req.Status == models.RequestStatusPending {
			if err := s.repo.UpdatePaymentRequestStatus(ctx, req.ID, models.RequestStatusPaid, tx); err != nil {
				s.repo.Rollback(tx)
				return false, err
			}
		}
	}

	if err := s.repo.Commit(tx); err != nil {
		return false, err
	}

	s.logger.Infof("Зачислено %.2f RUB пользователю %d (платёж %s)", amount, user.ID, chargeID)
	return true, nil
}

// parseInvoicePayload extracts the payment request id from an invoice
// payload; zero for anything malformed or foreign.
func parseInvoicePayload(payload string) int64 {
	if !strings.HasPrefix(payload, invoicePayloadPrefix) {
		return 0
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(payload, invoicePayloadPrefix), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// DecidePaymentRequest finalizes a manual top-up request: approve
// credits the balance through the ledger, reject only flips the status.
// Only a pending request can be decided.
func (s *Service) DecidePaymentRequest(ctx context.Context, requestID int64, approve bool) (*models.PaymentRequest, error) {
	req, err := s.repo.GetPaymentRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	if !approve {
		if err := s.repo.UpdatePaymentRequestStatus(ctx, req.ID, models.RequestStatusRejected, nil); err != nil {
			return nil, err
		}
		req.Status = models.RequestStatusRejected
		return req, nil
	}

	externalID := fmt.Sprintf("payreq:%d", req.ID)

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetTransactionByExternalID(ctx, externalID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if existing != nil {
		s.repo.Rollback(tx)
		return nil, ErrAlreadyProcessed
	}

	if err := s.repo.UpdatePaymentRequestStatus(ctx, req.ID, models.RequestStatusPaid, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	ledger := &models.Transaction{
		UserID:      req.UserID,
		Type:        models.TxTypeStarsTopup,
		Amount:      req.AmountRub,
		Description: fmt.Sprintf("Пополнение по заявке #%d", req.ID),
		Status:      models.TxStatusCompleted,
		ExternalID:  &externalID,
	}
	card := s.pickTargetCard(ctx, req.UserID)
	if card != nil {
		ledger.CardID = &card.ID
	}

	if err := s.repo.CreateTransaction(ctx, ledger, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if card != nil {
		if err := s.reconcileCard(ctx, card.ID, tx); err != nil {
			s.repo.Rollback(tx)
			return nil, err
		}
	}
	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	req.Status = models.RequestStatusPaid
	return req, nil
}

// ensureTelegramUser returns the user for a Telegram id, creating a
// bare record on first contact.
func (s *Service) ensureTelegramUser(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{TelegramID: telegramID}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Infof("Создан пользователь для telegram_id %d", telegramID)
	return user, nil
}

// pickTargetCard chooses the card a top-up lands on: the oldest active
// card, falling back to the oldest card of any status. Nil when the
// user has no cards yet; the ledger row is then recorded without a
// card and bound to the next card the user issues (see IssueCard).
func (s *Service) pickTargetCard(ctx context.Context, userID int64) *models.Card {
	cards, err := s.repo.GetCardsByUser(ctx, userID)
	if err != nil || len(cards) == 0 {
		return nil
	}
	for i := range cards {
		if cards[i].Status == models.CardStatusActive {
			return &cards[i]
		}
	}
	return &cards[0]
}
