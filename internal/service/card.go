package service

import (
	"context"
	"fmt"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"github.com/maximzayviy-pixel/tgwallet/utils"
)

// IssueCard mints a new virtual card for the user. The card limit
// check, the card row and its card_creation ledger row are written in
// one database transaction.
func (s *Service) IssueCard(ctx context.Context, userID int64, holderName string) (*models.Card, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	number, err := s.generateUniqueCardNumber(ctx)
	if err != nil {
		return nil, err
	}
	cvv, err := utils.GenerateCVV()
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		UserID:     userID,
		CardNumber: number,
		HolderName: holderName,
		ExpiryDate: utils.GenerateExpiryDate(),
		CVV:        cvv,
		Balance:    0,
		Status:     models.CardStatusAwaitingActivation,
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountCardsByUser(ctx, userID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if count >= int64(s.config.MaxCardsPerUser) {
		s.repo.Rollback(tx)
		return nil, ErrCardLimit
	}

	if err := s.repo.CreateCard(ctx, card, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	ledger := &models.Transaction{
		CardID:      &card.ID,
		UserID:      userID,
		Type:        models.TxTypeCardCreation,
		Amount:      0,
		Description: "Выпуск виртуальной карты",
		Status:      models.TxStatusCompleted,
	}
	if err := s.repo.CreateTransaction(ctx, ledger, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	// Payments received before the user had any card were recorded
	// without one; bind them to this card and credit its balance.
	attached, err := s.repo.AttachOrphanTransactions(ctx, userID, card.ID, tx)
	if err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if attached > 0 {
		if err := s.reconcileCard(ctx, card.ID, tx); err != nil {
			s.repo.Rollback(tx)
			return nil, err
		}
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	s.logger.Infof("Выпущена карта %s для пользователя %d", utils.MaskCardNumber(card.CardNumber), userID)
	if attached > 0 {
		s.logger.Infof("Привязано %d ожидающих операций к карте %s", attached, utils.MaskCardNumber(card.CardNumber))
		return s.repo.GetCard(ctx, card.ID)
	}
	return card, nil
}

func (s *Service) generateUniqueCardNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		number, err := utils.GenerateCardNumber(s.config.CardBIN, 16)
		if err != nil {
			return "", err
		}
		existing, err := s.repo.GetCardByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return number, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique card number")
}

// ActivateCard transitions awaiting_activation -> active.
func (s *Service) ActivateCard(ctx context.Context, userID, cardID int64) (*models.Card, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID != userID {
		return nil, ErrCardNotFound
	}
	if card.Status == models.CardStatusActive {
		return card, nil
	}
	if card.Status != models.CardStatusAwaitingActivation {
		return nil, ErrCardInactive
	}

	if err := s.repo.UpdateCardStatus(ctx, card.ID, models.CardStatusActive); err != nil {
		return nil, err
	}
	card.Status = models.CardStatusActive
	return card, nil
}

func (s *Service) ListCards(ctx context.Context, userID int64) ([]models.Card, error) {
	return s.repo.GetCardsByUser(ctx, userID)
}

// GetCardForUser fetches a card and checks ownership.
func (s *Service) GetCardForUser(ctx context.Context, userID, cardID int64) (*models.Card, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.UserID != userID {
		return nil, ErrCardNotFound
	}
	return card, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	return s.repo.GetTransactionsByUser(ctx, userID, limit)
}

// ListCardsByTelegramID returns the cards of a Telegram user with
// masked numbers; meant for partner integrations.
func (s *Service) ListCardsByTelegramID(ctx context.Context, telegramID int64) ([]models.Card, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	cards, err := s.repo.GetCardsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i].CardNumber = utils.MaskCardNumber(cards[i].CardNumber)
	}
	return cards, nil
}

// TopupCard credits a card: one completed ledger row plus the balance
// reconciliation, atomically.
func (s *Service) TopupCard(ctx context.Context, cardID int64, amount float64, description string) (*models.Card, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}
	if card.Status != models.CardStatusActive {
		return nil, ErrCardInactive
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	ledger := &models.Transaction{
		CardID:      &card.ID,
		UserID:      card.UserID,
		Type:        models.TxTypeTopup,
		Amount:      amount,
		Description: description,
		Status:      models.TxStatusCompleted,
	}
	if err := s.repo.CreateTransaction(ctx, ledger, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if err := s.reconcileCard(ctx, card.ID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	return s.repo.GetCard(ctx, cardID)
}

// ReconcileUserCards recomputes the balance of every card the user
// owns from the ledger. Idempotent on a static ledger.
func (s *Service) ReconcileUserCards(ctx context.Context, userID int64) error {
	cards, err := s.repo.GetCardsByUser(ctx, userID)
	if err != nil {
		return err
	}
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	for _, card := range cards {
		if err := s.reconcileCard(ctx, card.ID, tx); err != nil {
			s.repo.Rollback(tx)
			return err
		}
	}
	return s.repo.Commit(tx)
}
