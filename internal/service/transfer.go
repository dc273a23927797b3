package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/maximzayviy-pixel/tgwallet/internal/metrics"
	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"github.com/maximzayviy-pixel/tgwallet/utils"
)

// TransferResult describes a completed card-to-card transfer.
type TransferResult struct {
	ExternalID       string  `json:"external_id"`
	Amount           float64 `json:"amount"`
	SenderBalance    float64 `json:"sender_balance"`
	RecipientBalance float64 `json:"recipient_balance"`
}

// Transfer moves funds between two cards. Both ledger rows and both
// balance updates are written in one database transaction; any failure
// rolls the whole transfer back.
func (s *Service) Transfer(ctx context.Context, fromCardID int64, toCardNumber string, amount float64, description string) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	sender, err := s.repo.GetCard(ctx, fromCardID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrCardNotFound
	}
	if sender.Status != models.CardStatusActive {
		return nil, ErrCardInactive
	}
	if sender.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	recipient, err := s.repo.GetCardByNumber(ctx, toCardNumber)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrCardNotFound
	}
	if recipient.ID == sender.ID {
		return nil, ErrSameCard
	}
	if recipient.Status != models.CardStatusActive {
		return nil, ErrCardInactive
	}

	externalID := uuid.NewString()
	if description == "" {
		description = "Перевод между картами"
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}

	out := &models.Transaction{
		CardID:      &sender.ID,
		UserID:      sender.UserID,
		Type:        models.TxTypeTransferOut,
		Amount:      -amount,
		Description: description,
		Status:      models.TxStatusCompleted,
		ExternalID:  &externalID,
	}
	in := &models.Transaction{
		CardID:      &recipient.ID,
		UserID:      recipient.UserID,
		Type:        models.TxTypeTransferIn,
		Amount:      amount,
		Description: description,
		Status:      models.TxStatusCompleted,
		ExternalID:  &externalID,
	}

	if err := s.repo.CreateTransaction(ctx, out, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if err := s.repo.CreateTransaction(ctx, in, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if err := s.reconcileCard(ctx, sender.ID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}
	if err := s.reconcileCard(ctx, recipient.ID, tx); err != nil {
		s.repo.Rollback(tx)
		return nil, err
	}

	if err := s.repo.Commit(tx); err != nil {
		return nil, err
	}

	metrics.TransfersCompleted.Inc()
	s.logger.Infof("Перевод %.2f RUB с карты %s на карту %s",
		amount, utils.MaskCardNumber(sender.CardNumber), utils.MaskCardNumber(recipient.CardNumber))

	updatedSender, err := s.repo.GetCard(ctx, sender.ID)
	if err != nil {
		return nil, err
	}
	updatedRecipient, err := s.repo.GetCard(ctx, recipient.ID)
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		ExternalID:       externalID,
		Amount:           amount,
		SenderBalance:    updatedSender.Balance,
		RecipientBalance: updatedRecipient.Balance,
	}, nil
}
