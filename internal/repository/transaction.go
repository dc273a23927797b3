package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetTransactionByExternalID(ctx context.Context, externalID string, tx *gorm.DB) (*models.Transaction, error) {
	var t models.Transaction
	err := r.conn(tx).WithContext(ctx).
		First(&t, "external_id = ?", externalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction by external id: %w", err)
	}
	return &t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t *models.Transaction, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(t).Error
}

func (r *Repository) GetTransactionsByUser(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	return txs, nil
}

// AttachOrphanTransactions binds the user's card-less ledger rows
// (payments received before any card existed) to the given card.
func (r *Repository) AttachOrphanTransactions(ctx context.Context, userID, cardID int64, tx *gorm.DB) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND card_id IS NULL", userID).
		Update("card_id", cardID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to attach orphan transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SumCompletedByCard returns the signed sum of all completed ledger rows
// for a card. Amounts are stored signed, so this is the card balance.
func (r *Repository) SumCompletedByCard(ctx context.Context, cardID int64, tx *gorm.DB) (float64, error) {
	var sum float64
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("card_id = ? AND status = ?", cardID, models.TxStatusCompleted).
		Select("COALESCE(SUM(amount),0)").Scan(&sum).Error
	return sum, err
}
