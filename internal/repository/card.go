package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetCard(ctx context.Context, id int64) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return &card, nil
}

func (r *Repository) GetCardByNumber(ctx context.Context, number string) (*models.Card, error) {
	var card models.Card
	err := r.db.WithContext(ctx).First(&card, "card_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card by number: %w", err)
	}
	return &card, nil
}

func (r *Repository) GetCardsByUser(ctx context.Context, userID int64) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user %d: %w", userID, err)
	}
	return cards, nil
}

func (r *Repository) CountCardsByUser(ctx context.Context, userID int64, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Card{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CreateCard(ctx context.Context, card *models.Card, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(card).Error
}

func (r *Repository) UpdateCardStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update card status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card %d not found", id)
	}
	return nil
}

func (r *Repository) UpdateCardBalance(ctx context.Context, id int64, balance float64, tx *gorm.DB) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Card{}).
		Where("id = ?", id).
		Update("balance", balance)
	if res.Error != nil {
		return fmt.Errorf("failed to update card balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card %d not found for balance update", id)
	}
	return nil
}
