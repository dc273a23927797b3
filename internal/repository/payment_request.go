package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreatePaymentRequest(ctx context.Context, req *models.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Repository) GetPaymentRequest(ctx context.Context, id int64) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment request %d: %w", id, err)
	}
	return &req, nil
}

func (r *Repository) UpdatePaymentRequestStatus(ctx context.Context, id int64, status string, tx *gorm.DB) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment request status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment request %d not found", id)
	}
	return nil
}
