package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreatePaymentLink(ctx context.Context, link *models.PaymentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *Repository) GetPaymentLink(ctx context.Context, id string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment link %s: %w", id, err)
	}
	return &link, nil
}

// UpdatePaymentLinkStatus transitions a link from one status to another.
// The expected current status is part of the WHERE clause, so a
// concurrent completion or expiry makes the losing update a no-op.
func (r *Repository) UpdatePaymentLinkStatus(ctx context.Context, id, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentLink{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update payment link status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ExpireOverdueLinks marks every pending link past its deadline as expired.
func (r *Repository) ExpireOverdueLinks(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentLink{}).
		Where("status = ? AND expires_at < ?", models.LinkStatusPending, now).
		Update("status", models.LinkStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire payment links: %w", res.Error)
	}
	return res.RowsAffected, nil
}
