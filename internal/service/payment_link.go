package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maximzayviy-pixel/tgwallet/internal/models"
)

const defaultLinkTTL = 3600 // seconds

// CreatePaymentLink records a short-lived payment intent for
// third-party checkout.
func (s *Service) CreatePaymentLink(ctx context.Context, userID int64, amount float64, currency, description, returnURL, webhookURL string, expiresIn int) (*models.PaymentLink, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = "RUB"
	}
	if expiresIn <= 0 {
		expiresIn = defaultLinkTTL
	}

	link := &models.PaymentLink{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		ReturnURL:   returnURL,
		WebhookURL:  webhookURL,
		Status:      models.LinkStatusPending,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	if err := s.repo.CreatePaymentLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// GetPaymentLink fetches a link; a pending link past its deadline is
// marked expired and reported as gone.
func (s *Service) GetPaymentLink(ctx context.Context, id string) (*models.PaymentLink, error) {
	link, err := s.repo.GetPaymentLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.Status == models.LinkStatusExpired {
		return nil, ErrLinkExpired
	}
	if link.Status == models.LinkStatusPending && time.Now().After(link.ExpiresAt) {
		if _, err := s.repo.UpdatePaymentLinkStatus(ctx, link.ID, models.LinkStatusPending, models.LinkStatusExpired); err != nil {
			s.logger.Errorf("Не удалось пометить ссылку %s истёкшей: %v", link.ID, err)
		}
		return nil, ErrLinkExpired
	}
	return link, nil
}

// FinalizePaymentLink applies an external payment callback. Only a
// pending, unexpired link can move to completed or failed; a completed
// link never transitions again.
func (s *Service) FinalizePaymentLink(ctx context.Context, id, status string) (*models.PaymentLink, error) {
	if status != models.LinkStatusCompleted && status != models.LinkStatusFailed {
		return nil, ErrInvalidLinkStatus
	}

	link, err := s.repo.GetPaymentLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.Status != models.LinkStatusPending {
		return nil, ErrLinkClosed
	}
	if time.Now().After(link.ExpiresAt) {
		return nil, ErrLinkExpired
	}

	// Status-guarded update: a concurrent finalize loses and sees
	// ErrLinkClosed instead of overwriting a terminal state.
	updated, err := s.repo.UpdatePaymentLinkStatus(ctx, id, models.LinkStatusPending, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrLinkClosed
	}

	link.Status = status
	return link, nil
}

// ExpireOverdueLinks is the cron sweep over pending links.
func (s *Service) ExpireOverdueLinks(ctx context.Context) (int64, error) {
	return s.repo.ExpireOverdueLinks(ctx, time.Now())
}
