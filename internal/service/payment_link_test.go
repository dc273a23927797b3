package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maximzayviy-pixel/tgwallet/internal/models"
)

func TestCreatePaymentLinkDefaults(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	link, err := svc.CreatePaymentLink(context.Background(), 1, 250, "", "Оплата заказа", "", "", 0)
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}
	if link.Currency != "RUB" {
		t.Errorf("currency = %s, want RUB", link.Currency)
	}
	if link.Status != models.LinkStatusPending {
		t.Errorf("status = %s, want pending", link.Status)
	}
	ttl := time.Until(link.ExpiresAt)
	if ttl < 59*time.Minute || ttl > 61*time.Minute {
		t.Errorf("default TTL should be about an hour, got %s", ttl)
	}
}

func TestCreatePaymentLinkValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.CreatePaymentLink(context.Background(), 1, 0, "RUB", "desc", "", "", 60); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.CreatePaymentLink(context.Background(), 1, 100, "RUB", "", "", "", 60); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("empty description: expected ErrInvalidAmount, got %v", err)
	}
}

func TestGetPaymentLinkExpiry(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	link, err := svc.CreatePaymentLink(context.Background(), 1, 100, "RUB", "desc", "", "", 3600)
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}

	if _, err := svc.GetPaymentLink(context.Background(), link.ID); err != nil {
		t.Fatalf("fresh link must be readable: %v", err)
	}

	repo.setLinkExpiry(link.ID, time.Now().Add(-time.Minute))
	if _, err := svc.GetPaymentLink(context.Background(), link.ID); !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("expected ErrLinkExpired, got %v", err)
	}

	// The sweep already flipped it; a repeat read stays gone.
	if _, err := svc.GetPaymentLink(context.Background(), link.ID); !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("expected ErrLinkExpired on repeat read, got %v", err)
	}
}

func TestFinalizePaymentLink(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	link, err := svc.CreatePaymentLink(context.Background(), 1, 100, "RUB", "desc", "", "", 3600)
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}

	done, err := svc.FinalizePaymentLink(context.Background(), link.ID, models.LinkStatusCompleted)
	if err != nil {
		t.Fatalf("FinalizePaymentLink: %v", err)
	}
	if done.Status != models.LinkStatusCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}

	// A completed link never transitions again.
	if _, err := svc.FinalizePaymentLink(context.Background(), link.ID, models.LinkStatusFailed); !errors.Is(err, ErrLinkClosed) {
		t.Fatalf("expected ErrLinkClosed, got %v", err)
	}

	// And it still reads back as completed, not pending.
	got, err := svc.GetPaymentLink(context.Background(), link.ID)
	if err != nil {
		t.Fatalf("GetPaymentLink: %v", err)
	}
	if got.Status != models.LinkStatusCompleted {
		t.Fatalf("completed link regressed to %s", got.Status)
	}
}

func TestFinalizeExpiredLink(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	link, err := svc.CreatePaymentLink(context.Background(), 1, 100, "RUB", "desc", "", "", 3600)
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}
	repo.setLinkExpiry(link.ID, time.Now().Add(-time.Minute))

	if _, err := svc.FinalizePaymentLink(context.Background(), link.ID, models.LinkStatusCompleted); !errors.Is(err, ErrLinkExpired) {
		t.Fatalf("expected ErrLinkExpired, got %v", err)
	}
}

func TestExpireOverdueLinksSweep(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	fresh, _ := svc.CreatePaymentLink(context.Background(), 1, 100, "RUB", "desc", "", "", 3600)
	stale, _ := svc.CreatePaymentLink(context.Background(), 1, 100, "RUB", "desc", "", "", 3600)
	repo.setLinkExpiry(stale.ID, time.Now().Add(-time.Minute))

	n, err := svc.ExpireOverdueLinks(context.Background())
	if err != nil {
		t.Fatalf("ExpireOverdueLinks: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired link, got %d", n)
	}

	if _, err := svc.GetPaymentLink(context.Background(), fresh.ID); err != nil {
		t.Fatalf("fresh link must survive the sweep: %v", err)
	}
}
