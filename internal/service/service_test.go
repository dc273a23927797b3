package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/maximzayviy-pixel/tgwallet/config"
	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"github.com/maximzayviy-pixel/tgwallet/utils"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *fakeRepo, *recordingMailer, *syncRunner) {
	t.Helper()
	repo := newFakeRepo()
	mailer := &recordingMailer{}
	runner := &syncRunner{}
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		StarsPerRub:     2,
		CardBIN:         "220070",
		MaxCardsPerUser: 3,
	}
	svc := NewService(repo, cfg, mailer, runner, utils.InitLogger())
	return svc, repo, mailer, runner
}

// seedUser creates a user directly in the fake.
func seedUser(t *testing.T, repo *fakeRepo, telegramID int64) *models.User {
	t.Helper()
	user := &models.User{TelegramID: telegramID, Email: fmt.Sprintf("user%d@example.com", telegramID)}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedActiveCard issues and activates a card for the user.
func seedActiveCard(t *testing.T, svc *Service, userID int64) *models.Card {
	t.Helper()
	card, err := svc.IssueCard(context.Background(), userID, "TEST HOLDER")
	if err != nil {
		t.Fatalf("issue card: %v", err)
	}
	card, err = svc.ActivateCard(context.Background(), userID, card.ID)
	if err != nil {
		t.Fatalf("activate card: %v", err)
	}
	return card
}

// fakeRepo is an in-memory Repository with snapshot-based transaction
// semantics: Begin copies the state, Rollback restores it.
type fakeRepo struct {
	users    []models.User
	cards    []models.Card
	txs      []models.Transaction
	links    []models.PaymentLink
	requests []models.PaymentRequest

	nextUserID int64
	nextCardID int64
	nextTxID   int64
	nextReqID  int64

	snapshot *fakeRepo

	// failure injection
	failBalanceUpdateFor map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{failBalanceUpdateFor: map[int64]bool{}}
}

func (f *fakeRepo) clone() *fakeRepo {
	c := &fakeRepo{
		users:                append([]models.User(nil), f.users...),
		cards:                append([]models.Card(nil), f.cards...),
		txs:                  append([]models.Transaction(nil), f.txs...),
		links:                append([]models.PaymentLink(nil), f.links...),
		requests:             append([]models.PaymentRequest(nil), f.requests...),
		nextUserID:           f.nextUserID,
		nextCardID:           f.nextCardID,
		nextTxID:             f.nextTxID,
		nextReqID:            f.nextReqID,
		failBalanceUpdateFor: f.failBalanceUpdateFor,
	}
	return c
}

func (f *fakeRepo) restore(from *fakeRepo) {
	f.users = from.users
	f.cards = from.cards
	f.txs = from.txs
	f.links = from.links
	f.requests = from.requests
	f.nextUserID = from.nextUserID
	f.nextCardID = from.nextCardID
	f.nextTxID = from.nextTxID
	f.nextReqID = from.nextReqID
}

func (f *fakeRepo) BeginTransaction(ctx context.Context) (*gorm.DB, error) {
	f.snapshot = f.clone()
	return nil, nil
}

func (f *fakeRepo) Commit(tx *gorm.DB) error {
	f.snapshot = nil
	return nil
}

func (f *fakeRepo) Rollback(tx *gorm.DB) {
	if f.snapshot != nil {
		f.restore(f.snapshot)
		f.snapshot = nil
	}
}

func (f *fakeRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	for i := range f.users {
		if f.users[i].TelegramID == telegramID && telegramID != 0 {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Email == email && email != "" {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].VerifyToken == token && token != "" {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *models.User) error {
	f.nextUserID++
	user.ID = f.nextUserID
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return fmt.Errorf("user %d not found", user.ID)
}

func (f *fakeRepo) GetCard(ctx context.Context, id int64) (*models.Card, error) {
	for i := range f.cards {
		if f.cards[i].ID == id {
			c := f.cards[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetCardByNumber(ctx context.Context, number string) (*models.Card, error) {
	for i := range f.cards {
		if f.cards[i].CardNumber == number {
			c := f.cards[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetCardsByUser(ctx context.Context, userID int64) ([]models.Card, error) {
	var out []models.Card
	for i := range f.cards {
		if f.cards[i].UserID == userID {
			out = append(out, f.cards[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) CountCardsByUser(ctx context.Context, userID int64, tx *gorm.DB) (int64, error) {
	var n int64
	for i := range f.cards {
		if f.cards[i].UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateCard(ctx context.Context, card *models.Card, tx *gorm.DB) error {
	f.nextCardID++
	card.ID = f.nextCardID
	f.cards = append(f.cards, *card)
	return nil
}

func (f *fakeRepo) UpdateCardStatus(ctx context.Context, id int64, status string) error {
	for i := range f.cards {
		if f.cards[i].ID == id {
			f.cards[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("card %d not found", id)
}

func (f *fakeRepo) UpdateCardBalance(ctx context.Context, id int64, balance float64, tx *gorm.DB) error {
	if f.failBalanceUpdateFor[id] {
		return fmt.Errorf("injected balance update failure for card %d", id)
	}
	for i := range f.cards {
		if f.cards[i].ID == id {
			f.cards[i].Balance = balance
			return nil
		}
	}
	return fmt.Errorf("card %d not found", id)
}

func (f *fakeRepo) GetTransactionByExternalID(ctx context.Context, externalID string, tx *gorm.DB) (*models.Transaction, error) {
	for i := range f.txs {
		if f.txs[i].ExternalID != nil && *f.txs[i].ExternalID == externalID {
			t := f.txs[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateTransaction(ctx context.Context, t *models.Transaction, tx *gorm.DB) error {
	f.nextTxID++
	t.ID = f.nextTxID
	f.txs = append(f.txs, *t)
	return nil
}

func (f *fakeRepo) GetTransactionsByUser(ctx context.Context, userID int64, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	for i := range f.txs {
		if f.txs[i].UserID == userID {
			out = append(out, f.txs[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) AttachOrphanTransactions(ctx context.Context, userID, cardID int64, tx *gorm.DB) (int64, error) {
	var n int64
	for i := range f.txs {
		if f.txs[i].UserID == userID && f.txs[i].CardID == nil {
			id := cardID
			f.txs[i].CardID = &id
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SumCompletedByCard(ctx context.Context, cardID int64, tx *gorm.DB) (float64, error) {
	var sum float64
	for i := range f.txs {
		t := f.txs[i]
		if t.CardID != nil && *t.CardID == cardID && t.Status == models.TxStatusCompleted {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (f *fakeRepo) CreatePaymentLink(ctx context.Context, link *models.PaymentLink) error {
	f.links = append(f.links, *link)
	return nil
}

func (f *fakeRepo) GetPaymentLink(ctx context.Context, id string) (*models.PaymentLink, error) {
	for i := range f.links {
		if f.links[i].ID == id {
			l := f.links[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdatePaymentLinkStatus(ctx context.Context, id, from, to string) (bool, error) {
	for i := range f.links {
		if f.links[i].ID == id && f.links[i].Status == from {
			f.links[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ExpireOverdueLinks(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for i := range f.links {
		if f.links[i].Status == models.LinkStatusPending && f.links[i].ExpiresAt.Before(now) {
			f.links[i].Status = models.LinkStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreatePaymentRequest(ctx context.Context, req *models.PaymentRequest) error {
	f.nextReqID++
	req.ID = f.nextReqID
	f.requests = append(f.requests, *req)
	return nil
}

func (f *fakeRepo) GetPaymentRequest(ctx context.Context, id int64) (*models.PaymentRequest, error) {
	for i := range f.requests {
		if f.requests[i].ID == id {
			r := f.requests[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdatePaymentRequestStatus(ctx context.Context, id int64, status string, tx *gorm.DB) error {
	for i := range f.requests {
		if f.requests[i].ID == id {
			f.requests[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("payment request %d not found", id)
}

// setLinkExpiry rewrites a stored link's deadline, for expiry tests.
func (f *fakeRepo) setLinkExpiry(id string, at time.Time) {
	for i := range f.links {
		if f.links[i].ID == id {
			f.links[i].ExpiresAt = at
		}
	}
}

// syncRunner executes enqueued tasks immediately.
type syncRunner struct {
	names []string
}

func (r *syncRunner) Enqueue(name string, fn func(ctx context.Context) error) {
	r.names = append(r.names, name)
	_ = fn(context.Background())
}

// recordingMailer captures verification mail instead of sending it.
type recordingMailer struct {
	to     []string
	tokens []string
}

func (m *recordingMailer) SendVerification(to, token string) error {
	m.to = append(m.to, to)
	m.tokens = append(m.tokens, token)
	return nil
}
