package service

import (
	"context"
	"time"

	"github.com/maximzayviy-pixel/tgwallet/config"
	"github.com/maximzayviy-pixel/tgwallet/internal/models"
	"github.com/maximzayviy-pixel/tgwallet/utils"
	"gorm.io/gorm"
)

type Service struct {
	repo   Repository
	logger *utils.Logger
	config *config.Config
	mailer Mailer
	tasks  TaskRunner
}

type Repository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerifyToken(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error

	GetCard(ctx context.Context, id int64) (*models.Card, error)
	GetCardByNumber(ctx context.Context, number string) (*models.Card, error)
	GetCardsByUser(ctx context.Context, userID int64) ([]models.Card, error)
	CountCardsByUser(ctx context.Context, userID int64, tx *gorm.DB) (int64, error)
	CreateCard(ctx context.Context, card *models.Card, tx *gorm.DB) error
	UpdateCardStatus(ctx context.Context, id int64, status string) error
	UpdateCardBalance(ctx context.Context, id int64, balance float64, tx *gorm.DB) error

	GetTransactionByExternalID(ctx context.Context, externalID string, tx *gorm.DB) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction, tx *gorm.DB) error
	GetTransactionsByUser(ctx context.Context, userID int64, limit int) ([]models.Transaction, error)
	SumCompletedByCard(ctx context.Context, cardID int64, tx *gorm.DB) (float64, error)
	AttachOrphanTransactions(ctx context.Context, userID, cardID int64, tx *gorm.DB) (int64, error)

	CreatePaymentLink(ctx context.Context, link *models.PaymentLink) error
	GetPaymentLink(ctx context.Context, id string) (*models.PaymentLink, error)
	UpdatePaymentLinkStatus(ctx context.Context, id, from, to string) (bool, error)
	ExpireOverdueLinks(ctx context.Context, now time.Time) (int64, error)

	CreatePaymentRequest(ctx context.Context, req *models.PaymentRequest) error
	GetPaymentRequest(ctx context.Context, id int64) (*models.PaymentRequest, error)
	UpdatePaymentRequestStatus(ctx context.Context, id int64, status string, tx *gorm.DB) error

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

// Mailer delivers transactional mail. Implemented by utils/email.
type Mailer interface {
	SendVerification(to, token string) error
}

// TaskRunner schedules a side effect for retried background execution.
// Implemented by internal/queue.
type TaskRunner interface {
	Enqueue(name string, fn func(ctx context.Context) error)
}

func NewService(repo Repository, cfg *config.Config, mailer Mailer, tasks TaskRunner, logger *utils.Logger) *Service {
	return &Service{
		repo:   repo,
		config: cfg,
		mailer: mailer,
		tasks:  tasks,
		logger: logger,
	}
}

// reconcileCard recomputes a card balance from its completed ledger
// rows and overwrites the stored balance. Must run inside the same
// database transaction as the ledger insert that triggered it.
func (s *Service) reconcileCard(ctx context.Context, cardID int64, tx *gorm.DB) error {
	sum, err := s.repo.SumCompletedByCard(ctx, cardID, tx)
	if err != nil {
		return err
	}
	return s.repo.UpdateCardBalance(ctx, cardID, sum, tx)
}
