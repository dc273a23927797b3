package models

import "time"

// Card statuses.
const (
	CardStatusAwaitingActivation = "awaiting_activation"
	CardStatusActive             = "active"
	CardStatusBlocked            = "blocked"
)

// Transaction types. Amounts are stored signed: debit types carry
// negative amounts, so a card balance is the plain sum of its
// completed rows.
const (
	TxTypeTopup        = "topup"
	TxTypeTransferIn   = "transfer_in"
	TxTypeTransferOut  = "transfer_out"
	TxTypeCardCreation = "card_creation"
	TxTypeStarsTopup   = "telegram_stars_topup"
	TxTypeWithdrawal   = "withdrawal"
)

// Transaction statuses.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Payment link statuses.
const (
	LinkStatusPending   = "pending"
	LinkStatusCompleted = "completed"
	LinkStatusFailed    = "failed"
	LinkStatusExpired   = "expired"
)

// Payment request statuses.
const (
	RequestStatusPending  = "pending"
	RequestStatusPaid     = "paid"
	RequestStatusRejected = "rejected"
)

type User struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	TelegramID    int64  `gorm:"index" json:"telegram_id"`
	Email         string `gorm:"index" json:"email"`
	PasswordHash  string `json:"-"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Username      string `json:"username"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`
	VerifyToken   string `json:"-"`

	Cards        []Card        `gorm:"foreignKey:UserID" json:"cards,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Card struct {
	ID         int64   `gorm:"primaryKey" json:"id"`
	UserID     int64   `gorm:"index" json:"user_id"`
	CardNumber string  `gorm:"uniqueIndex" json:"card_number"`
	HolderName string  `json:"holder_name"`
	ExpiryDate string  `json:"expiry_date"`
	CVV        string  `json:"-"`
	Balance    float64 `gorm:"default:0" json:"balance"`
	Status     string  `gorm:"default:awaiting_activation" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Transaction struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	CardID      *int64  `gorm:"index" json:"card_id,omitempty"`
	UserID      int64   `gorm:"index" json:"user_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Status      string  `gorm:"default:pending" json:"status"`
	// ExternalID is the idempotency key: the Telegram payment charge id
	// for Stars top-ups, a shared uuid for both legs of a transfer.
	ExternalID *string `gorm:"index" json:"external_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaymentLink struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	UserID      int64   `gorm:"index" json:"user_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `gorm:"default:RUB" json:"currency"`
	Description string  `json:"description"`
	ReturnURL   string  `json:"return_url"`
	WebhookURL  string  `json:"webhook_url"`
	Status      string  `gorm:"default:pending" json:"status"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentRequest is the intermediate record for a manual Stars top-up
// that an admin confirms or rejects from the bot chat.
type PaymentRequest struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	UserID      int64   `gorm:"index" json:"user_id"`
	TgID        int64   `json:"tg_id"`
	AmountRub   float64 `json:"amount_rub"`
	AmountStars int     `json:"amount_stars"`
	Status      string  `gorm:"default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
