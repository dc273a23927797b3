package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	ErrCardNotFound      = errors.New("card not found")
	ErrCardInactive      = errors.New("card is not active")
	ErrCardLimit         = errors.New("card limit reached")
	ErrSameCard          = errors.New("sender and recipient are the same card")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")

	ErrLinkNotFound      = errors.New("payment link not found")
	ErrLinkExpired       = errors.New("payment link expired")
	ErrLinkClosed        = errors.New("payment link already finalized")
	ErrInvalidLinkStatus = errors.New("invalid payment link status")
	ErrRequestNotFound   = errors.New("payment request not found")
	ErrAlreadyProcessed  = errors.New("already processed")
)
