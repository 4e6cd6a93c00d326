package serviceerrs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCashbackDisabled         = errors.New("cashback is not active")
	ErrPartnerNotFound          = errors.New("business partner not found")
	ErrInsufficientFunds        = errors.New("applied cashback is greater than customer wallet balance")
	ErrRedemptionLimitExceeded  = errors.New("cashback redemption limit exceeded")
	ErrNotConfigured            = errors.New("cashback parameters are not configured")
	ErrCustomerNotFound         = errors.New("customer not found")
	ErrRemoteOrderFailed        = errors.New("remote order creation failed")
	ErrLedgerCommitFailed       = errors.New("ledger commit failed after remote order creation")
	ErrOrderPending             = errors.New("order creation is still in progress")
	ErrInvalidOrder             = errors.New("invalid order")
	ErrWalletBusy               = errors.New("wallet is locked by another order")
	ErrTokenExpired             = errors.New("token expired")
	ErrSemaphoreTimeoutExceeded = errors.New("semaphore acquire timeout exceeded")
)

type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e *TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// RemoteOrderError means the ERP did not create the order. Nothing local was written.
type RemoteOrderError struct {
	Err error
}

func (e *RemoteOrderError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRemoteOrderFailed, e.Err)
}

func (e *RemoteOrderError) Unwrap() []error {
	return []error{ErrRemoteOrderFailed, e.Err}
}

// LedgerCommitError means the ERP order exists but has no local mirror.
type LedgerCommitError struct {
	Err           error
	RemoteOrderID string
	WalletID      string
}

func (e *LedgerCommitError) Error() string {
	return fmt.Sprintf("%s: remote order %s, wallet %s: %v",
		ErrLedgerCommitFailed, e.RemoteOrderID, e.WalletID, e.Err)
}

func (e *LedgerCommitError) Unwrap() []error {
	return []error{ErrLedgerCommitFailed, e.Err}
}
