package ledger

import (
	"time"

	"github.com/talx-hub/gopher-cashback/internal/model"
)

type TransactionType string

const (
	TypeRedemption TransactionType = "REDEMPTION"
	TypeCredit     TransactionType = "CREDIT"
)

// Transaction amounts are never negative, the sign comes from Type.
type Transaction struct {
	CreatedAt time.Time       `json:"created_at"`
	ID        string          `json:"id"`
	WalletID  string          `json:"wallet_id"`
	OrderID   string          `json:"order_id"`
	Type      TransactionType `json:"type"`
	Amount    model.Amount    `json:"amount"`
}
