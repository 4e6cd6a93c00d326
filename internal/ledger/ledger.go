// Package ledger holds the wallet balance arithmetic.
package ledger

import (
	"fmt"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/ledger"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
)

// Delta is the sum of credits minus the sum of redemptions.
func Delta(txs []ledger.Transaction) (model.Amount, error) {
	var delta model.Amount
	for _, tx := range txs {
		if tx.Amount < 0 {
			return 0, fmt.Errorf("negative amount %d in %s transaction", tx.Amount, tx.Type)
		}
		switch tx.Type {
		case ledger.TypeCredit:
			delta += tx.Amount
		case ledger.TypeRedemption:
			delta -= tx.Amount
		default:
			return 0, fmt.Errorf("unknown transaction type %q", tx.Type)
		}
	}
	return delta, nil
}

// Apply returns the balance after txs. The balance never goes below zero.
func Apply(current model.Amount, txs []ledger.Transaction) (model.Amount, error) {
	delta, err := Delta(txs)
	if err != nil {
		return current, err
	}
	updated := current + delta
	if updated < 0 {
		return current, fmt.Errorf("balance %s, delta %s: %w",
			current, delta, serviceerrs.ErrInsufficientFunds)
	}
	return updated, nil
}

// Build lists the transactions for an order: the redemption first, then the credit.
// Zero amounts produce no entry.
func Build(applied, earned model.Amount) []ledger.Transaction {
	txs := make([]ledger.Transaction, 0, 2)
	if applied > 0 {
		txs = append(txs, ledger.Transaction{Type: ledger.TypeRedemption, Amount: applied})
	}
	if earned > 0 {
		txs = append(txs, ledger.Transaction{Type: ledger.TypeCredit, Amount: earned})
	}
	return txs
}
