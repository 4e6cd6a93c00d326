package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-cashback/internal/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/customer"
	modelledger "github.com/talx-hub/gopher-cashback/internal/model/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
	"github.com/talx-hub/gopher-cashback/internal/repo/internal/db"
)

var errWalletNotFound = errors.New("wallet not found")

type LedgerRepository struct {
	DB
}

func NewLedgerRepository(pool connectionPool, log *slog.Logger) *LedgerRepository {
	return &LedgerRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

// CommitOrder stores the order, its transactions and the new wallet balance in one TX.
// The wallet row stays locked until commit. A second commit for the same remote
// order returns the stored order and leaves the balance alone.
func (r *LedgerRepository) CommitOrder(ctx context.Context, c order.Commit) (order.Order, error) {
	if c.RemoteOrderID == "" {
		return order.Order{}, errors.New("remote order id must be not empty")
	}

	commitLogic := func(ctx context.Context, tx connectionPool) (order.Order, error) {
		queries := db.New(tx)
		balance, err := queries.LockWalletBalance(ctx, c.WalletID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.Order{}, fmt.Errorf("wallet %s: %w", c.WalletID, errWalletNotFound)
			}
			return order.Order{}, fmt.Errorf("failed to lock wallet %s: %w", c.WalletID, err)
		}

		o := order.Order{
			ID:              uuid.NewString(),
			RemoteOrderID:   c.RemoteOrderID,
			CustomerID:      c.CustomerID,
			AppliedCashback: c.AppliedCashback,
			NetAmount:       c.NetAmount,
		}
		o.CreatedAt, err = queries.InsertOrder(ctx, db.InsertOrderParams{
			ID:              o.ID,
			SalesOrderID:    o.RemoteOrderID,
			CustomerID:      o.CustomerID,
			AppliedCashback: o.AppliedCashback.Cents(),
			Amount:          o.NetAmount.Cents(),
		})
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.LogAttrs(ctx,
				slog.LevelWarn,
				"order already committed",
				slog.String("sales_order_id", c.RemoteOrderID),
			)
			return findOrder(ctx, queries, c.RemoteOrderID)
		}
		if err != nil {
			return order.Order{}, fmt.Errorf("failed to insert order %s: %w", c.RemoteOrderID, err)
		}

		updated, err := ledger.Apply(model.Amount(balance), c.Transactions)
		if err != nil {
			return order.Order{}, fmt.Errorf("failed to apply transactions to wallet %s: %w",
				c.WalletID, err)
		}

		o.Transactions = make([]modelledger.Transaction, len(c.Transactions))
		for i, t := range c.Transactions {
			t.ID = uuid.NewString()
			t.WalletID = c.WalletID
			t.OrderID = o.ID
			t.CreatedAt, err = queries.InsertTransaction(ctx, db.InsertTransactionParams{
				ID:       t.ID,
				WalletID: t.WalletID,
				OrderID:  t.OrderID,
				Type:     string(t.Type),
				Amount:   t.Amount.Cents(),
			})
			if err != nil {
				return order.Order{}, fmt.Errorf("failed to insert %s transaction: %w", t.Type, err)
			}
			o.Transactions[i] = t
		}

		if _, err = queries.UpdateWalletBalance(ctx, c.WalletID, updated.Cents()); err != nil {
			return order.Order{}, fmt.Errorf("failed to update wallet %s balance: %w", c.WalletID, err)
		}

		r.log.LogAttrs(ctx,
			slog.LevelInfo,
			"balance updated",
			slog.String("wallet_id", c.WalletID),
			slog.String("balance", updated.String()),
		)
		return o, nil
	}

	commitWithTX := func() (order.Order, error) {
		return WithTX(ctx, r.pool, r.log, commitLogic)
	}

	return WithRetry(ctx, commitWithTX) //nolint: wrapcheck // error from wrapped function
}

func findOrder(ctx context.Context, queries *db.Queries, salesOrderID string) (order.Order, error) {
	row, err := queries.FindOrderBySalesOrderID(ctx, salesOrderID)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to find order %s: %w", salesOrderID, err)
	}
	txRows, err := queries.ListTransactionsByOrder(ctx, row.ID)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to list transactions of order %s: %w", row.ID, err)
	}
	return order.Order{
		CreatedAt:       row.CreatedAt,
		ID:              row.ID,
		RemoteOrderID:   row.SalesOrderID,
		CustomerID:      row.CustomerID,
		AppliedCashback: model.Amount(row.AppliedCashback),
		NetAmount:       model.Amount(row.Amount),
		Transactions:    toTransactions(txRows),
	}, nil
}

func (r *LedgerRepository) GetWallet(ctx context.Context, walletID string) (customer.Wallet, error) {
	getLogic := func() (customer.Wallet, error) {
		row, err := db.New(r.pool).GetWallet(ctx, walletID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return customer.Wallet{}, fmt.Errorf("wallet %s: %w", walletID, errWalletNotFound)
			}
			return customer.Wallet{}, fmt.Errorf("failed to get wallet %s: %w", walletID, err)
		}
		return customer.Wallet{ID: row.ID, Balance: model.Amount(row.Balance)}, nil
	}

	return WithRetry(ctx, getLogic) //nolint: wrapcheck // error from wrapped function
}

// ListTransactions returns the wallet history in insertion order.
func (r *LedgerRepository) ListTransactions(ctx context.Context, walletID string,
) ([]modelledger.Transaction, error) {
	listLogic := func() ([]modelledger.Transaction, error) {
		rows, err := db.New(r.pool).ListTransactionsByWallet(ctx, walletID)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions of wallet %s: %w", walletID, err)
		}
		return toTransactions(rows), nil
	}

	return WithRetry(ctx, listLogic) //nolint: wrapcheck // error from wrapped function
}

func toTransactions(rows []db.TransactionRow) []modelledger.Transaction {
	txs := make([]modelledger.Transaction, len(rows))
	for i, row := range rows {
		txs[i] = modelledger.Transaction{
			CreatedAt: row.CreatedAt,
			ID:        row.ID,
			WalletID:  row.WalletID,
			OrderID:   row.OrderID,
			Type:      modelledger.TransactionType(row.Type),
			Amount:    model.Amount(row.Amount),
		}
	}
	return txs
}
