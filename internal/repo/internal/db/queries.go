package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

const getParameters = `
SELECT is_cashback_active,
       cashback_redemption_limit::text,
       cashback_return_rate::text
FROM parameters
WHERE id = 1
`

const getParametersForUpdate = getParameters + `FOR UPDATE`

type ParametersRow struct {
	IsCashbackActive bool
	RedemptionLimit  string
	ReturnRate       string
}

func (q *Queries) GetParameters(ctx context.Context) (ParametersRow, error) {
	return q.scanParameters(ctx, getParameters)
}

func (q *Queries) GetParametersForUpdate(ctx context.Context) (ParametersRow, error) {
	return q.scanParameters(ctx, getParametersForUpdate)
}

func (q *Queries) scanParameters(ctx context.Context, query string) (ParametersRow, error) {
	var p ParametersRow
	err := q.db.QueryRow(ctx, query).Scan(
		&p.IsCashbackActive,
		&p.RedemptionLimit,
		&p.ReturnRate,
	)
	return p, err
}

const updateParameters = `
UPDATE parameters
SET is_cashback_active = $1,
    cashback_redemption_limit = $2::numeric,
    cashback_return_rate = $3::numeric,
    updated_at = now()
WHERE id = 1
`

func (q *Queries) UpdateParameters(ctx context.Context, arg ParametersRow) (int64, error) {
	tag, err := q.db.Exec(ctx, updateParameters,
		arg.IsCashbackActive,
		arg.RedemptionLimit,
		arg.ReturnRate,
	)
	return tag.RowsAffected(), err
}

const findCustomerByPartnerID = `
SELECT c.id::text, c.business_partner_id, w.id::text, w.balance
FROM customers c
JOIN wallets w ON w.customer_id = c.id
WHERE c.business_partner_id = $1
`

type CustomerRow struct {
	CustomerID string
	PartnerID  string
	WalletID   string
	Balance    int64
}

func (q *Queries) FindCustomerByPartnerID(ctx context.Context, partnerID string) (CustomerRow, error) {
	var c CustomerRow
	err := q.db.QueryRow(ctx, findCustomerByPartnerID, partnerID).Scan(
		&c.CustomerID,
		&c.PartnerID,
		&c.WalletID,
		&c.Balance,
	)
	return c, err
}

const insertCustomer = `
INSERT INTO customers (id, business_partner_id)
VALUES ($1, $2)
ON CONFLICT (business_partner_id) DO NOTHING
`

// InsertCustomer reports false when the partner already has a customer.
func (q *Queries) InsertCustomer(ctx context.Context, id, partnerID string) (bool, error) {
	tag, err := q.db.Exec(ctx, insertCustomer, id, partnerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const insertWallet = `
INSERT INTO wallets (id, customer_id, balance)
VALUES ($1, $2, 0)
`

func (q *Queries) InsertWallet(ctx context.Context, id, customerID string) error {
	_, err := q.db.Exec(ctx, insertWallet, id, customerID)
	return err
}

const lockWalletBalance = `
SELECT balance FROM wallets WHERE id = $1 FOR UPDATE
`

func (q *Queries) LockWalletBalance(ctx context.Context, walletID string) (int64, error) {
	var balance int64
	err := q.db.QueryRow(ctx, lockWalletBalance, walletID).Scan(&balance)
	return balance, err
}

const updateWalletBalance = `
UPDATE wallets SET balance = $2, updated_at = now() WHERE id = $1
`

func (q *Queries) UpdateWalletBalance(ctx context.Context, walletID string, balance int64) (int64, error) {
	tag, err := q.db.Exec(ctx, updateWalletBalance, walletID, balance)
	return tag.RowsAffected(), err
}

const getWallet = `
SELECT id::text, balance FROM wallets WHERE id = $1
`

type WalletRow struct {
	ID      string
	Balance int64
}

func (q *Queries) GetWallet(ctx context.Context, walletID string) (WalletRow, error) {
	var w WalletRow
	err := q.db.QueryRow(ctx, getWallet, walletID).Scan(&w.ID, &w.Balance)
	return w, err
}

const insertOrder = `
INSERT INTO orders (id, sales_order_id, customer_id, applied_cashback, amount)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sales_order_id) DO NOTHING
RETURNING created_at
`

type InsertOrderParams struct {
	ID              string
	SalesOrderID    string
	CustomerID      string
	AppliedCashback int64
	Amount          int64
}

// InsertOrder returns pgx.ErrNoRows when the sales order is already mirrored.
func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (time.Time, error) {
	var createdAt time.Time
	err := q.db.QueryRow(ctx, insertOrder,
		arg.ID,
		arg.SalesOrderID,
		arg.CustomerID,
		arg.AppliedCashback,
		arg.Amount,
	).Scan(&createdAt)
	return createdAt, err
}

const findOrderBySalesOrderID = `
SELECT id::text, sales_order_id, customer_id::text, applied_cashback, amount, created_at
FROM orders
WHERE sales_order_id = $1
`

type OrderRow struct {
	ID              string
	SalesOrderID    string
	CustomerID      string
	AppliedCashback int64
	Amount          int64
	CreatedAt       time.Time
}

func (q *Queries) FindOrderBySalesOrderID(ctx context.Context, salesOrderID string) (OrderRow, error) {
	var o OrderRow
	err := q.db.QueryRow(ctx, findOrderBySalesOrderID, salesOrderID).Scan(
		&o.ID,
		&o.SalesOrderID,
		&o.CustomerID,
		&o.AppliedCashback,
		&o.Amount,
		&o.CreatedAt,
	)
	return o, err
}

const insertTransaction = `
INSERT INTO transactions (id, wallet_id, order_id, type, amount)
VALUES ($1, $2, $3, $4::transaction_type, $5)
RETURNING created_at
`

type InsertTransactionParams struct {
	ID       string
	WalletID string
	OrderID  string
	Type     string
	Amount   int64
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (time.Time, error) {
	var createdAt time.Time
	err := q.db.QueryRow(ctx, insertTransaction,
		arg.ID,
		arg.WalletID,
		arg.OrderID,
		arg.Type,
		arg.Amount,
	).Scan(&createdAt)
	return createdAt, err
}

const listTransactionsByWallet = `
SELECT id::text, wallet_id::text, order_id::text, type::text, amount, created_at
FROM transactions
WHERE wallet_id = $1
ORDER BY seq
`

const listTransactionsByOrder = `
SELECT id::text, wallet_id::text, order_id::text, type::text, amount, created_at
FROM transactions
WHERE order_id = $1
ORDER BY seq
`

type TransactionRow struct {
	ID        string
	WalletID  string
	OrderID   string
	Type      string
	Amount    int64
	CreatedAt time.Time
}

func (q *Queries) ListTransactionsByWallet(ctx context.Context, walletID string) ([]TransactionRow, error) {
	return q.listTransactions(ctx, listTransactionsByWallet, walletID)
}

func (q *Queries) ListTransactionsByOrder(ctx context.Context, orderID string) ([]TransactionRow, error) {
	return q.listTransactions(ctx, listTransactionsByOrder, orderID)
}

func (q *Queries) listTransactions(ctx context.Context, query, key string) ([]TransactionRow, error) {
	rows, err := q.db.Query(ctx, query, key)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TransactionRow, error) {
		var t TransactionRow
		err := row.Scan(&t.ID, &t.WalletID, &t.OrderID, &t.Type, &t.Amount, &t.CreatedAt)
		return t, err
	})
}
