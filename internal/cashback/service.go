// Package cashback creates ERP sales orders paid partly with a customer's
// cashback balance and mirrors them in the local wallet ledger.
//
// Admission only reads, apart from creating a customer on first sight. Commit
// creates the remote order, which cannot be undone, and then writes the local
// mirror in one database transaction.
package cashback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talx-hub/gopher-cashback/internal/erp"
	"github.com/talx-hub/gopher-cashback/internal/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/customer"
	modelledger "github.com/talx-hub/gopher-cashback/internal/model/ledger"
	"github.com/talx-hub/gopher-cashback/internal/model/order"
	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
	"github.com/talx-hub/gopher-cashback/internal/utils/logger"
)

type ParameterStore interface {
	Get(ctx context.Context) (parameters.Parameters, error)
	Update(ctx context.Context, patch parameters.Patch) (parameters.Parameters, error)
}

type CustomerDirectory interface {
	FindOrCreate(ctx context.Context, partnerID string) (customer.Customer, error)
	FindByExternalID(ctx context.Context, partnerID string) (customer.Customer, error)
}

type OrderGateway interface {
	FindBusinessPartner(ctx context.Context, id string) (erp.BusinessPartner, bool, error)
	CreateOrder(ctx context.Context, o order.RemoteOrder) (order.CreatedOrder, error)
}

type LedgerStore interface {
	CommitOrder(ctx context.Context, c order.Commit) (order.Order, error)
	ListTransactions(ctx context.Context, walletID string) ([]modelledger.Transaction, error)
}

type WalletLocker interface {
	LockWallet(ctx context.Context, walletID string) (func(), error)
}

type Notifier interface {
	BalanceUpdated(ctx context.Context, walletID string)
}

type Deps struct {
	Parameters ParameterStore
	Customers  CustomerDirectory
	Gateway    OrderGateway
	Ledger     LedgerStore
	Locker     WalletLocker
	Notifier   Notifier
}

type Service struct {
	params       ParameterStore
	customers    CustomerDirectory
	gateway      OrderGateway
	ledger       LedgerStore
	locker       WalletLocker
	notifier     Notifier
	log          *slog.Logger
	inflight     sync.WaitGroup
	orderTimeout time.Duration
}

func New(deps Deps, orderTimeout time.Duration, log *slog.Logger) *Service {
	if orderTimeout <= 0 {
		orderTimeout = model.DefaultOrderTimeout
	}
	return &Service{
		params:       deps.Parameters,
		customers:    deps.Customers,
		gateway:      deps.Gateway,
		ledger:       deps.Ledger,
		locker:       deps.Locker,
		notifier:     deps.Notifier,
		log:          log.With("service", "cashback"),
		orderTimeout: orderTimeout,
	}
}

// Admit runs the admission checks in a fixed order and returns the customer
// with its wallet. It only reads, apart from lazily creating the customer.
func (s *Service) Admit(ctx context.Context, req *order.CreateRequest, p parameters.Parameters,
) (customer.Customer, error) {
	if req.AppliedCashback > 0 && !p.IsCashbackActive {
		return customer.Customer{}, serviceerrs.ErrCashbackDisabled
	}

	_, found, err := s.gateway.FindBusinessPartner(ctx, req.ExternalPartyID)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to look up business partner %s: %w",
			req.ExternalPartyID, err)
	}
	if !found {
		return customer.Customer{}, serviceerrs.ErrPartnerNotFound
	}

	c, err := s.customers.FindOrCreate(ctx, req.ExternalPartyID)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to resolve customer %s: %w",
			req.ExternalPartyID, err)
	}

	if req.AppliedCashback > c.Wallet.Balance {
		return customer.Customer{}, serviceerrs.ErrInsufficientFunds
	}

	if decimal.NewFromInt(req.AppliedCashback.Cents()).GreaterThan(RedemptionLimit(req, p)) {
		return customer.Customer{}, serviceerrs.ErrRedemptionLimitExceeded
	}

	return c, nil
}

// RedemptionLimit is the largest redemption the order allows, in cents.
func RedemptionLimit(req *order.CreateRequest, p parameters.Parameters) decimal.Decimal {
	return req.TotalCents().Mul(p.RedemptionLimit)
}

// EarnedCashback is the credit for the amount actually paid, rounded down to a cent.
func EarnedCashback(req *order.CreateRequest, p parameters.Parameters) model.Amount {
	return req.NetAmount().Fraction(p.ReturnRate)
}

type result struct {
	created order.CreatedOrder
	err     error
}

// CreateOrder admits the request, creates the ERP order and records it in the ledger.
//
// The caller may cancel until the ERP call is issued. From then on the operation
// runs to completion on its own; if ctx ends first the caller gets ErrOrderPending.
func (s *Service) CreateOrder(ctx context.Context, req *order.CreateRequest,
) (order.CreatedOrder, error) {
	if err := validate(req); err != nil {
		return order.CreatedOrder{}, err
	}
	log := logger.FromContext(ctx).With(
		slog.String("business_partner_id", req.ExternalPartyID),
	)
	ctx = logger.WithContext(ctx, log)

	p, err := s.params.Get(ctx)
	if err != nil {
		return order.CreatedOrder{}, fmt.Errorf("failed to load parameters: %w", err)
	}

	c, err := s.Admit(ctx, req, p)
	if err != nil {
		return order.CreatedOrder{}, err
	}

	unlock := func() {}
	if req.AppliedCashback > 0 {
		unlock, err = s.locker.LockWallet(ctx, c.Wallet.ID)
		if err != nil {
			return order.CreatedOrder{}, fmt.Errorf("failed to lock wallet: %w", err)
		}
	}

	c, err = s.recheck(ctx, req)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		unlock()
		return order.CreatedOrder{}, err
	}

	res := make(chan result, 1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer unlock()

		opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.orderTimeout)
		defer cancel()
		created, err := s.commit(opCtx, req, c, p)
		res <- result{created: created, err: err}
	}()

	select {
	case r := <-res:
		return r.created, r.err
	case <-ctx.Done():
		log.LogAttrs(ctx,
			slog.LevelWarn,
			"caller stopped waiting, order creation continues",
			slog.Any(model.KeyLoggerError, ctx.Err()),
		)
		return order.CreatedOrder{}, fmt.Errorf("%w: %w", serviceerrs.ErrOrderPending, ctx.Err())
	}
}

// recheck re-reads the wallet right before the ERP call. Admission may have
// seen a balance that another order has spent since.
func (s *Service) recheck(ctx context.Context, req *order.CreateRequest) (customer.Customer, error) {
	c, err := s.customers.FindOrCreate(ctx, req.ExternalPartyID)
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to re-read customer %s: %w",
			req.ExternalPartyID, err)
	}
	if req.AppliedCashback > c.Wallet.Balance {
		return customer.Customer{}, serviceerrs.ErrInsufficientFunds
	}
	return c, nil
}

func (s *Service) commit(ctx context.Context,
	req *order.CreateRequest, c customer.Customer, p parameters.Parameters,
) (order.CreatedOrder, error) {
	log := logger.FromContext(ctx)

	net := req.NetAmount()
	earned := EarnedCashback(req, p)

	created, err := s.gateway.CreateOrder(ctx, req.ToRemote())
	if err != nil {
		log.LogAttrs(ctx,
			slog.LevelError,
			"failed to create remote order",
			slog.Any(model.KeyLoggerError, err),
		)
		return order.CreatedOrder{}, &serviceerrs.RemoteOrderError{Err: err}
	}
	log = log.With(slog.String("sales_order_id", created.SalesOrder))

	txs := ledger.Build(req.AppliedCashback, earned)
	local, err := s.ledger.CommitOrder(ctx, order.Commit{
		RemoteOrderID:   created.SalesOrder,
		CustomerID:      c.ID,
		WalletID:        c.Wallet.ID,
		Transactions:    txs,
		AppliedCashback: req.AppliedCashback,
		NetAmount:       net,
	})
	if err != nil {
		log.LogAttrs(ctx,
			logger.LevelCritical,
			"remote order has no ledger mirror, reconciliation required",
			slog.String("wallet_id", c.Wallet.ID),
			slog.String("customer_id", c.ID),
			slog.Int64("applied_cashback", req.AppliedCashback.Cents()),
			slog.Int64("net_amount", net.Cents()),
			slog.Any("transactions", txs),
			slog.Any(model.KeyLoggerError, err),
		)
		return order.CreatedOrder{}, &serviceerrs.LedgerCommitError{
			Err:           err,
			RemoteOrderID: created.SalesOrder,
			WalletID:      c.Wallet.ID,
		}
	}

	log.LogAttrs(ctx,
		slog.LevelInfo,
		"order created",
		slog.String("order_id", local.ID),
		slog.Int64("applied_cashback", req.AppliedCashback.Cents()),
		slog.Int64("earned_cashback", earned.Cents()),
	)
	s.notifier.BalanceUpdated(ctx, c.Wallet.ID)

	return created, nil
}

// Wait blocks until orders that outlived their callers are finished.
func (s *Service) Wait() {
	s.log.Debug("waiting for in-flight orders")
	s.inflight.Wait()
}

func validate(req *order.CreateRequest) error {
	var errs []error
	if req.ExternalPartyID == "" {
		errs = append(errs, errors.New("business partner is empty"))
	}
	if _, err := model.FromDecimal(req.TotalNetAmount); err != nil {
		errs = append(errs, fmt.Errorf("total net amount: %w", err))
	}
	if req.AppliedCashback < 0 {
		errs = append(errs, errors.New("applied cashback is negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{serviceerrs.ErrInvalidOrder}, errs...)...)
}

func (s *Service) GetParameters(ctx context.Context) (parameters.Parameters, error) {
	return s.params.Get(ctx) //nolint: wrapcheck // error from wrapped function
}

func (s *Service) UpdateParameters(ctx context.Context, patch parameters.Patch,
) (parameters.Parameters, error) {
	p, err := s.params.Update(ctx, patch)
	if err != nil {
		return parameters.Parameters{}, err //nolint: wrapcheck // error from wrapped function
	}
	logger.FromContext(ctx).LogAttrs(ctx,
		slog.LevelInfo,
		"parameters updated",
		slog.Bool("is_cashback_active", p.IsCashbackActive),
		slog.String("cashback_redemption_limit", p.RedemptionLimit.String()),
		slog.String("cashback_return_rate", p.ReturnRate.String()),
	)
	return p, nil
}

type WalletStatement struct {
	Customer     customer.Customer
	Transactions []modelledger.Transaction
}

func (s *Service) GetWallet(ctx context.Context, partnerID string) (WalletStatement, error) {
	c, err := s.customers.FindByExternalID(ctx, partnerID)
	if err != nil {
		return WalletStatement{}, err //nolint: wrapcheck // error from wrapped function
	}
	txs, err := s.ledger.ListTransactions(ctx, c.Wallet.ID)
	if err != nil {
		return WalletStatement{}, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return WalletStatement{Customer: c, Transactions: txs}, nil
}
