package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/model/customer"
	"github.com/talx-hub/gopher-cashback/internal/repo/internal/db"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
)

type CustomerRepository struct {
	DB
}

func NewCustomerRepository(pool connectionPool, log *slog.Logger) *CustomerRepository {
	return &CustomerRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func (r *CustomerRepository) FindByExternalID(ctx context.Context, partnerID string,
) (customer.Customer, error) {
	findLogic := func() (customer.Customer, error) {
		return findCustomer(ctx, r.pool, partnerID)
	}

	return WithRetry(ctx, findLogic) //nolint: wrapcheck // error from wrapped function
}

// FindOrCreate returns the customer of a business partner together with its wallet,
// creating both on first sight. Concurrent first calls end up with one customer.
func (r *CustomerRepository) FindOrCreate(ctx context.Context, partnerID string,
) (customer.Customer, error) {
	if partnerID == "" {
		return customer.Customer{}, errors.New("business partner id must be not empty")
	}

	c, err := r.FindByExternalID(ctx, partnerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, serviceerrs.ErrCustomerNotFound) {
		return customer.Customer{}, err
	}

	createLogic := func(ctx context.Context, tx connectionPool) (struct{}, error) {
		queries := db.New(tx)
		customerID := uuid.NewString()
		inserted, err := queries.InsertCustomer(ctx, customerID, partnerID)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to insert customer: %w", err)
		}
		if !inserted {
			return struct{}{}, nil
		}
		if err = queries.InsertWallet(ctx, uuid.NewString(), customerID); err != nil {
			return struct{}{}, fmt.Errorf("failed to insert wallet: %w", err)
		}
		return struct{}{}, nil
	}

	createWithTX := func() (struct{}, error) {
		return WithTX(ctx, r.pool, r.log, createLogic)
	}

	if _, err = WithRetry(ctx, createWithTX); err != nil {
		if !isUniqueViolation(err) {
			return customer.Customer{}, err //nolint: wrapcheck // error from wrapped function
		}
		r.log.LogAttrs(ctx,
			slog.LevelDebug,
			"customer created concurrently, reading it back",
			slog.String("business_partner_id", partnerID),
			slog.Any(model.KeyLoggerError, err),
		)
	} else {
		r.log.LogAttrs(ctx,
			slog.LevelInfo,
			"customer created",
			slog.String("business_partner_id", partnerID),
		)
	}

	return r.FindByExternalID(ctx, partnerID)
}

func findCustomer(ctx context.Context, pool db.DBTX, partnerID string,
) (customer.Customer, error) {
	row, err := db.New(pool).FindCustomerByPartnerID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return customer.Customer{}, serviceerrs.ErrCustomerNotFound
		}
		return customer.Customer{},
			fmt.Errorf("failed to find customer by partner %s: %w", partnerID, err)
	}
	return customer.Customer{
		ID:              row.CustomerID,
		ExternalPartyID: row.PartnerID,
		Wallet: customer.Wallet{
			ID:      row.WalletID,
			Balance: model.Amount(row.Balance),
		},
	}, nil
}
