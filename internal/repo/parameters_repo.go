package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
	"github.com/talx-hub/gopher-cashback/internal/repo/internal/db"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
)

type ParametersRepository struct {
	DB
}

func NewParametersRepository(pool connectionPool, log *slog.Logger) *ParametersRepository {
	return &ParametersRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func (r *ParametersRepository) Get(ctx context.Context) (parameters.Parameters, error) {
	getLogic := func() (parameters.Parameters, error) {
		row, err := db.New(r.pool).GetParameters(ctx)
		if err != nil {
			return parameters.Parameters{}, notConfigured(err)
		}
		return fromRow(row)
	}

	return WithRetry(ctx, getLogic) //nolint: wrapcheck // error from wrapped function
}

// Update merges the patch into the stored record under a row lock.
func (r *ParametersRepository) Update(ctx context.Context, patch parameters.Patch,
) (parameters.Parameters, error) {
	updateLogic := func(ctx context.Context, tx connectionPool) (parameters.Parameters, error) {
		queries := db.New(tx)
		row, err := queries.GetParametersForUpdate(ctx)
		if err != nil {
			return parameters.Parameters{}, notConfigured(err)
		}
		current, err := fromRow(row)
		if err != nil {
			return parameters.Parameters{}, err
		}

		updated := patch.Apply(current)
		if _, err = queries.UpdateParameters(ctx, toRow(updated)); err != nil {
			return parameters.Parameters{}, fmt.Errorf("failed to update parameters: %w", err)
		}
		return updated, nil
	}

	updateWithTX := func() (parameters.Parameters, error) {
		return WithTX(ctx, r.pool, r.log, updateLogic)
	}

	return WithRetry(ctx, updateWithTX) //nolint: wrapcheck // error from wrapped function
}

func notConfigured(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return serviceerrs.ErrNotConfigured
	}
	return fmt.Errorf("failed to read parameters: %w", err)
}

func fromRow(row db.ParametersRow) (parameters.Parameters, error) {
	limit, err := decimal.NewFromString(row.RedemptionLimit)
	if err != nil {
		return parameters.Parameters{}, fmt.Errorf("invalid redemption limit %q: %w", row.RedemptionLimit, err)
	}
	rate, err := decimal.NewFromString(row.ReturnRate)
	if err != nil {
		return parameters.Parameters{}, fmt.Errorf("invalid return rate %q: %w", row.ReturnRate, err)
	}
	return parameters.Parameters{
		IsCashbackActive: row.IsCashbackActive,
		RedemptionLimit:  limit,
		ReturnRate:       rate,
	}, nil
}

func toRow(p parameters.Parameters) db.ParametersRow {
	return db.ParametersRow{
		IsCashbackActive: p.IsCashbackActive,
		RedemptionLimit:  p.RedemptionLimit.String(),
		ReturnRate:       p.ReturnRate.String(),
	}
}
