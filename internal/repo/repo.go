package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talx-hub/gopher-cashback/internal/model"
)

type connectionPool interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type DB struct {
	pool connectionPool
	log  *slog.Logger
}

// WithTX runs f in a transaction. The transaction is committed only when f succeeds.
func WithTX[T any](ctx context.Context,
	pool connectionPool, log *slog.Logger, f func(ctx context.Context, tx connectionPool) (T, error),
) (T, error) {
	var zero T

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to begin TX: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.LogAttrs(ctx,
				slog.LevelError,
				"failed to rollback TX",
				slog.Any(model.KeyLoggerError, rbErr),
			)
		}
	}()

	res, err := f(ctx, tx)
	if err != nil {
		return zero, err //nolint: wrapcheck // error from wrapped function
	}

	if err = tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("failed to commit TX: %w", err)
	}
	return res, nil
}

const maxAttemptCount = 3

// retryDelay grows with the attempt: 1s, 3s, 5s.
var retryDelay = func(attempt int) time.Duration {
	return time.Duration(attempt*2+1) * time.Second
}

// WithRetry repeats dbQuery while it fails with a transient postgres error.
func WithRetry[T any](ctx context.Context, dbQuery func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		res, err := dbQuery()
		if err == nil {
			return res, nil
		}
		if !isRetryableError(err) {
			return zero, fmt.Errorf("on attempt #%d error occurred: %w", attempt, err)
		}
		if attempt >= maxAttemptCount {
			return zero, fmt.Errorf("failed to reattempt query to the DB: %w", err)
		}

		select {
		case <-ctx.Done():
			return zero, errors.Join(err, ctx.Err())
		case <-time.After(retryDelay(attempt)):
		}
	}
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection,
		pgerrcode.SQLServerRejectedEstablishmentOfSQLConnection,
		pgerrcode.TransactionResolutionUnknown,
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
