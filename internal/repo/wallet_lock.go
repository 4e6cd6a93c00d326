package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
	"github.com/talx-hub/gopher-cashback/internal/utils/semaphore"
)

type connAcquirer interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
}

// WalletLocker serializes redemptions of one wallet across service instances
// with a session level advisory lock.
//
// A holder keeps one pooled connection until it unlocks and needs another one
// for its own queries, so the number of holders stays below the pool size.
// Waiters poll with pg_try_advisory_lock and hold no connection between attempts.
type WalletLocker struct {
	pool    connAcquirer
	holders *semaphore.Semaphore
	log     *slog.Logger
	timeout time.Duration
}

func NewWalletLocker(pool connAcquirer, maxHolders int, timeout time.Duration, log *slog.Logger,
) *WalletLocker {
	if maxHolders < 1 {
		maxHolders = 1
	}
	if timeout <= 0 {
		timeout = model.DefaultLockTimeout
	}
	return &WalletLocker{
		pool:    pool,
		holders: semaphore.New(uint64(maxHolders)),
		log:     log,
		timeout: timeout,
	}
}

const (
	advisoryTryLock = `SELECT pg_try_advisory_lock(hashtextextended($1, 0))`
	advisoryUnlock  = `SELECT pg_advisory_unlock(hashtextextended($1, 0))`
	unlockTimeout   = 5 * time.Second
	minLockBackoff  = 5 * time.Millisecond
	maxLockBackoff  = 200 * time.Millisecond
)

// LockWallet waits until the lock is held, ctx ends or the lock timeout
// passes. The returned func releases it.
func (l *WalletLocker) LockWallet(ctx context.Context, walletID string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.holders.Acquire(waitCtx); err != nil {
		return nil, l.waitError(ctx, walletID, err)
	}

	backoff := minLockBackoff
	for {
		conn, locked, err := l.tryLock(waitCtx, walletID)
		if err != nil {
			l.holders.Release()
			return nil, l.waitError(ctx, walletID, err)
		}
		if locked {
			return l.unlockFunc(conn, walletID), nil
		}

		select {
		case <-waitCtx.Done():
			l.holders.Release()
			return nil, l.waitError(ctx, walletID, waitCtx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxLockBackoff)
	}
}

// tryLock returns the connection that owns the lock, or releases it back to
// the pool when the lock is taken by someone else.
func (l *WalletLocker) tryLock(ctx context.Context, walletID string) (*pgxpool.Conn, bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for wallet lock: %w", err)
	}
	var locked bool
	if err = conn.QueryRow(ctx, advisoryTryLock, walletID).Scan(&locked); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
	}
	if !locked {
		conn.Release()
		return nil, false, nil
	}
	return conn, true, nil
}

// waitError reports a wait that ran out of lock time as ErrWalletBusy.
// A canceled caller gets its own context error back.
func (l *WalletLocker) waitError(ctx context.Context, walletID string, err error) error {
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("wallet %s: %w", walletID, serviceerrs.ErrWalletBusy)
	}
	return fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
}

func (l *WalletLocker) unlockFunc(conn *pgxpool.Conn, walletID string) func() {
	return func() {
		defer l.holders.Release()

		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()
		if _, err := conn.Exec(ctx, advisoryUnlock, walletID); err != nil {
			l.log.LogAttrs(ctx,
				slog.LevelError,
				"failed to unlock wallet, dropping connection",
				slog.String("wallet_id", walletID),
				slog.Any(model.KeyLoggerError, err),
			)
			// a closed session releases its advisory locks
			if closeErr := conn.Hijack().Close(ctx); closeErr != nil {
				l.log.LogAttrs(ctx,
					slog.LevelError,
					"failed to close connection",
					slog.Any(model.KeyLoggerError, closeErr),
				)
			}
			return
		}
		conn.Release()
	}
}
