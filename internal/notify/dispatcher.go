// Package notify delivers balanceUpdated events off the request path.
// Delivery is best effort: a full queue or a failed publish is logged and dropped.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talx-hub/gopher-cashback/internal/model"
)

const publishTimeout = 5 * time.Second

type Dispatcher struct {
	publisher Publisher
	log       *slog.Logger
	jobs      chan BalanceUpdated
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewDispatcher(publisher Publisher, queueSize int, log *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = model.DefaultNotifyQueue
	}
	return &Dispatcher{
		publisher: publisher,
		log:       log.With("module", "notify"),
		jobs:      make(chan BalanceUpdated, queueSize),
	}
}

func (d *Dispatcher) Start(workerCount int) {
	if workerCount <= 0 {
		workerCount = model.DefaultNotifyWorkers
	}
	for range workerCount {
		d.wg.Add(1)
		go d.worker()
	}
	d.log.LogAttrs(context.Background(), slog.LevelInfo,
		"all workers started", slog.Int("count", workerCount))
}

// BalanceUpdated never blocks.
func (d *Dispatcher) BalanceUpdated(ctx context.Context, walletID string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.LogAttrs(ctx, slog.LevelWarn,
			"dispatcher closed, event dropped", slog.String("wallet_id", walletID))
		return
	}

	select {
	case d.jobs <- BalanceUpdated{WalletID: walletID, OccurredAt: time.Now().UTC()}:
	default:
		d.log.LogAttrs(ctx, slog.LevelWarn,
			"notification queue is full, event dropped", slog.String("wallet_id", walletID))
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for e := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.publisher.Publish(ctx, e); err != nil {
			d.log.LogAttrs(ctx,
				slog.LevelError,
				"failed to publish balanceUpdated",
				slog.String("wallet_id", e.WalletID),
				slog.Any(model.KeyLoggerError, err),
			)
		}
		cancel()
	}
}

// Close stops accepting events, drains the queue and closes the publisher.
func (d *Dispatcher) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()

		d.wg.Wait()
		err = d.publisher.Close()
	})
	return err
}
