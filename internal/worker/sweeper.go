package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ayo6706/payout-service/internal/observability"
	"go.uber.org/zap"
)

// StuckSweeper periodically reconciles payouts the detached workflow lost:
// stale pending rows are re-dispatched and rows stuck in processing are
// failed.
type StuckSweeper interface {
	SweepStuck(ctx context.Context, pendingAge, processingAge time.Duration, limit int32) error
}

// Sweeper runs periodic stuck-record reconciliation.
type Sweeper struct {
	svc           StuckSweeper
	interval      time.Duration
	pendingAge    time.Duration
	processingAge time.Duration
	batchSize     int32
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewSweeper constructs a sweeper with conservative default windows.
func NewSweeper(svc StuckSweeper) *Sweeper {
	return &Sweeper{
		svc:           svc,
		interval:      time.Minute,
		pendingAge:    2 * time.Minute,
		processingAge: 5 * time.Minute,
		batchSize:     100,
		stopCh:        make(chan struct{}),
	}
}

// WithInterval updates the sweep interval.
func (w *Sweeper) WithInterval(interval time.Duration) *Sweeper {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// WithAges updates how old a record must be before the sweeper touches it.
func (w *Sweeper) WithAges(pendingAge, processingAge time.Duration) *Sweeper {
	if pendingAge > 0 {
		w.pendingAge = pendingAge
	}
	if processingAge > 0 {
		w.processingAge = processingAge
	}
	return w
}

// Start blocks and sweeps at the configured interval.
func (w *Sweeper) Start(ctx context.Context) {
	zap.L().Info("payout sweeper starting",
		zap.Duration("interval", w.interval),
		zap.Duration("pending_age", w.pendingAge),
		zap.Duration("processing_age", w.processingAge),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("payout sweeper context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("payout sweeper stop signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop stops the running sweep loop.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the sweeper in a goroutine and returns a stop function.
func (w *Sweeper) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *Sweeper) runOnce(ctx context.Context) {
	if err := w.svc.SweepStuck(ctx, w.pendingAge, w.processingAge, w.batchSize); err != nil {
		observability.IncrementWorkerRun("sweeper", "failed")
		zap.L().Error("payout sweep failed", zap.Error(err))
		return
	}
	observability.IncrementWorkerRun("sweeper", "success")
}
