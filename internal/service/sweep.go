package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ayo6706/payout-service/internal/observability"
	"go.uber.org/zap"
)

// SweepStuck reconciles records the detached workflow lost track of:
// pending payouts whose dispatch never reached a worker are re-dispatched,
// and payouts stuck in processing past the timeout are failed with a trace
// line so they do not sit in a non-terminal state forever.
func (s *PayoutService) SweepStuck(ctx context.Context, pendingAge, processingAge time.Duration, limit int32) error {
	now := time.Now()

	stalePending, err := s.store.ListStalePending(ctx, now.Add(-pendingAge), limit)
	if err != nil {
		return fmt.Errorf("list stale pending payouts: %w", err)
	}
	for _, id := range stalePending {
		s.dispatcher.Dispatch(id)
	}
	if len(stalePending) > 0 {
		zap.L().Info("re-dispatched stale pending payouts", zap.Int("count", len(stalePending)))
	}

	stuck, err := s.store.FailStuckProcessing(ctx, now.Add(-processingAge), "\n"+commentTimedOut, limit)
	if err != nil {
		return fmt.Errorf("fail stuck processing payouts: %w", err)
	}
	if len(stuck) > 0 {
		observability.AddStuckPayouts(len(stuck))
		zap.L().Warn("failed payouts stuck in processing", zap.Int("count", len(stuck)))
	}

	return nil
}
