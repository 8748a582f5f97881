package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayo6706/payout-service/internal/domain"
	"github.com/ayo6706/payout-service/internal/lock"
	"github.com/ayo6706/payout-service/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome classifies how a single processing run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeError     Outcome = "error"
)

// ProcessResult is the structured result of one processing run. Processing is
// detached from the request that triggered it, so outcomes are reported here
// and on the record itself rather than to any caller.
type ProcessResult struct {
	PayoutID uuid.UUID `json:"payout_id"`
	Outcome  Outcome   `json:"outcome"`
	Message  string    `json:"message"`
}

// Comment trace lines appended by the workflow.
const (
	commentAmountInvalid    = "Error: invalid payout amount."
	commentRecipientInvalid = "Error: invalid recipient details."
	commentLimitExceeded    = "Error: payout limit exceeded."
	commentTimedOut         = "Error: processing timed out."
	commentCompletedFormat  = "Payout processed successfully: %s"
)

const completedTimeLayout = "2006-01-02 15:04:05"

// Process drives one payout request through validation to a terminal status.
//
// Every status change is persisted immediately and independently, so partial
// progress is visible to concurrent readers. The per-record lock closes the
// race between duplicate dispatches of the same id.
func (s *PayoutService) Process(ctx context.Context, id uuid.UUID) ProcessResult {
	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		if errors.Is(err, lock.ErrAlreadyLocked) {
			zap.L().Info("payout already being processed, skipping", zap.String("payout_id", id.String()))
			return ProcessResult{PayoutID: id, Outcome: OutcomeSkipped, Message: "payout is already being processed"}
		}
		zap.L().Error("payout lock acquisition failed", zap.Error(err), zap.String("payout_id", id.String()))
		return ProcessResult{PayoutID: id, Outcome: OutcomeError, Message: err.Error()}
	}
	defer release()

	payout, err := s.store.GetPayout(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrPayoutNotFound) {
			zap.L().Warn("payout not found for processing", zap.String("payout_id", id.String()))
			return ProcessResult{PayoutID: id, Outcome: OutcomeNotFound, Message: "payout not found"}
		}
		return s.handleUnexpected(id, err)
	}

	zap.L().Info("payout processing started", zap.String("payout_id", id.String()))

	if err := s.store.UpdateStatus(ctx, id, domain.StatusProcessing); err != nil {
		return s.handleUnexpected(id, err)
	}

	if !payout.Amount.IsPositive() {
		return s.fail(ctx, id, commentAmountInvalid)
	}

	trimmed := strings.TrimSpace(payout.RecipientDetails)
	if utf8.RuneCountInString(trimmed) < domain.MinRecipientDetailsLen {
		return s.fail(ctx, id, commentRecipientInvalid)
	}

	// Simulated downstream call. Waiting on the context keeps the worker
	// cooperative; a shutdown mid-delay leaves the record in processing for
	// the sweeper to reconcile.
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		zap.L().Warn("payout processing interrupted", zap.Error(ctx.Err()), zap.String("payout_id", id.String()))
		return ProcessResult{PayoutID: id, Outcome: OutcomeError, Message: ctx.Err().Error()}
	}

	if payout.Amount.GreaterThan(domain.MaxPayoutAmount) {
		return s.fail(ctx, id, commentLimitExceeded)
	}

	line := "\n" + fmt.Sprintf(commentCompletedFormat, time.Now().Format(completedTimeLayout))
	if err := s.store.AppendComment(ctx, id, domain.StatusCompleted, line); err != nil {
		return s.handleUnexpected(id, err)
	}

	zap.L().Info("payout processed successfully", zap.String("payout_id", id.String()))
	return ProcessResult{PayoutID: id, Outcome: OutcomeCompleted, Message: "payout processed successfully"}
}

// fail records a business-rule failure on the payout itself.
func (s *PayoutService) fail(ctx context.Context, id uuid.UUID, reason string) ProcessResult {
	if err := s.store.AppendComment(ctx, id, domain.StatusFailed, "\n"+reason); err != nil {
		return s.handleUnexpected(id, err)
	}
	zap.L().Warn("payout failed validation", zap.String("payout_id", id.String()), zap.String("reason", reason))
	return ProcessResult{PayoutID: id, Outcome: OutcomeFailed, Message: reason}
}

// handleUnexpected makes a best-effort attempt to record an unexpected fault
// on the payout. If the follow-up write itself fails, the error is only
// logged and the record stays in processing until the sweeper flags it.
func (s *PayoutService) handleUnexpected(id uuid.UUID, err error) ProcessResult {
	zap.L().Error("payout processing error", zap.Error(err), zap.String("payout_id", id.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	line := "\nProcessing error: " + err.Error()
	if writeErr := s.store.AppendComment(ctx, id, domain.StatusFailed, line); writeErr != nil {
		zap.L().Error("failed to record payout processing error", zap.Error(writeErr), zap.String("payout_id", id.String()))
	}
	return ProcessResult{PayoutID: id, Outcome: OutcomeError, Message: err.Error()}
}
