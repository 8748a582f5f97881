package service

import (
	"context"
	"time"

	"github.com/ayo6706/payout-service/internal/models"
	"github.com/google/uuid"
)

// PayoutStore defines the persistence contract required by PayoutService.
type PayoutStore interface {
	CreatePayout(ctx context.Context, p *models.PayoutRequest) error
	GetPayout(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	ListPayouts(ctx context.Context) ([]models.PayoutRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AppendComment(ctx context.Context, id uuid.UUID, status, line string) error
	UpdatePayout(ctx context.Context, id uuid.UUID, status, comment *string) (*models.PayoutRequest, error)
	DeletePayout(ctx context.Context, id uuid.UUID) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]uuid.UUID, error)
	FailStuckProcessing(ctx context.Context, cutoff time.Time, line string, limit int32) ([]uuid.UUID, error)
}

// Dispatcher hands a freshly created payout to the asynchronous processing
// workflow. Dispatch must not block the calling request.
type Dispatcher interface {
	Dispatch(id uuid.UUID)
}
