package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayo6706/payout-service/internal/domain"
	"github.com/ayo6706/payout-service/internal/lock"
	"github.com/ayo6706/payout-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutService handles business logic for payout requests: CRUD operations
// plus the asynchronous processing workflow in process.go.
type PayoutService struct {
	store      PayoutStore
	locker     lock.Locker
	dispatcher Dispatcher
	delay      time.Duration
}

const defaultProcessingDelay = 2 * time.Second

func NewPayoutService(store PayoutStore, locker lock.Locker, dispatcher Dispatcher) *PayoutService {
	return &PayoutService{
		store:      store,
		locker:     locker,
		dispatcher: dispatcher,
		delay:      defaultProcessingDelay,
	}
}

// WithProcessingDelay overrides the simulated downstream latency.
func (s *PayoutService) WithProcessingDelay(delay time.Duration) *PayoutService {
	if delay >= 0 {
		s.delay = delay
	}
	return s
}

// CreatePayoutInput holds the parameters for submitting a payout request.
type CreatePayoutInput struct {
	Amount           decimal.Decimal
	Currency         string
	RecipientDetails string
	Comment          *string
}

// Create persists a new payout request in pending status and dispatches the
// processing workflow. The creating request does not wait for processing.
func (s *PayoutService) Create(ctx context.Context, in CreatePayoutInput) (*models.PayoutRequest, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("invalid amount: %s", in.Amount)
	}
	currency := in.Currency
	if currency == "" {
		currency = domain.CurrencyRUB
	}
	if !domain.ValidCurrency(currency) {
		return nil, fmt.Errorf("unsupported currency: %s", currency)
	}

	payout := &models.PayoutRequest{
		ID:               uuid.New(),
		Amount:           in.Amount,
		Currency:         currency,
		RecipientDetails: strings.TrimSpace(in.RecipientDetails),
		Status:           domain.StatusPending,
		Comment:          in.Comment,
	}
	if payout.RecipientDetails == "" {
		return nil, fmt.Errorf("recipient details are required")
	}

	if err := s.store.CreatePayout(ctx, payout); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(payout.ID)
	return payout, nil
}

// Get retrieves a payout request by id.
func (s *PayoutService) Get(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	return s.store.GetPayout(ctx, id)
}

// List returns all payout requests, newest first.
func (s *PayoutService) List(ctx context.Context) ([]models.PayoutRequest, error) {
	return s.store.ListPayouts(ctx)
}

// UpdatePayoutInput holds the admin partial update: only status and comment
// are settable, nil fields stay untouched.
type UpdatePayoutInput struct {
	Status  *string
	Comment *string
}

// Update applies a partial update. Records in a terminal status other than
// cancelled reject a status change; re-asserting the current status (or
// editing the comment) stays allowed, so identical updates are idempotent
// aside from the updated_at refresh.
func (s *PayoutService) Update(ctx context.Context, id uuid.UUID, in UpdatePayoutInput) (*models.PayoutRequest, error) {
	if in.Status != nil && !domain.ValidStatus(*in.Status) {
		return nil, models.ErrInvalidStatus
	}

	current, err := s.store.GetPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && *in.Status != current.Status &&
		domain.Terminal(current.Status) && current.Status != domain.StatusCancelled {
		return nil, models.ErrTerminalStatus
	}

	return s.store.UpdatePayout(ctx, id, in.Status, in.Comment)
}

// Delete removes a payout request.
func (s *PayoutService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeletePayout(ctx, id)
}
