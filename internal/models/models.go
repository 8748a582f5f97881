package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutRequest is a single withdrawal request and its lifecycle state.
type PayoutRequest struct {
	ID               uuid.UUID       `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	RecipientDetails string          `json:"recipient_details"`
	Status           string          `json:"status"` // e.g., "pending", "processing", "completed"
	Comment          *string         `json:"comment"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
