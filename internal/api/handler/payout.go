package handler

import (
	"errors"
	"net/http"

	"github.com/ayo6706/payout-service/internal/api/render"
	"github.com/ayo6706/payout-service/internal/models"
	"github.com/ayo6706/payout-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayoutHandler handles HTTP requests for payout requests.
type PayoutHandler struct {
	payoutSvc *service.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler instance.
func NewPayoutHandler(payoutSvc *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

type createPayoutRequest struct {
	Amount           decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency         string          `json:"currency" validate:"omitempty,oneof=USD EUR RUB"`
	RecipientDetails string          `json:"recipient_details" validate:"required,notblank,max=1000"`
	Comment          *string         `json:"comment" validate:"omitempty,max=500"`
}

type updatePayoutRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=pending processing completed failed cancelled"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

// CreatePayout handles POST /api/payouts.
// The record is persisted as pending and processing runs detached; clients
// poll GET /api/payouts/{id} to observe the terminal status.
func (h *PayoutHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	req, err := render.BindAndValidate[createPayoutRequest](w, r)
	if err != nil {
		return
	}

	payout, err := h.payoutSvc.Create(r.Context(), service.CreatePayoutInput{
		Amount:           req.Amount,
		Currency:         req.Currency,
		RecipientDetails: req.RecipientDetails,
		Comment:          req.Comment,
	})
	if err != nil {
		zap.L().Error("create payout failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "payout/create-failed", "Failed to create payout")
		return
	}

	RespondJSON(w, http.StatusCreated, payout)
}

// ListPayouts handles GET /api/payouts, newest first.
func (h *PayoutHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.payoutSvc.List(r.Context())
	if err != nil {
		zap.L().Error("list payouts failed", zap.Error(err))
		RespondError(w, r, http.StatusInternalServerError, "payout/list-failed", "Failed to list payouts")
		return
	}
	RespondJSON(w, http.StatusOK, payouts)
}

// GetPayout handles GET /api/payouts/{id}.
func (h *PayoutHandler) GetPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, ok := payoutIDParam(w, r)
	if !ok {
		return
	}

	payout, err := h.payoutSvc.Get(r.Context(), payoutID)
	if err != nil {
		if errors.Is(err, models.ErrPayoutNotFound) {
			RespondError(w, r, http.StatusNotFound, "payout/not-found", "Payout not found")
			return
		}
		zap.L().Error("get payout failed", zap.Error(err), zap.String("payout_id", payoutID.String()))
		RespondError(w, r, http.StatusInternalServerError, "payout/read-failed", "Failed to get payout")
		return
	}

	RespondJSON(w, http.StatusOK, payout)
}

// UpdatePayout handles PATCH /api/payouts/{id}. Only status and comment are
// settable.
func (h *PayoutHandler) UpdatePayout(w http.ResponseWriter, r *http.Request) {
	payoutID, ok := payoutIDParam(w, r)
	if !ok {
		return
	}

	req, err := render.BindAndValidate[updatePayoutRequest](w, r)
	if err != nil {
		return
	}

	payout, err := h.payoutSvc.Update(r.Context(), payoutID, service.UpdatePayoutInput{
		Status:  req.Status,
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPayoutNotFound):
			RespondError(w, r, http.StatusNotFound, "payout/not-found", "Payout not found")
		case errors.Is(err, models.ErrInvalidStatus):
			RespondError(w, r, http.StatusBadRequest, "payout/invalid-status", "Invalid payout status")
		case errors.Is(err, models.ErrTerminalStatus):
			RespondError(w, r, http.StatusConflict, "payout/terminal-status", "Payout is in a terminal status and cannot change status")
		default:
			zap.L().Error("update payout failed", zap.Error(err), zap.String("payout_id", payoutID.String()))
			RespondError(w, r, http.StatusInternalServerError, "payout/update-failed", "Failed to update payout")
		}
		return
	}

	RespondJSON(w, http.StatusOK, payout)
}

// DeletePayout handles DELETE /api/payouts/{id}.
func (h *PayoutHandler) DeletePayout(w http.ResponseWriter, r *http.Request) {
	payoutID, ok := payoutIDParam(w, r)
	if !ok {
		return
	}

	if err := h.payoutSvc.Delete(r.Context(), payoutID); err != nil {
		if errors.Is(err, models.ErrPayoutNotFound) {
			RespondError(w, r, http.StatusNotFound, "payout/not-found", "Payout not found")
			return
		}
		zap.L().Error("delete payout failed", zap.Error(err), zap.String("payout_id", payoutID.String()))
		RespondError(w, r, http.StatusInternalServerError, "payout/delete-failed", "Failed to delete payout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func payoutIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	payoutID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-payout-id", "Invalid payout ID")
		return uuid.Nil, false
	}
	return payoutID, true
}
