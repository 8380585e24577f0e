package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/masembe/momopay-backend/internal/api/httpx"
	"github.com/masembe/momopay-backend/internal/api/validate"
	"github.com/masembe/momopay-backend/internal/middleware"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/masembe/momopay-backend/internal/provider"
	"github.com/masembe/momopay-backend/internal/services"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(p *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: p}
}

type payReq struct {
	Provider    string          `json:"provider"`
	PhoneNumber string          `json:"phone_number"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

// Pay places an order and initiates collection with the chosen provider.
// The response carries the pending order; settlement arrives later through
// the webhook or the poller.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing user", nil)
		return
	}

	var req payReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	order, err := h.payments.Checkout(r.Context(), uid, models.Provider(req.Provider), req.PhoneNumber, req.Amount, req.Currency)
	if err != nil {
		var verrs validate.Errs
		var initErr *provider.InitiationError
		var authErr *provider.AuthError
		switch {
		case errors.As(err, &verrs):
			httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid payment request", verrs)
		case errors.Is(err, provider.ErrUnsupportedProvider):
			httpx.WriteError(w, http.StatusBadRequest, "unsupported_provider", err.Error(), nil)
		case errors.As(err, &initErr), errors.As(err, &authErr):
			httpx.WriteError(w, http.StatusBadGateway, "payment_initiation_failed", "payment could not be started", nil)
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, order)
}

func (h *PaymentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.payments.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "order not found", nil)
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *PaymentHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing user", nil)
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	orders, err := h.payments.ListOrdersByUser(r.Context(), uid, limit, offset)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}
