package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/masembe/momopay-backend/internal/api/httpx"
	"github.com/masembe/momopay-backend/internal/metrics"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/masembe/momopay-backend/internal/services"
)

// WebhookHandler receives provider status notifications. Providers retry
// delivery on any non-2xx response, so duplicates, unknown references and
// unrecognized statuses all answer success; only malformed payloads and
// internal faults answer 500, inviting a retry.
type WebhookHandler struct {
	reconcile *services.ReconcileService
}

func NewWebhookHandler(rc *services.ReconcileService) *WebhookHandler {
	return &WebhookHandler{reconcile: rc}
}

type webhookAck struct {
	Status string `json:"status"`
}

// mtnWebhook is MTN's flat notification shape. externalId carries our
// transaction reference.
type mtnWebhook struct {
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
	ExternalID  string `json:"externalId"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func (h *WebhookHandler) MTN(w http.ResponseWriter, r *http.Request) {
	var body mtnWebhook
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ExternalID == "" {
		metrics.WebhooksReceived.WithLabelValues(string(models.ProviderMTN), "malformed").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, "malformed_webhook", "missing correlation fields", nil)
		return
	}
	h.apply(w, r, models.ProviderMTN, body.ExternalID, body.Status)
}

// airtelWebhook nests transaction and payment objects; payment.reference
// carries our transaction reference.
type airtelWebhook struct {
	Transaction struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"transaction"`
	Payment struct {
		Reference string `json:"reference"`
	} `json:"payment"`
}

func (h *WebhookHandler) Airtel(w http.ResponseWriter, r *http.Request) {
	var body airtelWebhook
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Payment.Reference == "" {
		metrics.WebhooksReceived.WithLabelValues(string(models.ProviderAirtel), "malformed").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, "malformed_webhook", "missing correlation fields", nil)
		return
	}
	h.apply(w, r, models.ProviderAirtel, body.Payment.Reference, body.Transaction.Status)
}

func (h *WebhookHandler) apply(w http.ResponseWriter, r *http.Request, p models.Provider, reference, rawStatus string) {
	outcome, err := h.reconcile.Apply(r.Context(), services.StatusEvent{
		Provider:  p,
		Reference: reference,
		RawStatus: rawStatus,
		Source:    services.SourceWebhook,
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		return
	}
	metrics.WebhooksReceived.WithLabelValues(string(p), string(outcome)).Inc()
	httpx.WriteJSON(w, http.StatusOK, webhookAck{Status: "success"})
}
