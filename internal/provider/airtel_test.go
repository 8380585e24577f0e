package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/masembe/momopay-backend/internal/config"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/shopspring/decimal"
)

func newAirtelTestServer(t *testing.T, payStatus int, statusResponse string) (*httptest.Server, *airtelPayRequest) {
	t.Helper()
	var captured airtelPayRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["grant_type"] != "client_credentials" || req["client_id"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "airtel-token", "expires_in": 3600})
	})
	mux.HandleFunc("/merchant/v1/payments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer airtel-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": statusResponse})
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(payStatus)
	})
	return httptest.NewServer(mux), &captured
}

func newAirtelTestAdapter(baseURL string) *AirtelAdapter {
	cfg := config.ProviderConfig{
		BaseURL:      baseURL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
	return NewAirtelAdapter(cfg, NewTokenStore(), 5*time.Second)
}

func TestAirtelInitiate(t *testing.T) {
	srv, captured := newAirtelTestServer(t, http.StatusOK, "PENDING")
	defer srv.Close()

	a := newAirtelTestAdapter(srv.URL)
	ref, err := a.Initiate(context.Background(), "0701987654", decimal.RequireFromString("2500.50"), "UGX")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if captured.Reference != ref || captured.Transaction.ID != ref {
		t.Errorf("payload references = (%q, %q), want %q in both", captured.Reference, captured.Transaction.ID, ref)
	}
	if captured.Subscriber.MSISDN != "256701987654" {
		t.Errorf("msisdn = %q, want normalized 256701987654", captured.Subscriber.MSISDN)
	}
	if captured.Transaction.Amount != "2500.5" {
		t.Errorf("amount = %q", captured.Transaction.Amount)
	}
	if captured.Subscriber.Country != "UGA" || captured.Transaction.Country != "UGA" {
		t.Errorf("country = (%q, %q), want UGA", captured.Subscriber.Country, captured.Transaction.Country)
	}
}

func TestAirtelInitiateRejected(t *testing.T) {
	srv, _ := newAirtelTestServer(t, http.StatusBadRequest, "PENDING")
	defer srv.Close()

	a := newAirtelTestAdapter(srv.URL)
	_, err := a.Initiate(context.Background(), "0701987654", decimal.NewFromInt(100), "UGX")
	var ie *InitiationError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InitiationError", err)
	}
	if ie.Provider != models.ProviderAirtel {
		t.Errorf("provider = %s", ie.Provider)
	}
}

func TestAirtelCheckStatus(t *testing.T) {
	srv, _ := newAirtelTestServer(t, http.StatusOK, "FAILED")
	defer srv.Close()

	a := newAirtelTestAdapter(srv.URL)
	status, err := a.CheckStatus(context.Background(), "some-ref")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != models.PaymentFailed {
		t.Errorf("status = %s, want failed", status)
	}
}

func TestAirtelNormalizeStatus(t *testing.T) {
	a := newAirtelTestAdapter("http://unused")
	cases := []struct {
		raw  string
		want models.PaymentStatus
	}{
		{"SUCCESS", models.PaymentSucceeded},
		{"success", models.PaymentSucceeded},
		{"FAILED", models.PaymentFailed},
		{"IN_PROCESS", models.PaymentPending},
		{"TS", models.PaymentPending},
		{"", models.PaymentPending},
	}
	for _, c := range cases {
		if got := a.NormalizeStatus(c.raw); got != c.want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}
