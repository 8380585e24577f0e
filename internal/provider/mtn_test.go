package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/masembe/momopay-backend/internal/config"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/shopspring/decimal"
)

func newMTNTestServer(t *testing.T, payStatus int, statusResponse string) (*httptest.Server, *mtnPayRequest) {
	t.Helper()
	var captured mtnPayRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/collection/token/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "mtn-token", "expires_in": 3600})
	})
	mux.HandleFunc("/collection/v1_0/requesttopay", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer mtn-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Reference-Id") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(payStatus)
	})
	mux.HandleFunc("/collection/v1_0/requesttopay/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": statusResponse})
	})
	return httptest.NewServer(mux), &captured
}

func newMTNAdapter(baseURL string) *MTNAdapter {
	cfg := config.ProviderConfig{
		BaseURL:         baseURL,
		SubscriptionKey: "sub-key",
		UserID:          "user-id",
		APIKey:          "api-key",
		TargetEnv:       "sandbox",
	}
	return NewMTNAdapter(cfg, NewTokenStore(), 5*time.Second)
}

func TestMTNInitiate(t *testing.T) {
	srv, captured := newMTNTestServer(t, http.StatusAccepted, "PENDING")
	defer srv.Close()

	a := newMTNAdapter(srv.URL)
	ref, err := a.Initiate(context.Background(), "0772123456", decimal.NewFromInt(1500), "UGX")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if ref == "" {
		t.Fatal("empty reference")
	}
	if captured.ExternalID != ref {
		t.Errorf("externalId = %q, want the returned reference %q", captured.ExternalID, ref)
	}
	if captured.Payer.PartyID != "256772123456" {
		t.Errorf("payer msisdn = %q, want normalized 256772123456", captured.Payer.PartyID)
	}
	if captured.Amount != "1500" {
		t.Errorf("amount = %q", captured.Amount)
	}
	if captured.Currency != "UGX" {
		t.Errorf("currency = %q", captured.Currency)
	}
}

func TestMTNInitiateRejected(t *testing.T) {
	srv, _ := newMTNTestServer(t, http.StatusConflict, "PENDING")
	defer srv.Close()

	a := newMTNAdapter(srv.URL)
	_, err := a.Initiate(context.Background(), "0772123456", decimal.NewFromInt(100), "UGX")
	var ie *InitiationError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InitiationError", err)
	}
	if ie.Provider != models.ProviderMTN {
		t.Errorf("provider = %s", ie.Provider)
	}
}

func TestMTNInitiateAuthFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/collection/token/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := newMTNAdapter(srv.URL)
	_, err := a.Initiate(context.Background(), "0772123456", decimal.NewFromInt(100), "UGX")
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AuthError", err)
	}
}

func TestMTNCheckStatus(t *testing.T) {
	srv, _ := newMTNTestServer(t, http.StatusAccepted, "SUCCESSFUL")
	defer srv.Close()

	a := newMTNAdapter(srv.URL)
	status, err := a.CheckStatus(context.Background(), "some-ref")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != models.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded", status)
	}
}

func TestMTNCheckStatusUnreachable(t *testing.T) {
	srv, _ := newMTNTestServer(t, http.StatusAccepted, "PENDING")
	a := newMTNAdapter(srv.URL)
	// prime the token, then kill the server so the status call fails
	if _, err := a.tokens.Get(context.Background(), models.ProviderMTN); err != nil {
		t.Fatalf("token: %v", err)
	}
	srv.Close()

	_, err := a.CheckStatus(context.Background(), "some-ref")
	var sce *StatusCheckError
	if !errors.As(err, &sce) {
		t.Fatalf("err = %v, want StatusCheckError", err)
	}
}

func TestMTNNormalizeStatus(t *testing.T) {
	a := newMTNAdapter("http://unused")
	cases := []struct {
		raw  string
		want models.PaymentStatus
	}{
		{"SUCCESSFUL", models.PaymentSucceeded},
		{"successful", models.PaymentSucceeded},
		{"FAILED", models.PaymentFailed},
		{"REJECTED", models.PaymentFailed},
		{"TIMEOUT", models.PaymentFailed},
		{"PENDING", models.PaymentPending},
		{"ONGOING", models.PaymentPending},
		{"", models.PaymentPending},
		{"SOMETHING_NEW", models.PaymentPending},
	}
	for _, c := range cases {
		if got := a.NormalizeStatus(c.raw); got != c.want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := normalizePhone("0772123456"); got != "256772123456" {
		t.Errorf("normalizePhone local = %q", got)
	}
	if got := normalizePhone("256772123456"); got != "256772123456" {
		t.Errorf("normalizePhone international = %q", got)
	}
}
