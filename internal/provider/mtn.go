package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/masembe/momopay-backend/internal/config"
	"github.com/masembe/momopay-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// MTNAdapter integrates the MTN MoMo collection API.
type MTNAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
	tokens *TokenStore
	cb     *gobreaker.CircuitBreaker
}

func NewMTNAdapter(cfg config.ProviderConfig, tokens *TokenStore, timeout time.Duration) *MTNAdapter {
	a := &MTNAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		tokens: tokens,
		cb:     gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "mtn"}),
	}
	tokens.Register(models.ProviderMTN, a.fetchToken)
	return a
}

func (a *MTNAdapter) Name() models.Provider { return models.ProviderMTN }

// fetchToken exchanges the static userId/apiKey pair plus the subscription key
// for a short-lived bearer token.
func (a *MTNAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/collection/token/", nil)
	if err != nil {
		return "", 0, err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(a.cfg.UserID + ":" + a.cfg.APIKey))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.SubscriptionKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var res struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", 0, err
	}
	return res.AccessToken, time.Duration(res.ExpiresIn) * time.Second, nil
}

type mtnPayParty struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type mtnPayRequest struct {
	Amount       string      `json:"amount"`
	Currency     string      `json:"currency"`
	ExternalID   string      `json:"externalId"`
	Payer        mtnPayParty `json:"payer"`
	PayerMessage string      `json:"payerMessage"`
	PayeeNote    string      `json:"payeeNote"`
}

// Initiate submits a requesttopay. MTN processes asynchronously and notifies
// via webhook keyed by externalId; the callback carries no synchronous result.
func (a *MTNAdapter) Initiate(ctx context.Context, phone string, amount decimal.Decimal, currency string) (string, error) {
	token, err := a.tokens.Get(ctx, models.ProviderMTN)
	if err != nil {
		return "", err
	}

	reference := uuid.NewString()
	payload := mtnPayRequest{
		Amount:       amount.String(),
		Currency:     currency,
		ExternalID:   reference,
		Payer:        mtnPayParty{PartyIDType: "MSISDN", PartyID: normalizePhone(phone)},
		PayerMessage: "Payment for order",
		PayeeNote:    "Payment request",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &InitiationError{Provider: models.ProviderMTN, Err: err}
	}

	_, err = a.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/collection/v1_0/requesttopay", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Reference-Id", reference)
		req.Header.Set("X-Target-Environment", a.cfg.TargetEnv)
		req.Header.Set("X-Callback-Url", a.cfg.CallbackURL)
		req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.SubscriptionKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			detail, _ := io.ReadAll(resp.Body)
			return nil, &InitiationError{Provider: models.ProviderMTN, Detail: strings.TrimSpace(string(detail))}
		}
		return nil, nil
	})
	if err != nil {
		if ie, ok := err.(*InitiationError); ok {
			return "", ie
		}
		return "", &InitiationError{Provider: models.ProviderMTN, Err: err}
	}
	return reference, nil
}

func (a *MTNAdapter) CheckStatus(ctx context.Context, reference string) (models.PaymentStatus, error) {
	token, err := a.tokens.Get(ctx, models.ProviderMTN)
	if err != nil {
		return "", &StatusCheckError{Provider: models.ProviderMTN, Reference: reference, Err: err}
	}

	raw, err := a.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/collection/v1_0/requesttopay/"+reference, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Target-Environment", a.cfg.TargetEnv)
		req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.SubscriptionKey)

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, string(body))
		}
		var res struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, err
		}
		return res.Status, nil
	})
	if err != nil {
		return "", &StatusCheckError{Provider: models.ProviderMTN, Reference: reference, Err: err}
	}
	return a.NormalizeStatus(raw.(string)), nil
}

// NormalizeStatus maps MTN's vocabulary onto the local one. Anything
// unrecognized stays pending to avoid false-positive settlement.
func (a *MTNAdapter) NormalizeStatus(raw string) models.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESSFUL":
		return models.PaymentSucceeded
	case "FAILED", "REJECTED", "TIMEOUT":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}
