package provider

import (
	"bytes"
	"context"
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

// AirtelAdapter integrates the Airtel Money merchant payments API.
type AirtelAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
	tokens *TokenStore
	cb     *gobreaker.CircuitBreaker
}

func NewAirtelAdapter(cfg config.ProviderConfig, tokens *TokenStore, timeout time.Duration) *AirtelAdapter {
	a := &AirtelAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		tokens: tokens,
		cb:     gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "airtel"}),
	}
	tokens.Register(models.ProviderAirtel, a.fetchToken)
	return a
}

func (a *AirtelAdapter) Name() models.Provider { return models.ProviderAirtel }

// fetchToken runs the oauth2 client-credentials grant.
func (a *AirtelAdapter) fetchToken(ctx context.Context) (string, time.Duration, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     a.cfg.ClientID,
		"client_secret": a.cfg.ClientSecret,
		"grant_type":    "client_credentials",
	})
	if err != nil {
		return "", 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/auth/oauth2/token", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(detail))
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

type airtelSubscriber struct {
	Country  string `json:"country"`
	Currency string `json:"currency"`
	MSISDN   string `json:"msisdn"`
}

type airtelTransaction struct {
	Amount   string `json:"amount"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	ID       string `json:"id"`
}

type airtelPayRequest struct {
	Reference   string            `json:"reference"`
	Subscriber  airtelSubscriber  `json:"subscriber"`
	Transaction airtelTransaction `json:"transaction"`
}

func (a *AirtelAdapter) Initiate(ctx context.Context, phone string, amount decimal.Decimal, currency string) (string, error) {
	token, err := a.tokens.Get(ctx, models.ProviderAirtel)
	if err != nil {
		return "", err
	}

	reference := uuid.NewString()
	payload := airtelPayRequest{
		Reference: reference,
		Subscriber: airtelSubscriber{
			Country:  "UGA",
			Currency: currency,
			MSISDN:   normalizePhone(phone),
		},
		Transaction: airtelTransaction{
			Amount:   amount.String(),
			Country:  "UGA",
			Currency: currency,
			ID:       reference,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &InitiationError{Provider: models.ProviderAirtel, Err: err}
	}

	_, err = a.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/merchant/v1/payments/", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			detail, _ := io.ReadAll(resp.Body)
			return nil, &InitiationError{Provider: models.ProviderAirtel, Detail: strings.TrimSpace(string(detail))}
		}
		return nil, nil
	})
	if err != nil {
		if ie, ok := err.(*InitiationError); ok {
			return "", ie
		}
		return "", &InitiationError{Provider: models.ProviderAirtel, Err: err}
	}
	return reference, nil
}

func (a *AirtelAdapter) CheckStatus(ctx context.Context, reference string) (models.PaymentStatus, error) {
	token, err := a.tokens.Get(ctx, models.ProviderAirtel)
	if err != nil {
		return "", &StatusCheckError{Provider: models.ProviderAirtel, Reference: reference, Err: err}
	}

	raw, err := a.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"/merchant/v1/payments/"+reference, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

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
		return "", &StatusCheckError{Provider: models.ProviderAirtel, Reference: reference, Err: err}
	}
	return a.NormalizeStatus(raw.(string)), nil
}

// NormalizeStatus maps Airtel's vocabulary onto the local one. Unrecognized
// values stay pending.
func (a *AirtelAdapter) NormalizeStatus(raw string) models.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCESS":
		return models.PaymentSucceeded
	case "FAILED":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}
