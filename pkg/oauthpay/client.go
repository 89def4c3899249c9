// Package oauthpay talks to an OAuth2 protected order/capture payment API
// (PayPal Orders v2 compatible).
package oauthpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	gatewayName = "paypal"

	tokenPath   = "/v1/oauth2/token"
	ordersPath  = "/v2/checkout/orders"
	capturePath = "/v2/checkout/orders/%s/capture"

	// Tokens are dropped from the cache this long before the gateway expires them.
	tokenExpiryMargin = 60 * time.Second

	maxBodyLog = 2048
)

type Client interface {
	GetAccessToken(ctx context.Context) (string, error)
	CreateIntent(ctx context.Context, userID string, amount decimal.Decimal) (*models.PaymentIntent, error)
	CaptureIntent(ctx context.Context, intentID string) (*models.CaptureResult, error)
}

type oauthClient struct {
	cfg         *config.PayPal
	currency    money.Currency
	currencyErr error
	tokens      cache.Cache
	http        *http.Client
	timeout     time.Duration
}

// NewClient returns a client caching access tokens in tokens. A nil cache
// fetches a token for every call.
func NewClient(cfg *config.PayPal, tokens cache.Cache, timeout time.Duration) Client {
	currency, err := money.Parse(cfg.Currency)

	return &oauthClient{
		cfg:         cfg,
		currency:    currency,
		currencyErr: err,
		tokens:      tokens,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
	Payments    *struct {
		Captures []capture `json:"captures"`
	} `json:"payments,omitempty"`
}

type capture struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Amount     amount    `json:"amount"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

type applicationContext struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Links         []link         `json:"links"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

func (c *oauthClient) tokenKey() string {
	return cache.Key(cache.OAuthTokenKeyPrefix, c.cfg.ClientID)
}

// GetAccessToken returns a cached token when one is still valid, otherwise
// performs the client credentials exchange.
func (c *oauthClient) GetAccessToken(ctx context.Context) (string, error) {
	if c.tokens != nil {
		var token string

		found, err := c.tokens.Get(ctx, c.tokenKey(), &token)
		if err != nil {
			slog.Warn("Token cache read failed", slog.String("error", err.Error()))
		}

		if found && token != "" {
			return token, nil
		}
	}

	return c.fetchToken(ctx)
}

func (c *oauthClient) fetchToken(ctx context.Context) (string, error) {
	ctx, cancel := utils.WithGatewayTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", appErrors.InternalError("Failed to build token request").WithError(err)
	}

	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Token endpoint unreachable", slog.String("gateway", gatewayName), slog.String("error", err.Error()))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)

		return "", appErrors.GatewayUnreachableError("Payment gateway is unreachable").WithError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Token response unreadable", slog.String("gateway", gatewayName), slog.String("error", err.Error()))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)

		return "", appErrors.GatewayUnreachableError("Failed to read token response").WithError(err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Access token request failed",
			slog.String("gateway", gatewayName),
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(raw)),
		)
		metrics.GatewayRequest(gatewayName, metrics.OutcomeAuthFailed)

		return "", appErrors.AuthFailedError("Payment gateway authentication failed").
			WithDetail("gateway status: " + strconv.Itoa(resp.StatusCode))
	}

	var token tokenResponse
	if err := json.Unmarshal(raw, &token); err != nil || token.AccessToken == "" {
		slog.Error("Malformed token response", slog.String("gateway", gatewayName), slog.String("body", truncate(raw)))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeAuthFailed)

		return "", appErrors.AuthFailedError("Payment gateway returned no access token")
	}

	if ttl := time.Duration(token.ExpiresIn)*time.Second - tokenExpiryMargin; c.tokens != nil && ttl > 0 {
		if err := c.tokens.Set(ctx, c.tokenKey(), token.AccessToken, ttl); err != nil {
			slog.Warn("Token cache write failed", slog.String("error", err.Error()))
		}
	}

	return token.AccessToken, nil
}

func (c *oauthClient) invalidateToken(ctx context.Context) {
	if c.tokens == nil {
		return
	}

	if err := c.tokens.Delete(ctx, c.tokenKey()); err != nil {
		slog.Warn("Token cache delete failed", slog.String("error", err.Error()))
	}
}

func (c *oauthClient) CreateIntent(ctx context.Context, userID string, amt decimal.Decimal) (*models.PaymentIntent, error) {
	if !amt.IsPositive() {
		return nil, appErrors.ValidationError("Payment amount must be greater than zero")
	}

	if c.currencyErr != nil {
		return nil, appErrors.InternalError("Payment gateway currency is not configured").WithError(c.currencyErr)
	}

	logger := slog.Default().With(slog.String("gateway", gatewayName), slog.String("userId", userID))

	referenceID := uuid.NewString()
	payload := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: referenceID,
			Amount:      amount{CurrencyCode: c.currency.Code, Value: c.currency.Format(amt)},
			Description: "Storefront order",
		}},
		ApplicationContext: applicationContext{ReturnURL: c.cfg.ReturnURL, CancelURL: c.cfg.CancelURL},
	}

	status, raw, err := c.authorizedPost(ctx, c.cfg.BaseURL+ordersPath, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		logger.Error("Create order rejected", slog.Int("status", status), slog.String("body", truncate(raw)))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeRejected)

		return nil, appErrors.GatewayRejectedError(strconv.Itoa(status), truncate(raw))
	}

	var order orderResponse
	if err := json.Unmarshal(raw, &order); err != nil {
		logger.Error("Malformed create order response", slog.String("error", err.Error()))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeParseError)

		return nil, appErrors.ParseError("Malformed payment gateway response").WithError(err)
	}

	var approval string
	for _, l := range order.Links {
		if l.Rel == "approve" {
			approval = l.Href
			break
		}
	}

	if approval == "" {
		logger.Error("Create order response has no approve link", slog.String("intent_id", order.ID))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeParseError)

		return nil, appErrors.NoApprovalLinkError("Payment gateway returned no approval link")
	}

	metrics.GatewayRequest(gatewayName, metrics.OutcomeSuccess)
	logger.Info("Payment intent created", slog.String("intent_id", order.ID))

	return &models.PaymentIntent{
		ID:          order.ID,
		Provider:    models.ProviderPayPal,
		ReferenceID: referenceID,
		ApprovalURL: approval,
		Status:      order.Status,
	}, nil
}

// CaptureIntent captures an approved intent. Calling it twice for the same
// intent is left to the gateway to reject.
func (c *oauthClient) CaptureIntent(ctx context.Context, intentID string) (*models.CaptureResult, error) {
	if intentID == "" {
		return nil, appErrors.ValidationError("Intent id is required")
	}

	logger := slog.Default().With(slog.String("gateway", gatewayName), slog.String("intent_id", intentID))

	status, raw, err := c.authorizedPost(ctx, c.cfg.BaseURL+fmt.Sprintf(capturePath, url.PathEscape(intentID)), struct{}{})
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		logger.Error("Capture rejected", slog.Int("status", status), slog.String("body", truncate(raw)))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeRejected)

		return nil, appErrors.GatewayRejectedError(strconv.Itoa(status), truncate(raw))
	}

	var order orderResponse
	if err := json.Unmarshal(raw, &order); err != nil || order.ID == "" {
		logger.Error("Malformed capture response", slog.String("body", truncate(raw)))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeParseError)

		return nil, appErrors.ParseError("Malformed payment gateway response")
	}

	result := &models.CaptureResult{ID: order.ID, Status: order.Status}

	for _, unit := range order.PurchaseUnits {
		if unit.Payments == nil || len(unit.Payments.Captures) == 0 {
			continue
		}

		cp := unit.Payments.Captures[0]
		result.CaptureID = cp.ID
		result.Currency = cp.Amount.CurrencyCode
		result.CreatedAt = cp.CreateTime
		result.UpdatedAt = cp.UpdateTime

		if v, err := decimal.NewFromString(cp.Amount.Value); err == nil {
			result.Amount = v
		}

		break
	}

	metrics.GatewayRequest(gatewayName, metrics.OutcomeSuccess)
	logger.Info("Payment captured", slog.String("status", result.Status))

	return result, nil
}

// authorizedPost sends body with a bearer token. A 401 drops the cached token
// and the call is repeated once with a fresh one.
func (c *oauthClient) authorizedPost(ctx context.Context, endpoint string, body any) (int, []byte, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	status, raw, err := c.post(ctx, endpoint, token, body)
	if err != nil || status != http.StatusUnauthorized {
		return status, raw, err
	}

	c.invalidateToken(ctx)

	token, err = c.fetchToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	return c.post(ctx, endpoint, token, body)
}

func (c *oauthClient) post(ctx context.Context, endpoint, token string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, appErrors.InternalError("Failed to encode gateway request").WithError(err)
	}

	ctx, cancel := utils.WithGatewayTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, appErrors.InternalError("Failed to build gateway request").WithError(err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Payment gateway unreachable", slog.String("gateway", gatewayName), slog.String("error", err.Error()))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)

		return 0, nil, appErrors.GatewayUnreachableError("Payment gateway is unreachable").WithError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)
		return 0, nil, appErrors.GatewayUnreachableError("Failed to read gateway response").WithError(err)
	}

	return resp.StatusCode, raw, nil
}

func truncate(b []byte) string {
	if len(b) > maxBodyLog {
		return string(b[:maxBodyLog]) + "..."
	}

	return string(b)
}
