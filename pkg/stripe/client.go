package stripe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const gatewayName = "card"

type Event = stripe.Event

// Client authorizes card payments up front and captures them once the
// shopper confirmed the intent client side.
type Client interface {
	CreateIntent(ctx context.Context, userID string, amount decimal.Decimal) (*models.PaymentIntent, error)
	CaptureIntent(ctx context.Context, intentID string) (*models.CaptureResult, error)
	VerifyWebhookSignature(payload []byte, signature string) (Event, error)
}

type stripeClient struct {
	api           *client.API
	currency      money.Currency
	webhookSecret string
}

// NewStripeClient keeps the key on its own client.API; the package level
// stripe.Key is never touched.
func NewStripeClient(apiKey, webhookSecret string, currency money.Currency, timeout time.Duration) Client {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		MaxNetworkRetries: stripe.Int64(0),
	})

	return NewStripeClientWithBackend(apiKey, webhookSecret, currency, backend)
}

// NewStripeClientWithBackend uses backend for every call; nil selects the
// library defaults.
func NewStripeClientWithBackend(apiKey, webhookSecret string, currency money.Currency, backend stripe.Backend) Client {
	var backends *stripe.Backends
	if backend != nil {
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	api := &client.API{}
	api.Init(apiKey, backends)

	return &stripeClient{api: api, currency: currency, webhookSecret: webhookSecret}
}

func (s *stripeClient) CreateIntent(ctx context.Context, userID string, amount decimal.Decimal) (*models.PaymentIntent, error) {
	if !amount.IsPositive() {
		return nil, appErrors.ValidationError("Payment amount must be greater than zero")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(s.currency.ToMinor(amount)),
		Currency:      stripe.String(strings.ToLower(s.currency.Code)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapError("Failed to create card payment", err)
	}

	metrics.GatewayRequest(gatewayName, metrics.OutcomeSuccess)

	return &models.PaymentIntent{
		ID:           pi.ID,
		Provider:     models.ProviderCard,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (s *stripeClient) CaptureIntent(ctx context.Context, intentID string) (*models.CaptureResult, error) {
	if intentID == "" {
		return nil, appErrors.ValidationError("Intent id is required")
	}

	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Capture(intentID, params)
	if err != nil {
		return nil, mapError("Failed to capture card payment", err)
	}

	metrics.GatewayRequest(gatewayName, metrics.OutcomeSuccess)

	result := &models.CaptureResult{
		ID:        pi.ID,
		Status:    string(pi.Status),
		Amount:    s.currency.FromMinor(pi.AmountReceived),
		Currency:  strings.ToUpper(string(pi.Currency)),
		CreatedAt: time.Unix(pi.Created, 0).UTC(),
	}

	if pi.LatestCharge != nil {
		result.CaptureID = pi.LatestCharge.ID
	}

	return result, nil
}

func (s *stripeClient) VerifyWebhookSignature(payload []byte, signature string) (Event, error) {
	if s.webhookSecret == "" {
		return Event{}, appErrors.InternalError("Webhook secret not configured")
	}

	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return Event{}, appErrors.ValidationError("Invalid webhook signature").WithError(err)
	}

	return event, nil
}

func mapError(message string, err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		slog.Error(message, slog.String("gateway", gatewayName), slog.String("error", err.Error()))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)

		return appErrors.GatewayUnreachableError("Card gateway is unreachable").WithError(err)
	}

	slog.Error(message,
		slog.String("gateway", gatewayName),
		slog.String("type", string(stripeErr.Type)),
		slog.String("code", string(stripeErr.Code)),
		slog.Int("status", stripeErr.HTTPStatusCode),
	)

	if stripeErr.HTTPStatusCode == http.StatusUnauthorized {
		metrics.GatewayRequest(gatewayName, metrics.OutcomeAuthFailed)
		return appErrors.AuthFailedError("Card gateway authentication failed").WithError(err)
	}

	metrics.GatewayRequest(gatewayName, metrics.OutcomeRejected)

	status := string(stripeErr.Code)
	if status == "" {
		status = strconv.Itoa(stripeErr.HTTPStatusCode)
	}

	return appErrors.GatewayRejectedError(status, stripeErr.Msg).WithError(err)
}
