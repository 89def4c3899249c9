package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/signature"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	gatewayName = "wallet"
	requestType = "captureWallet"
	maxBodyLog  = 2048
)

type Client interface {
	CreatePayment(ctx context.Context, userID string, amount int64) (*models.WalletPayment, error)
	VerifyCallback(cb *models.WalletCallback) error
}

type walletClient struct {
	cfg     *config.Wallet
	http    *http.Client
	timeout time.Duration
}

func NewClient(cfg *config.Wallet, timeout time.Duration) Client {
	return &walletClient{
		cfg: cfg,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
	}
}

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	NotifyURL   string `json:"notifyUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang,omitempty"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	RequestID  string `json:"requestId"`
	OrderID    string `json:"orderId"`
	PayURL     string `json:"payUrl"`
	ResultCode *int   `json:"resultCode"`
	Message    string `json:"message"`
}

// CreatePayment registers a payment with the wallet and returns the URL the
// shopper is redirected to. Amount is in whole currency units.
func (c *walletClient) CreatePayment(ctx context.Context, userID string, amount int64) (*models.WalletPayment, error) {
	if amount <= 0 {
		return nil, appErrors.ValidationError("Payment amount must be greater than zero")
	}

	logger := slog.Default().With(slog.String("gateway", gatewayName), slog.String("userId", userID))

	req := createRequest{
		PartnerCode: c.cfg.PartnerCode,
		RequestID:   uuid.NewString(),
		Amount:      amount,
		OrderID:     uuid.NewString(),
		OrderInfo:   c.cfg.OrderInfo,
		RedirectURL: c.cfg.RedirectURL,
		NotifyURL:   c.cfg.NotifyURL,
		RequestType: requestType,
		Lang:        c.cfg.Lang,
	}
	req.Signature = c.sign(req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.InternalError("Failed to encode wallet request").WithError(err)
	}

	ctx, cancel := utils.WithGatewayTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.InternalError("Failed to build wallet request").WithError(err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Error("Wallet gateway unreachable", slog.String("error", err.Error()))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)

		return nil, appErrors.GatewayUnreachableError("Wallet gateway is unreachable").WithError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequest(gatewayName, metrics.OutcomeUnreachable)
		return nil, appErrors.GatewayUnreachableError("Failed to read wallet response").WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Wallet gateway returned an error status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(raw)),
		)
		metrics.GatewayRequest(gatewayName, metrics.OutcomeRejected)

		return nil, appErrors.GatewayRejectedError(strconv.Itoa(resp.StatusCode), truncate(raw))
	}

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ResultCode == nil {
		if err == nil {
			err = errors.New("resultCode missing")
		}

		logger.Error("Malformed wallet response", slog.String("error", err.Error()), slog.String("body", truncate(raw)))
		metrics.GatewayRequest(gatewayName, metrics.OutcomeParseError)

		return nil, appErrors.ParseError("Malformed wallet gateway response").WithError(err)
	}

	if *out.ResultCode != 0 {
		logger.Warn("Wallet payment rejected",
			slog.Int("result_code", *out.ResultCode),
			slog.String("message", out.Message),
			slog.String("order_id", req.OrderID),
		)
		metrics.GatewayRequest(gatewayName, metrics.OutcomeRejected)

		return nil, appErrors.GatewayRejectedError(strconv.Itoa(*out.ResultCode), out.Message)
	}

	if out.PayURL == "" {
		metrics.GatewayRequest(gatewayName, metrics.OutcomeParseError)
		return nil, appErrors.ParseError("Wallet gateway response has no pay URL")
	}

	metrics.GatewayRequest(gatewayName, metrics.OutcomeSuccess)
	logger.Info("Wallet payment created", slog.String("order_id", req.OrderID))

	return &models.WalletPayment{
		RequestID: req.RequestID,
		OrderID:   req.OrderID,
		Amount:    amount,
		PayURL:    out.PayURL,
	}, nil
}

// VerifyCallback checks the signature of an instant payment notification.
func (c *walletClient) VerifyCallback(cb *models.WalletCallback) error {
	if cb == nil || cb.Signature == "" {
		return appErrors.ValidationError("Missing callback signature")
	}

	if cb.PartnerCode != c.cfg.PartnerCode {
		return appErrors.ValidationError("Unknown partner code")
	}

	message := CallbackMessage(c.cfg.AccessKey, cb)
	if !signature.Verify([]byte(message), []byte(c.cfg.SecretKey), cb.Signature) {
		return appErrors.ValidationError("Invalid callback signature")
	}

	return nil
}

func (c *walletClient) sign(req createRequest) string {
	return signature.Sign([]byte(paymentMessage(c.cfg.AccessKey, req)), []byte(c.cfg.SecretKey))
}

func paymentMessage(accessKey string, req createRequest) string {
	return signature.Canonical(
		signature.Pair{Key: "accessKey", Value: accessKey},
		signature.Pair{Key: "amount", Value: strconv.FormatInt(req.Amount, 10)},
		signature.Pair{Key: "orderId", Value: req.OrderID},
		signature.Pair{Key: "orderInfo", Value: req.OrderInfo},
		signature.Pair{Key: "partnerCode", Value: req.PartnerCode},
		signature.Pair{Key: "redirectUrl", Value: req.RedirectURL},
		signature.Pair{Key: "requestId", Value: req.RequestID},
		signature.Pair{Key: "requestType", Value: req.RequestType},
	)
}

// CallbackMessage is the canonical string a notification signature covers.
func CallbackMessage(accessKey string, cb *models.WalletCallback) string {
	return signature.Canonical(
		signature.Pair{Key: "accessKey", Value: accessKey},
		signature.Pair{Key: "amount", Value: strconv.FormatInt(cb.Amount, 10)},
		signature.Pair{Key: "extraData", Value: cb.ExtraData},
		signature.Pair{Key: "message", Value: cb.Message},
		signature.Pair{Key: "orderId", Value: cb.OrderID},
		signature.Pair{Key: "orderInfo", Value: cb.OrderInfo},
		signature.Pair{Key: "orderType", Value: cb.OrderType},
		signature.Pair{Key: "partnerCode", Value: cb.PartnerCode},
		signature.Pair{Key: "payType", Value: cb.PayType},
		signature.Pair{Key: "requestId", Value: cb.RequestID},
		signature.Pair{Key: "responseTime", Value: strconv.FormatInt(cb.ResponseTime, 10)},
		signature.Pair{Key: "resultCode", Value: strconv.Itoa(cb.ResultCode)},
		signature.Pair{Key: "transId", Value: strconv.FormatInt(cb.TransID, 10)},
	)
}

func truncate(b []byte) string {
	if len(b) > maxBodyLog {
		return fmt.Sprintf("%s...", b[:maxBodyLog])
	}

	return string(b)
}
