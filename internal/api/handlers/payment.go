package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

const maxWebhookBytes = 64 << 10

// PaymentHandler receives the gateways' server to server callbacks. These
// routes carry no user token; the payloads are signature checked instead.
type PaymentHandler struct {
	checkoutService service.CheckoutService
	paymentService  service.PaymentService
	validator       *validator.Validate
}

func NewPaymentHandler(checkoutService service.CheckoutService, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{checkoutService: checkoutService, paymentService: paymentService, validator: validator.New()}
}

// WalletNotify answers 204 once the order is settled; the wallet retries
// anything else.
func (h *PaymentHandler) WalletNotify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var cb models.WalletCallback
		if !utils.ParseAndValidate(r, w, &cb, h.validator) {
			logger.Warn("Invalid wallet notification")
			return
		}

		logger = logger.With(slog.String("orderId", cb.OrderID), slog.Int("resultCode", cb.ResultCode))

		result, err := h.checkoutService.CompleteWalletCheckout(r.Context(), &cb)
		if err != nil {
			logger.Error("Failed to settle wallet payment", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Wallet payment settled", slog.String("settledOrderId", result.Order.ID.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *PaymentHandler) CardWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			logger.Error("Error reading webhook body", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Failed to read request body"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("Missing card webhook signature")
			response.Error(w, errors.BadRequestError("Stripe-Signature header is required"))
			return
		}

		event, err := h.paymentService.ProcessCardWebhook(r.Context(), payload, signature)
		if err != nil {
			logger.Error("Failed to process card webhook",
				slog.String("eventId", event.ID),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Card webhook processed", slog.String("eventId", event.ID), slog.String("type", string(event.Type)))
		response.Success(w, http.StatusOK, map[string]bool{"received": true})
	}
}
