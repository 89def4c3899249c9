package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	rateLimiter     repository.RateLimitRepository
	validator       *validator.Validate
}

// NewCheckoutHandler accepts a nil rateLimiter, which disables the limit.
func NewCheckoutHandler(checkoutService service.CheckoutService, rateLimiter repository.RateLimitRepository) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, rateLimiter: rateLimiter, validator: validator.New()}
}

func (h *CheckoutHandler) StartCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized checkout attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		if h.rateLimiter != nil {
			allowed, remaining, retryAfter, err := h.rateLimiter.CheckCheckoutRateLimit(r.Context(), claims.UserID.String())
			if err != nil {
				// Redis being down must not block payments.
				logger.Error("Checkout rate limit check failed", slog.String("error", err.Error()))
			} else if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				logger.Warn("Checkout rate limit exceeded", slog.Int("retryAfter", seconds))
				response.Error(w, errors.TooManyRequestsError("Too many checkout attempts, try again later"))
				return
			} else {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			}
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid checkout input")
			return
		}

		resp, err := h.checkoutService.StartCheckout(r.Context(), claims.UserID, claims.Email, &req)
		if err != nil {
			logger.Error("Failed to start checkout",
				slog.String("provider", string(req.Provider)),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, resp)
	}
}

// Capture completes an approved PayPal or card checkout.
func (h *CheckoutHandler) Capture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthorized capture attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))
			return
		}

		reference := r.PathValue("reference")
		logger = logger.With(slog.String("reference", reference))

		result, err := h.checkoutService.CompleteIntentCheckout(r.Context(), claims.UserID, reference)
		if err != nil {
			logger.Error("Failed to complete checkout", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Checkout completed",
			slog.String("orderId", result.Order.ID.String()),
			slog.Bool("cartCleared", result.CartCleared))
		response.Success(w, http.StatusCreated, result)
	}
}
