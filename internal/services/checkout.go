package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/money"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/oauthpay"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/stripe"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	StartCheckout(ctx context.Context, userID uuid.UUID, email string, req *models.CheckoutRequest) (*models.CheckoutResponse, error)
	CompleteIntentCheckout(ctx context.Context, userID uuid.UUID, reference string) (*models.SettlementResult, error)
	CompleteWalletCheckout(ctx context.Context, cb *models.WalletCallback) (*models.SettlementResult, error)
}

// Gateways groups the payment providers. Card is optional.
type Gateways struct {
	Wallet wallet.Client
	PayPal oauthpay.Client
	Card   stripe.Client
}

type checkoutService struct {
	carts    CartService
	coupons  CouponService
	orders   OrderService
	gateways Gateways
	pending  cache.Cache
	cfg      *config.Checkout
	currency money.Currency
	now      func() time.Time
}

func NewCheckoutService(carts CartService, coupons CouponService, orders OrderService, gateways Gateways, pending cache.Cache, cfg *config.Config) CheckoutService {
	return &checkoutService{
		carts:    carts,
		coupons:  coupons,
		orders:   orders,
		gateways: gateways,
		pending:  pending,
		cfg:      &cfg.Checkout,
		currency: cfg.Checkout.StoreCurrency(),
		now:      time.Now,
	}
}

// StartCheckout prices the cart, opens a payment with the chosen provider and
// parks the checkout until the provider reports back.
func (s *checkoutService) StartCheckout(ctx context.Context, userID uuid.UUID, email string, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, appErrors.ValidationError("Cart is empty")
	}

	discount := decimal.Zero
	if req.CouponCode != "" {
		discount, err = s.coupons.Validate(ctx, req.CouponCode, cart.Subtotal)
		if err != nil {
			return nil, err
		}
	}

	// Every provider is charged the same amount in the store currency.
	discount = s.currency.Round(discount)
	total := s.currency.Round(cart.Subtotal.Sub(discount))
	address := req.ShippingAddress
	utils.SanitizeAddress(&address)

	resp := &models.CheckoutResponse{
		Provider: req.Provider,
		Subtotal: cart.Subtotal,
		Discount: discount,
		Total:    total,
		Currency: s.currency.Code,
	}

	gatewayCtx, cancel := utils.WithGatewayTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	switch req.Provider {
	case models.ProviderWallet:
		payment, err := s.gateways.Wallet.CreatePayment(gatewayCtx, userID.String(), walletAmount(total))
		if err != nil {
			return nil, err
		}

		resp.Reference = payment.OrderID
		resp.RedirectURL = payment.PayURL

	case models.ProviderPayPal:
		intent, err := s.gateways.PayPal.CreateIntent(gatewayCtx, userID.String(), total)
		if err != nil {
			return nil, err
		}

		resp.Reference = intent.ID
		resp.RedirectURL = intent.ApprovalURL

	case models.ProviderCard:
		if s.gateways.Card == nil {
			return nil, appErrors.BadRequestError("Card payments are not enabled")
		}

		intent, err := s.gateways.Card.CreateIntent(gatewayCtx, userID.String(), total)
		if err != nil {
			return nil, err
		}

		resp.Reference = intent.ID
		resp.ClientSecret = intent.ClientSecret

	default:
		return nil, appErrors.AddValidationError("provider", "must be one of wallet, paypal, card")
	}

	pending := &models.PendingCheckout{
		Reference:       resp.Reference,
		Provider:        req.Provider,
		UserID:          userID,
		Email:           email,
		Items:           cart.Items,
		Subtotal:        cart.Subtotal,
		Discount:        discount,
		Total:           total,
		Currency:        s.currency.Code,
		CouponCode:      req.CouponCode,
		ShippingAddress: address,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.pending.Set(ctx, pendingKey(resp.Reference), pending, s.cfg.PendingTTL); err != nil {
		return nil, appErrors.InternalError("Failed to record checkout").WithError(err)
	}

	logger.Info("Checkout started",
		slog.String("reference", resp.Reference),
		slog.String("provider", string(req.Provider)),
		slog.String("total", s.currency.Format(total)),
		slog.String("currency", s.currency.Code),
	)

	return resp, nil
}

// CompleteIntentCheckout captures an approved PayPal or card intent and settles it.
func (s *checkoutService) CompleteIntentCheckout(ctx context.Context, userID uuid.UUID, reference string) (*models.SettlementResult, error) {
	pending, err := s.loadPending(ctx, reference)
	if err != nil {
		return nil, err
	}

	if pending.UserID != userID {
		return nil, appErrors.ForbiddenError("Checkout belongs to another user")
	}

	gatewayCtx, cancel := utils.WithGatewayTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	var (
		capture  *models.CaptureResult
		expected string
	)

	switch pending.Provider {
	case models.ProviderPayPal:
		capture, err = s.gateways.PayPal.CaptureIntent(gatewayCtx, reference)
		expected = models.PaymentStatusCompleted

	case models.ProviderCard:
		if s.gateways.Card == nil {
			return nil, appErrors.BadRequestError("Card payments are not enabled")
		}

		capture, err = s.gateways.Card.CaptureIntent(gatewayCtx, reference)
		expected = models.PaymentStatusSucceeded

	default:
		return nil, appErrors.BadRequestError("Wallet checkouts complete through the gateway notification")
	}

	if err != nil {
		return nil, err
	}

	if capture.Status != expected {
		return nil, appErrors.GatewayRejectedError(capture.Status, "Payment was not completed")
	}

	if capture.Currency != "" && !s.currency.Same(capture.Currency) {
		return nil, appErrors.GatewayRejectedError(capture.Currency, "Payment was captured in another currency")
	}

	payment := models.PaymentResult{
		Provider:      pending.Provider,
		TransactionID: capture.CaptureID,
		Status:        capture.Status,
		Amount:        capture.Amount,
		Currency:      s.currency.Code,
	}

	if payment.TransactionID == "" {
		payment.TransactionID = capture.ID
	}

	if payment.Amount.IsZero() {
		payment.Amount = pending.Total
	}

	return s.settle(ctx, pending, payment)
}

// CompleteWalletCheckout handles the wallet's signed payment notification.
func (s *checkoutService) CompleteWalletCheckout(ctx context.Context, cb *models.WalletCallback) (*models.SettlementResult, error) {
	logger := middleware.LoggerFromContext(ctx)

	if cb == nil {
		return nil, appErrors.BadRequestError("Missing wallet notification")
	}

	if err := s.gateways.Wallet.VerifyCallback(cb); err != nil {
		logger.Warn("Rejected wallet notification", slog.String("order_id", cb.OrderID), slog.String("error", err.Error()))
		return nil, err
	}

	pending, err := s.loadPending(ctx, cb.OrderID)
	if err != nil {
		return nil, err
	}

	if pending.Provider != models.ProviderWallet {
		return nil, appErrors.BadRequestError("Checkout was not started with the wallet")
	}

	if cb.ResultCode != 0 {
		s.dropPending(ctx, cb.OrderID)
		return nil, appErrors.GatewayRejectedError(strconv.Itoa(cb.ResultCode), cb.Message)
	}

	if cb.Amount != walletAmount(pending.Total) {
		return nil, appErrors.ValidationError("Notified amount does not match the checkout").
			WithDetail("notified: " + strconv.FormatInt(cb.Amount, 10))
	}

	payment := models.PaymentResult{
		Provider:      models.ProviderWallet,
		TransactionID: strconv.FormatInt(cb.TransID, 10),
		Status:        models.PaymentStatusCompleted,
		Amount:        decimal.NewFromInt(cb.Amount),
		Currency:      s.currency.Code,
	}

	return s.settle(ctx, pending, payment)
}

func (s *checkoutService) settle(ctx context.Context, pending *models.PendingCheckout, payment models.PaymentResult) (*models.SettlementResult, error) {
	result, err := s.orders.PlaceOrder(ctx, &models.PlaceOrderRequest{
		Reference:       pending.Reference,
		UserID:          pending.UserID,
		Email:           pending.Email,
		Items:           pending.Items,
		ShippingAddress: pending.ShippingAddress,
		CouponCode:      pending.CouponCode,
		Discount:        pending.Discount,
		Payment:         payment,
	})
	if err != nil {
		return nil, err
	}

	s.dropPending(ctx, pending.Reference)

	return result, nil
}

func (s *checkoutService) loadPending(ctx context.Context, reference string) (*models.PendingCheckout, error) {
	if reference == "" {
		return nil, appErrors.AddValidationError("reference", "is required")
	}

	var pending models.PendingCheckout

	found, err := s.pending.Get(ctx, pendingKey(reference), &pending)
	if err != nil {
		return nil, appErrors.InternalError("Failed to load checkout").WithError(err)
	}

	if !found {
		return nil, appErrors.NotFoundError("Checkout not found or expired")
	}

	return &pending, nil
}

func (s *checkoutService) dropPending(ctx context.Context, reference string) {
	if err := s.pending.Delete(ctx, pendingKey(reference)); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to delete pending checkout",
			slog.String("reference", reference),
			slog.String("error", err.Error()),
		)
	}
}

func pendingKey(reference string) string {
	return cache.Key(cache.CheckoutKeyPrefix, reference)
}

// walletAmount rounds to whole currency units; the wallet has no minor unit.
func walletAmount(total decimal.Decimal) int64 {
	return total.Round(0).IntPart()
}
