package service_test

import (
	"errors"
	"testing"
	"time"

	cacheMocks "github.com/aaravmahajanofficial/storefront-checkout/internal/cache/mocks"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/services/mocks"
	paypalMocks "github.com/aaravmahajanofficial/storefront-checkout/pkg/oauthpay/mocks"
	stripeMocks "github.com/aaravmahajanofficial/storefront-checkout/pkg/stripe/mocks"
	walletMocks "github.com/aaravmahajanofficial/storefront-checkout/pkg/wallet/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutMocks struct {
	carts   *mocks.CartService
	coupons *mocks.CouponService
	orders  *mocks.OrderService
	wallet  *walletMocks.Client
	paypal  *paypalMocks.Client
	card    *stripeMocks.Client
	pending *cacheMocks.Cache
}

func setupCheckoutTest(t *testing.T, withCard bool) (service.CheckoutService, checkoutMocks) {
	t.Helper()

	return setupCheckoutTestIn(t, withCard, "VND")
}

func setupCheckoutTestIn(t *testing.T, withCard bool, currency string) (service.CheckoutService, checkoutMocks) {
	t.Helper()

	m := checkoutMocks{
		carts:   mocks.NewCartService(t),
		coupons: mocks.NewCouponService(t),
		orders:  mocks.NewOrderService(t),
		wallet:  walletMocks.NewClient(t),
		paypal:  paypalMocks.NewClient(t),
		card:    stripeMocks.NewClient(t),
		pending: cacheMocks.NewCache(t),
	}

	gateways := service.Gateways{Wallet: m.wallet, PayPal: m.paypal}
	if withCard {
		gateways.Card = m.card
	}

	cfg := &config.Config{
		Checkout: config.Checkout{RequestTimeout: 5 * time.Second, PendingTTL: 30 * time.Minute, Currency: currency},
	}

	return service.NewCheckoutService(m.carts, m.coupons, m.orders, gateways, m.pending, cfg), m
}

func decEq(want string) any {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString(want))
	})
}

func cartWith(userID uuid.UUID, prices ...string) *models.Cart {
	items := make([]models.CartItem, 0, len(prices))
	for i, price := range prices {
		items = append(items, models.CartItem{
			ID:          uuid.New(),
			UserID:      userID,
			ProductID:   uuid.New(),
			ProductName: "Item " + string(rune('A'+i)),
			UnitPrice:   decimal.RequireFromString(price),
			Quantity:    1,
		})
	}

	return models.NewCart(userID, items, 0)
}

func checkoutRequest(provider models.Provider, coupon string) *models.CheckoutRequest {
	return &models.CheckoutRequest{
		Provider:   provider,
		CouponCode: coupon,
		ShippingAddress: models.Address{
			FullName: "<b>Lan</b> Tran",
			Phone:    "+84901234567",
			Street:   "12 Ly Thuong Kiet",
			City:     "Hanoi",
			Country:  "vn",
		},
	}
}

func TestCheckout_StartCheckout(t *testing.T) {
	userID := uuid.New()
	email := "buyer@example.com"

	t.Run("PayPal with coupon parks the checkout", func(t *testing.T) {
		// Arrange
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "50.00", "30.00"), nil).Once()
		m.coupons.On("Validate", mock.Anything, "FALL26", decEq("80")).Return(decimal.RequireFromString("8.00"), nil).Once()
		m.paypal.On("CreateIntent", mock.Anything, userID.String(), decEq("72")).
			Return(&models.PaymentIntent{ID: "5O190127TN364715T", ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", Status: "CREATED"}, nil).Once()
		m.pending.On("Set", mock.Anything, "checkout:5O190127TN364715T", mock.MatchedBy(func(p *models.PendingCheckout) bool {
			return p.UserID == userID &&
				p.Email == email &&
				p.Provider == models.ProviderPayPal &&
				len(p.Items) == 2 &&
				p.Discount.Equal(decimal.NewFromInt(8)) &&
				p.Total.Equal(decimal.NewFromInt(72)) &&
				p.ShippingAddress.FullName == "Lan Tran" &&
				p.ShippingAddress.Country == "VN"
		}), 30*time.Minute).Return(nil).Once()

		// Act
		resp, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderPayPal, "FALL26"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "5O190127TN364715T", resp.Reference)
		assert.Equal(t, models.ProviderPayPal, resp.Provider)
		assert.Contains(t, resp.RedirectURL, "checkoutnow")
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(80)))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(72)))
		assert.Equal(t, "VND", resp.Currency)
	})

	t.Run("Every provider is charged the same store currency amount", func(t *testing.T) {
		tests := []struct {
			name     string
			provider models.Provider
			expect   func(m checkoutMocks)
		}{
			{
				name:     "Wallet",
				provider: models.ProviderWallet,
				expect: func(m checkoutMocks) {
					m.wallet.On("CreatePayment", mock.Anything, userID.String(), int64(100000)).
						Return(&models.WalletPayment{OrderID: "ref-1", Amount: 100000, PayURL: "https://wallet.example.com/pay/ref-1"}, nil).Once()
				},
			},
			{
				name:     "PayPal",
				provider: models.ProviderPayPal,
				expect: func(m checkoutMocks) {
					m.paypal.On("CreateIntent", mock.Anything, userID.String(), decEq("100000")).
						Return(&models.PaymentIntent{ID: "ref-1", ApprovalURL: "https://paypal.example/approve"}, nil).Once()
				},
			},
			{
				name:     "Card",
				provider: models.ProviderCard,
				expect: func(m checkoutMocks) {
					m.card.On("CreateIntent", mock.Anything, userID.String(), decEq("100000")).
						Return(&models.PaymentIntent{ID: "ref-1", ClientSecret: "ref-1_secret"}, nil).Once()
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				svc, m := setupCheckoutTest(t, true)
				m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "60000.40", "40000"), nil).Once()
				tt.expect(m)
				m.pending.On("Set", mock.Anything, "checkout:ref-1", mock.MatchedBy(func(p *models.PendingCheckout) bool {
					return p.Currency == "VND" && p.Total.Equal(decimal.NewFromInt(100000))
				}), 30*time.Minute).Return(nil).Once()

				// Act
				resp, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(tt.provider, ""))

				// Assert
				require.NoError(t, err)
				assert.Equal(t, "VND", resp.Currency)
				assert.True(t, resp.Total.Equal(decimal.NewFromInt(100000)))
			})
		}
	})

	t.Run("Wallet amount is rounded to whole units", func(t *testing.T) {
		// Arrange
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "72.50"), nil).Once()
		m.wallet.On("CreatePayment", mock.Anything, userID.String(), int64(73)).
			Return(&models.WalletPayment{RequestID: "req-1", OrderID: "ord-1", Amount: 73, PayURL: "https://wallet.example.com/pay/ord-1"}, nil).Once()
		m.pending.On("Set", mock.Anything, "checkout:ord-1", mock.AnythingOfType("*models.PendingCheckout"), 30*time.Minute).Return(nil).Once()

		// Act
		resp, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderWallet, ""))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ord-1", resp.Reference)
		assert.Equal(t, "https://wallet.example.com/pay/ord-1", resp.RedirectURL)
		assert.True(t, resp.Discount.IsZero())
	})

	t.Run("Card returns the client secret", func(t *testing.T) {
		svc, m := setupCheckoutTestIn(t, true, "USD")
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "19.99"), nil).Once()
		m.card.On("CreateIntent", mock.Anything, userID.String(), decEq("19.99")).
			Return(&models.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret_abc", Status: "requires_payment_method"}, nil).Once()
		m.pending.On("Set", mock.Anything, "checkout:pi_123", mock.Anything, 30*time.Minute).Return(nil).Once()

		resp, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderCard, ""))

		require.NoError(t, err)
		assert.Equal(t, "pi_123_secret_abc", resp.ClientSecret)
		assert.Empty(t, resp.RedirectURL)
	})

	t.Run("Card disabled", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "19.99"), nil).Once()

		_, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderCard, ""))

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})

	t.Run("Empty cart never reaches a gateway", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID), nil).Once()

		_, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderPayPal, ""))

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
		m.paypal.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Coupon error is returned as is", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "20.00"), nil).Once()
		m.coupons.On("Validate", mock.Anything, "OLD", mock.Anything).
			Return(decimal.Zero, appErrors.CouponExpiredError("Coupon has expired")).Once()

		_, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderPayPal, "OLD"))

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeCouponExpired))
	})

	t.Run("Gateway failure stores nothing", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "20.00"), nil).Once()
		m.paypal.On("CreateIntent", mock.Anything, userID.String(), mock.Anything).
			Return(nil, appErrors.AuthFailedError("Failed to obtain access token")).Once()

		_, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderPayPal, ""))

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeAuthFailed))
		m.pending.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cache failure", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		m.carts.On("GetCart", mock.Anything, userID).Return(cartWith(userID, "20.00"), nil).Once()
		m.paypal.On("CreateIntent", mock.Anything, userID.String(), mock.Anything).
			Return(&models.PaymentIntent{ID: "5O1", ApprovalURL: "https://paypal.example/approve"}, nil).Once()
		m.pending.On("Set", mock.Anything, "checkout:5O1", mock.Anything, 30*time.Minute).Return(errors.New("OOM command not allowed")).Once()

		_, err := svc.StartCheckout(t.Context(), userID, email, checkoutRequest(models.ProviderPayPal, ""))

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInternal))
	})
}

func expectPending(m checkoutMocks, pending *models.PendingCheckout) {
	m.pending.On("Get", mock.Anything, "checkout:"+pending.Reference, mock.AnythingOfType("*models.PendingCheckout")).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*models.PendingCheckout) = *pending
		}).
		Return(true, nil).Once()
}

func parked(reference string, provider models.Provider, userID uuid.UUID, total string) *models.PendingCheckout {
	cart := cartWith(userID, total)

	return &models.PendingCheckout{
		Reference:       reference,
		Provider:        provider,
		UserID:          userID,
		Email:           "buyer@example.com",
		Items:           cart.Items,
		Subtotal:        cart.Subtotal,
		Discount:        decimal.Zero,
		Total:           cart.Subtotal,
		ShippingAddress: models.Address{FullName: "Lan Tran", Country: "VN"},
	}
}

func TestCheckout_CompleteIntentCheckout(t *testing.T) {
	userID := uuid.New()

	t.Run("Captured PayPal intent is settled", func(t *testing.T) {
		// Arrange
		svc, m := setupCheckoutTest(t, false)
		pending := parked("5O190127TN364715T", models.ProviderPayPal, userID, "72.00")
		expectPending(m, pending)
		m.paypal.On("CaptureIntent", mock.Anything, "5O190127TN364715T").
			Return(&models.CaptureResult{ID: "5O190127TN364715T", Status: "COMPLETED", CaptureID: "3C679366HH908993F", Amount: decimal.RequireFromString("72.00"), Currency: "VND"}, nil).Once()

		settled := &models.SettlementResult{Order: &models.Order{ID: uuid.New()}, CartCleared: true}
		m.orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req *models.PlaceOrderRequest) bool {
			return req.Reference == "5O190127TN364715T" &&
				req.UserID == userID &&
				req.Email == "buyer@example.com" &&
				req.Payment.TransactionID == "3C679366HH908993F" &&
				req.Payment.Provider == models.ProviderPayPal &&
				req.Payment.Currency == "VND" &&
				req.Payment.Succeeded() &&
				len(req.Items) == 1
		})).Return(settled, nil).Once()
		m.pending.On("Delete", mock.Anything, "checkout:5O190127TN364715T").Return(nil).Once()

		// Act
		result, err := svc.CompleteIntentCheckout(t.Context(), userID, "5O190127TN364715T")

		// Assert
		require.NoError(t, err)
		assert.Same(t, settled, result)
	})

	t.Run("Captured card intent is settled", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, true)
		expectPending(m, parked("pi_123", models.ProviderCard, userID, "19.99"))
		m.card.On("CaptureIntent", mock.Anything, "pi_123").
			Return(&models.CaptureResult{ID: "pi_123", Status: "succeeded", CaptureID: "ch_456", Amount: decimal.RequireFromString("19.99"), Currency: "VND"}, nil).Once()
		m.orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req *models.PlaceOrderRequest) bool {
			return req.Payment.TransactionID == "ch_456" && req.Payment.Status == "succeeded"
		})).Return(&models.SettlementResult{Order: &models.Order{}}, nil).Once()
		m.pending.On("Delete", mock.Anything, "checkout:pi_123").Return(nil).Once()

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "pi_123")

		require.NoError(t, err)
	})

	t.Run("Incomplete capture is rejected and kept", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		expectPending(m, parked("5O1", models.ProviderPayPal, userID, "72.00"))
		m.paypal.On("CaptureIntent", mock.Anything, "5O1").
			Return(&models.CaptureResult{ID: "5O1", Status: "PENDING"}, nil).Once()

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "5O1")

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeGatewayRejected, appErr.Code)
		assert.Equal(t, "gateway status: PENDING", appErr.Detail)
		m.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("Capture in another currency is not settled", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		expectPending(m, parked("5O1", models.ProviderPayPal, userID, "100000"))
		m.paypal.On("CaptureIntent", mock.Anything, "5O1").
			Return(&models.CaptureResult{ID: "5O1", Status: "COMPLETED", CaptureID: "CAP1", Amount: decimal.NewFromInt(100000), Currency: "USD"}, nil).Once()

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "5O1")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeGatewayRejected))
		m.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
		m.pending.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Capture failure", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		expectPending(m, parked("5O1", models.ProviderPayPal, userID, "72.00"))
		m.paypal.On("CaptureIntent", mock.Anything, "5O1").
			Return(nil, appErrors.GatewayRejectedError("422", `{"name":"UNPROCESSABLE_ENTITY"}`)).Once()

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "5O1")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeGatewayRejected))
	})

	t.Run("Settlement failure keeps the checkout", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		expectPending(m, parked("5O1", models.ProviderPayPal, userID, "72.00"))
		m.paypal.On("CaptureIntent", mock.Anything, "5O1").
			Return(&models.CaptureResult{ID: "5O1", Status: "COMPLETED", CaptureID: "CAP1"}, nil).Once()
		m.orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, appErrors.DatabaseError("Failed to create order")).Once()

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "5O1")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
		m.pending.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Unknown or expired reference", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		m.pending.On("Get", mock.Anything, "checkout:gone", mock.Anything).Return(false, nil).Once()

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "gone")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})

	t.Run("Another user's checkout", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		expectPending(m, parked("5O1", models.ProviderPayPal, uuid.New(), "72.00"))

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "5O1")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeForbidden))
	})

	t.Run("Wallet checkouts cannot be captured", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		expectPending(m, parked("ord-1", models.ProviderWallet, userID, "72.00"))

		_, err := svc.CompleteIntentCheckout(t.Context(), userID, "ord-1")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})
}

func walletCallback(orderID string, amount int64, resultCode int) *models.WalletCallback {
	return &models.WalletCallback{
		PartnerCode:  "PARTNER",
		OrderID:      orderID,
		RequestID:    "req-1",
		Amount:       amount,
		OrderInfo:    "Storefront order",
		OrderType:    "momo_wallet",
		TransID:      2547638292,
		ResultCode:   resultCode,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1760515200000,
		Signature:    "f3a1",
	}
}

func TestCheckout_CompleteWalletCheckout(t *testing.T) {
	userID := uuid.New()

	t.Run("Successful notification settles the order", func(t *testing.T) {
		// Arrange
		svc, m := setupCheckoutTest(t, false)
		cb := walletCallback("ord-1", 73, 0)
		m.wallet.On("VerifyCallback", cb).Return(nil).Once()
		expectPending(m, parked("ord-1", models.ProviderWallet, userID, "72.50"))
		m.orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req *models.PlaceOrderRequest) bool {
			return req.Reference == "ord-1" &&
				req.Payment.TransactionID == "2547638292" &&
				req.Payment.Currency == "VND" &&
				req.Payment.Amount.Equal(decimal.NewFromInt(73)) &&
				req.Payment.Succeeded()
		})).Return(&models.SettlementResult{Order: &models.Order{}, CartCleared: true}, nil).Once()
		m.pending.On("Delete", mock.Anything, "checkout:ord-1").Return(nil).Once()

		// Act
		result, err := svc.CompleteWalletCheckout(t.Context(), cb)

		// Assert
		require.NoError(t, err)
		assert.True(t, result.CartCleared)
	})

	t.Run("Bad signature touches nothing", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		cb := walletCallback("ord-1", 73, 0)
		m.wallet.On("VerifyCallback", cb).Return(appErrors.ValidationError("Invalid callback signature")).Once()

		_, err := svc.CompleteWalletCheckout(t.Context(), cb)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
		m.pending.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed payment drops the checkout", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		cb := walletCallback("ord-1", 73, 1006)
		cb.Message = "Transaction denied by user."
		m.wallet.On("VerifyCallback", cb).Return(nil).Once()
		expectPending(m, parked("ord-1", models.ProviderWallet, userID, "72.50"))
		m.pending.On("Delete", mock.Anything, "checkout:ord-1").Return(nil).Once()

		_, err := svc.CompleteWalletCheckout(t.Context(), cb)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeGatewayRejected, appErr.Code)
		assert.Equal(t, "Transaction denied by user.", appErr.Message)
		assert.Equal(t, "gateway status: 1006", appErr.Detail)
	})

	t.Run("Amount mismatch", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		cb := walletCallback("ord-1", 1, 0)
		m.wallet.On("VerifyCallback", cb).Return(nil).Once()
		expectPending(m, parked("ord-1", models.ProviderWallet, userID, "72.50"))

		_, err := svc.CompleteWalletCheckout(t.Context(), cb)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
		m.orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("Missing notification", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)

		_, err := svc.CompleteWalletCheckout(t.Context(), nil)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
		m.wallet.AssertNotCalled(t, "VerifyCallback", mock.Anything)
	})

	t.Run("Duplicate notification after settlement", func(t *testing.T) {
		svc, m := setupCheckoutTest(t, false)
		cb := walletCallback("ord-1", 73, 0)
		m.wallet.On("VerifyCallback", cb).Return(nil).Once()
		m.pending.On("Get", mock.Anything, "checkout:ord-1", mock.Anything).Return(false, nil).Once()

		_, err := svc.CompleteWalletCheckout(t.Context(), cb)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})
}
