package service_test

import (
	"errors"
	"testing"

	cacheMocks "github.com/aaravmahajanofficial/storefront-checkout/internal/cache/mocks"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	service "github.com/aaravmahajanofficial/storefront-checkout/internal/services"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/stripe"
	stripeMocks "github.com/aaravmahajanofficial/storefront-checkout/pkg/stripe/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripeAPI "github.com/stripe/stripe-go/v81"
)

func TestPaymentService_ProcessCardWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	signature := "t=1,v1=abc"

	event := func(kind string, object map[string]any) stripe.Event {
		return stripe.Event{ID: "evt_1", Type: stripeAPI.EventType(kind), Data: &stripeAPI.EventData{Object: object}}
	}

	t.Run("Failed intent drops the parked checkout", func(t *testing.T) {
		// Arrange
		card := stripeMocks.NewClient(t)
		pending := cacheMocks.NewCache(t)
		svc := service.NewPaymentService(card, pending)

		card.On("VerifyWebhookSignature", payload, signature).
			Return(event("payment_intent.payment_failed", map[string]any{"id": "pi_123"}), nil).Once()
		pending.On("Delete", mock.Anything, "checkout:pi_123").Return(nil).Once()

		// Act
		got, err := svc.ProcessCardWebhook(t.Context(), payload, signature)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "evt_1", got.ID)
	})

	t.Run("Other events are acknowledged", func(t *testing.T) {
		card := stripeMocks.NewClient(t)
		pending := cacheMocks.NewCache(t)
		svc := service.NewPaymentService(card, pending)

		card.On("VerifyWebhookSignature", payload, signature).
			Return(event("payment_intent.succeeded", map[string]any{"id": "pi_123"}), nil).Once()

		_, err := svc.ProcessCardWebhook(t.Context(), payload, signature)

		require.NoError(t, err)
		pending.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Missing intent id", func(t *testing.T) {
		card := stripeMocks.NewClient(t)
		svc := service.NewPaymentService(card, cacheMocks.NewCache(t))

		card.On("VerifyWebhookSignature", payload, signature).
			Return(event("payment_intent.canceled", map[string]any{}), nil).Once()

		_, err := svc.ProcessCardWebhook(t.Context(), payload, signature)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})

	t.Run("Invalid signature", func(t *testing.T) {
		card := stripeMocks.NewClient(t)
		svc := service.NewPaymentService(card, cacheMocks.NewCache(t))

		card.On("VerifyWebhookSignature", payload, signature).
			Return(stripe.Event{}, appErrors.ValidationError("Invalid webhook signature")).Once()

		_, err := svc.ProcessCardWebhook(t.Context(), payload, signature)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})

	t.Run("Cache failure", func(t *testing.T) {
		card := stripeMocks.NewClient(t)
		pending := cacheMocks.NewCache(t)
		svc := service.NewPaymentService(card, pending)

		card.On("VerifyWebhookSignature", payload, signature).
			Return(event("payment_intent.payment_failed", map[string]any{"id": "pi_9"}), nil).Once()
		pending.On("Delete", mock.Anything, "checkout:pi_9").Return(errors.New("READONLY")).Once()

		_, err := svc.ProcessCardWebhook(t.Context(), payload, signature)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeInternal))
	})

	t.Run("Card disabled", func(t *testing.T) {
		svc := service.NewPaymentService(nil, cacheMocks.NewCache(t))

		_, err := svc.ProcessCardWebhook(t.Context(), payload, signature)

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
	})
}
