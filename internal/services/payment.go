package service

import (
	"context"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/stripe"
)

type PaymentService interface {
	ProcessCardWebhook(ctx context.Context, payload []byte, signature string) (stripe.Event, error)
}

type paymentService struct {
	card    stripe.Client
	pending cache.Cache
}

func NewPaymentService(card stripe.Client, pending cache.Cache) PaymentService {
	return &paymentService{card: card, pending: pending}
}

// ProcessCardWebhook drops the parked checkout of a card intent that failed
// or was canceled so it can no longer be captured. Settlement itself is
// driven by the capture call, not by webhooks.
func (s *paymentService) ProcessCardWebhook(ctx context.Context, payload []byte, signature string) (stripe.Event, error) {
	logger := middleware.LoggerFromContext(ctx)

	if s.card == nil {
		return stripe.Event{}, errors.BadRequestError("Card payments are not enabled")
	}

	event, err := s.card.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return stripe.Event{}, err
	}

	switch event.Type {
	case "payment_intent.payment_failed", "payment_intent.canceled":
		var intentID string
		if event.Data != nil {
			intentID, _ = event.Data.Object["id"].(string)
		}

		if intentID == "" {
			return event, errors.BadRequestError("Missing payment intent ID in webhook")
		}

		if err := s.pending.Delete(ctx, pendingKey(intentID)); err != nil {
			return event, errors.InternalError("Failed to drop pending checkout").WithError(err)
		}

		logger.Info("Card checkout abandoned", slog.String("intent_id", intentID), slog.String("event", string(event.Type)))

	default:
		logger.Debug("Ignoring card webhook event", slog.String("event", string(event.Type)))
	}

	return event, nil
}
