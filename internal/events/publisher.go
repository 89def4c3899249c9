package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const (
	OrderPlacedQueue = "order.placed"

	publishTimeout = 3 * time.Second
)

type OrderPlacedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderPlaced is emitted once an order has been persisted after payment.
type OrderPlaced struct {
	EventType     string            `json:"event_type"`
	OrderID       uuid.UUID         `json:"order_id"`
	UserID        uuid.UUID         `json:"user_id"`
	Items         []OrderPlacedItem `json:"items"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	Provider      models.Provider   `json:"provider"`
	TransactionID string            `json:"transaction_id"`
	Timestamp     time.Time         `json:"timestamp"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
	Close() error
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type rabbitPublisher struct {
	ch channel
}

func NewRabbitPublisher(conn *amqp.Connection) (Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return newPublisher(ch)
}

func newPublisher(ch channel) (Publisher, error) {
	if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderPlacedQueue, err)
	}

	return &rabbitPublisher{ch: ch}, nil
}

func (p *rabbitPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	ev := OrderPlaced{
		EventType:     "OrderPlaced",
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalPrice:    order.TotalPrice,
		Provider:      order.Payment.Provider,
		TransactionID: order.Payment.TransactionID,
		Timestamp:     time.Now().UTC(),
	}

	for _, item := range order.Items {
		ev.Items = append(ev.Items, OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(pubCtx, "", OrderPlacedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    order.ID.String(),
		Timestamp:    ev.Timestamp,
		Body:         body,
	})
}

func (p *rabbitPublisher) Close() error {
	return p.ch.Close()
}

type discard struct{}

// Discard is used when no broker is configured.
var Discard Publisher = discard{}

func (discard) PublishOrderPlaced(context.Context, *models.Order) error { return nil }

func (discard) Close() error { return nil }
