package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/events"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	"github.com/aaravmahajanofficial/storefront-checkout/pkg/sendgrid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// orderNamespace derives stable order ids from checkout references.
var orderNamespace = uuid.MustParse("6f1c9a52-3b0e-4c1f-9d3e-2a7b5c8e4f10")

type OrderService interface {
	PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.SettlementResult, error)
	FetchHistory(ctx context.Context, userID uuid.UUID, page, size int) (*models.OrderHistoryResponse, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	publisher events.Publisher
	email     sendgrid.EmailService
	now       func() time.Time
}

// NewOrderService wires settlement. publisher and email may be nil.
func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, publisher events.Publisher, email sendgrid.EmailService) OrderService {
	if publisher == nil {
		publisher = events.Discard
	}

	return &orderService{orders: orders, carts: carts, publisher: publisher, email: email, now: time.Now}
}

// PlaceOrder persists the order of a paid checkout and empties the cart.
// Only the persistence step can fail the call; the cart clear, the event
// and the confirmation email are best effort.
func (s *orderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.SettlementResult, error) {
	logger := middleware.LoggerFromContext(ctx)

	if !req.Payment.Succeeded() {
		return nil, appErrors.ValidationError("Payment has not succeeded").WithDetail(req.Payment.Status)
	}

	if len(req.Items) == 0 {
		return nil, appErrors.ValidationError("Order has no items")
	}

	if req.Discount.IsNegative() {
		return nil, appErrors.AddValidationError("discount", "must not be negative")
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		subtotal = subtotal.Add(line.LineTotal())
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			ImageURL:  line.ImageURL,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	order := &models.Order{
		ID:              s.orderID(req.Reference),
		UserID:          req.UserID,
		Items:           items,
		Subtotal:        subtotal,
		Discount:        req.Discount,
		TotalPrice:      decimal.Max(subtotal.Sub(req.Discount), decimal.Zero),
		Status:          models.OrderStatusPending,
		CouponCode:      req.CouponCode,
		Payment:         req.Payment,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return nil, appErrors.ConflictError("Order already placed for this checkout").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.OrderSettled()
	logger.Info("Order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("provider", string(order.Payment.Provider)),
		slog.String("total", order.TotalPrice.StringFixed(2)),
	)

	result := &models.SettlementResult{Order: order, CartCleared: true}

	if _, err := s.carts.ClearCart(ctx, req.UserID); err != nil {
		result.CartCleared = false
		metrics.CartClearFailed()
		logger.Error("Failed to clear cart after settlement",
			slog.String("stage", "cart_clear"),
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		logger.Warn("Failed to publish order placed event", slog.String("order_id", order.ID.String()), slog.String("error", err.Error()))
	}

	if s.email != nil && req.Email != "" {
		if err := s.email.SendOrderConfirmation(ctx, req.Email, order); err != nil {
			logger.Warn("Failed to send order confirmation", slog.String("order_id", order.ID.String()), slog.String("error", err.Error()))
		}
	}

	return result, nil
}

func (s *orderService) FetchHistory(ctx context.Context, userID uuid.UUID, page, size int) (*models.OrderHistoryResponse, error) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = defaultPageSize
	}

	size = min(size, maxPageSize)

	orders, total, err := s.orders.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return &models.OrderHistoryResponse{Orders: orders, Total: total, Page: page, Size: size}, nil
}

// GetOrder hides orders of other users behind NotFound.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, appErrors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, appErrors.AddValidationError("status", "must be one of Pending, Processing, Shipped, Delivered, Canceled")
	}

	if err := s.orders.UpdateStatus(ctx, orderID, req.Status, req.Tracking); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return s.getOrder(ctx, orderID)
}

func (s *orderService) getOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NotFoundError("Order not found").WithError(err)
	}

	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

func (s *orderService) orderID(reference string) uuid.UUID {
	if reference == "" {
		return uuid.New()
	}

	return uuid.NewSHA1(orderNamespace, []byte(reference))
}
