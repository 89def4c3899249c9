package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateOrder is returned when an order with the same id already exists.
var ErrDuplicateOrder = errors.New("order already exists")

const uniqueViolation = "23505"

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, tracking *models.TrackingInfo) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `id, user_id, subtotal, discount, total_price, status, coupon_code, payment, tracking, shipping_address, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateOrder writes the order row and its item snapshots in one transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	payment, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	shippingAddress, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tracking, err := marshalTracking(order.Tracking)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		INSERT INTO orders (` + orderColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`

	_, err = tx.ExecContext(dbCtx, query,
		order.ID, order.UserID, order.Subtotal, order.Discount, order.TotalPrice,
		order.Status, order.CouponCode, payment, tracking, shippingAddress, order.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateOrder
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	for position, item := range order.Items {
		doc, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal order item: %w", err)
		}

		_, err = tx.ExecContext(dbCtx, `INSERT INTO order_items (order_id, position, data) VALUES ($1, $2, $3)`, order.ID, position, doc)
		if err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// GetOrderByID returns sql.ErrNoRows (wrapped) when the order does not exist.
func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	rows, err := r.DB.QueryContext(dbCtx, `SELECT data FROM order_items WHERE order_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		var item models.OrderItem
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order item: %w", err)
		}

		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}

// ListOrdersByUser returns one page of the user's orders, newest first, and
// the user's total order count. Items of the page are loaded in one query.
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0, size)
	index := make(map[uuid.UUID]int)
	ids := make(pq.StringArray, 0, size)

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		index[order.ID] = len(orders)
		ids = append(ids, order.ID.String())
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, total, nil
	}

	itemQuery := `
		SELECT order_id, data
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position ASC
	`

	itemRows, err := r.DB.QueryContext(dbCtx, itemQuery, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get the order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID uuid.UUID
			doc     []byte
		)

		if err := itemRows.Scan(&orderID, &doc); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order items: %w", err)
		}

		var item models.OrderItem
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal order item: %w", err)
		}

		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}

	if err := itemRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating order items: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus keeps the stored tracking info when tracking is nil.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, tracking *models.TrackingInfo) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	trackingDoc, err := marshalTracking(tracking)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET status = $2, tracking = COALESCE($3::jsonb, tracking), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.DB.ExecContext(dbCtx, query, id, status, trackingDoc)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return expectAffected(result)
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order                          models.Order
		payment, tracking, addressJSON []byte
	)

	err := row.Scan(
		&order.ID, &order.UserID, &order.Subtotal, &order.Discount, &order.TotalPrice,
		&order.Status, &order.CouponCode, &payment, &tracking, &addressJSON, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payment, &order.Payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	if len(tracking) > 0 {
		order.Tracking = &models.TrackingInfo{}
		if err := json.Unmarshal(tracking, order.Tracking); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracking: %w", err)
		}
	}

	order.Items = []models.OrderItem{}

	return &order, nil
}

// marshalTracking returns an untyped nil for absent tracking so it binds as SQL NULL.
func marshalTracking(tracking *models.TrackingInfo) (any, error) {
	if tracking == nil {
		return nil, nil
	}

	doc, err := json.Marshal(tracking)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracking: %w", err)
	}

	return doc, nil
}
