package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/google/uuid"
)

// CartRepository stores one JSON document per cart line.
type CartRepository interface {
	AddItem(ctx context.Context, item *models.CartItem) (uuid.UUID, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, int, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	ClearCart(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db, now: time.Now}
}

const (
	upsertProfileQuery = `INSERT INTO user_profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

	insertCartItemQuery = `INSERT INTO cart_items (id, user_id, data, added_at) VALUES ($1, $2, $3, $4)`

	incrementAddedToCartQuery = `
		UPDATE products SET added_to_cart_count = added_to_cart_count + 1
		WHERE id = $1
		RETURNING name, price`
)

// ErrProductNotFound is returned when an item references no catalogue product.
var ErrProductNotFound = errors.New("product not found")

// AddItem creates the profile if needed, bumps the product counter and stores
// the line in a single transaction. Name and unit price always come from the
// products row, whatever the caller put in item.
func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) (uuid.UUID, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	item.AddedAt = r.now().UTC()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if _, err := tx.ExecContext(dbCtx, upsertProfileQuery, item.UserID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}

	if err := tx.QueryRowContext(dbCtx, incrementAddedToCartQuery, item.ProductID).Scan(&item.ProductName, &item.UnitPrice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrProductNotFound
		}

		return uuid.Nil, fmt.Errorf("failed to increment added-to-cart counter: %w", err)
	}

	doc, err := json.Marshal(item)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal cart item: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, insertCartItemQuery, item.ID, item.UserID, doc, item.AddedAt); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit cart item: %w", err)
	}

	return item.ID, nil
}

// ListItems returns the decodable lines oldest first together with the
// number of stored documents that had to be skipped.
func (r *cartRepository) ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, data, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at ASC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	logger := middleware.LoggerFromContext(ctx)
	items := make([]models.CartItem, 0)
	dropped := 0

	for rows.Next() {
		var (
			id      uuid.UUID
			doc     []byte
			addedAt time.Time
		)

		if err := rows.Scan(&id, &doc, &addedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan cart item: %w", err)
		}

		var item models.CartItem
		if err := json.Unmarshal(doc, &item); err != nil || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			dropped++
			logger.Warn("Skipping malformed cart item", slog.String("item_id", id.String()))

			continue
		}

		item.ID = id
		item.UserID = userID
		item.AddedAt = addedAt
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, dropped, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return expectAffected(result)
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE cart_items
		SET data = jsonb_set(data, '{quantity}', to_jsonb($3::int))
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.DB.ExecContext(dbCtx, query, itemID, userID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return expectAffected(result)
}

// ClearCart removes every line of the user in one statement.
func (r *cartRepository) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted rows: %w", err)
	}

	return removed, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		middleware.LoggerFromContext(ctx).Error("Transaction rollback failed", slog.String("error", err.Error()))
	}
}
