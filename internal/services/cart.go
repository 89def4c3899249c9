package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/metrics"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
	"github.com/google/uuid"
)

type CartService interface {
	AddToCart(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.AddItemResponse, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	ClearCart(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartService struct {
	repo repository.CartRepository
}

func NewCartService(repo repository.CartRepository) CartService {
	return &cartService{repo: repo}
}

func (s *cartService) AddToCart(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.AddItemResponse, error) {
	if req.Quantity < 1 {
		return nil, appErrors.AddValidationError("quantity", "must be at least 1")
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      utils.SanitizeText(req.Size),
		Color:     utils.SanitizeText(req.Color),
		ImageURL:  req.ImageURL,
	}

	id, err := s.repo.AddItem(ctx, item)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, appErrors.NotFoundError("Product not found").WithError(err)
	}

	if err != nil {
		return nil, appErrors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	return &models.AddItemResponse{ItemID: id}, nil
}

// GetCart never fails because of a single unreadable line; such lines are
// counted and skipped.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	items, dropped, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	if dropped > 0 {
		metrics.CartItemsDropped(dropped)
		middleware.LoggerFromContext(ctx).Warn("Cart items dropped while loading cart",
			slog.String("user_id", userID.String()),
			slog.Int("dropped", dropped),
		)
	}

	return models.NewCart(userID, items, dropped), nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.repo.RemoveItem(ctx, userID, itemID); err != nil {
		return cartItemError(err, "Failed to remove cart item")
	}

	return nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return appErrors.AddValidationError("quantity", "must be at least 1")
	}

	if err := s.repo.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		return cartItemError(err, "Failed to update cart item")
	}

	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	removed, err := s.repo.ClearCart(ctx, userID)
	if err != nil {
		return 0, appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return removed, nil
}

func cartItemError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NotFoundError("Cart item not found").WithError(err)
	}

	return appErrors.DatabaseError(message).WithError(err)
}
