package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line item document in a user's cart.
type CartItem struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	AddedAt     time.Time       `json:"added_at"`
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	UserID   uuid.UUID       `json:"user_id"`
	Items    []CartItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	// Dropped counts stored documents that could not be decoded.
	Dropped int `json:"dropped,omitempty"`
}

func NewCart(userID uuid.UUID, items []CartItem, dropped int) *Cart {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	if items == nil {
		items = []CartItem{}
	}

	return &Cart{UserID: userID, Items: items, Subtotal: subtotal, Dropped: dropped}
}

// AddItemRequest names a catalogue product; its name and price are looked up
// server side.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Size      string    `json:"size,omitempty" validate:"max=20"`
	Color     string    `json:"color,omitempty" validate:"max=40"`
	ImageURL  string    `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type AddItemResponse struct {
	ItemID uuid.UUID `json:"item_id"`
}
