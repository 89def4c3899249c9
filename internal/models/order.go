package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCanceled   OrderStatus = "Canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}

	return false
}

type Address struct {
	FullName   string `json:"full_name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"max=20"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// OrderItem is a snapshot of a cart line at settlement time. It does not
// reference live product documents.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type TrackingInfo struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          OrderStatus     `json:"status"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Payment         PaymentResult   `json:"payment"`
	Tracking        *TrackingInfo   `json:"tracking,omitempty"`
	ShippingAddress Address         `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PlaceOrderRequest is built by checkout after the gateway reported success.
type PlaceOrderRequest struct {
	// Reference is the gateway reference of the checkout; orders settled for
	// the same reference share one order id.
	Reference       string
	UserID          uuid.UUID
	Email           string
	Items           []CartItem
	ShippingAddress Address
	CouponCode      string
	Discount        decimal.Decimal
	Payment         PaymentResult
}

type SettlementResult struct {
	Order       *Order `json:"order"`
	CartCleared bool   `json:"cart_cleared"`
}

type UpdateOrderStatusRequest struct {
	Status   OrderStatus   `json:"status" validate:"required,oneof=Pending Processing Shipped Delivered Canceled"`
	Tracking *TrackingInfo `json:"tracking,omitempty"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}
