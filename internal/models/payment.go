package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Provider string

const (
	ProviderWallet Provider = "wallet"
	ProviderPayPal Provider = "paypal"
	ProviderCard   Provider = "card"
)

// WalletPayment is the result of a wallet payment creation.
type WalletPayment struct {
	RequestID string `json:"request_id"`
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	PayURL    string `json:"pay_url"`
}

// WalletCallback is the instant payment notification sent by the wallet.
type WalletCallback struct {
	PartnerCode  string `json:"partnerCode" validate:"required"`
	OrderID      string `json:"orderId" validate:"required"`
	RequestID    string `json:"requestId" validate:"required"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature" validate:"required"`
}

// PaymentIntent is an authorized but not yet captured gateway order.
type PaymentIntent struct {
	ID           string   `json:"id"`
	Provider     Provider `json:"provider"`
	ReferenceID  string   `json:"reference_id,omitempty"`
	ApprovalURL  string   `json:"approval_url,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty"`
	Status       string   `json:"status"`
}

type CaptureResult struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	CaptureID string          `json:"capture_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// PaymentResult is what settlement receives from a finished gateway flow.
type PaymentResult struct {
	Provider      Provider        `json:"provider"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
}

const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusSucceeded = "succeeded"
)

func (p PaymentResult) Succeeded() bool {
	return p.TransactionID != "" && (p.Status == PaymentStatusCompleted || p.Status == PaymentStatusSucceeded)
}

type CheckoutRequest struct {
	Provider        Provider `json:"provider" validate:"required,oneof=wallet paypal card"`
	CouponCode      string   `json:"coupon_code,omitempty" validate:"max=64"`
	ShippingAddress Address  `json:"shipping_address" validate:"required"`
}

type CheckoutResponse struct {
	Reference    string          `json:"reference"`
	Provider     Provider        `json:"provider"`
	RedirectURL  string          `json:"redirect_url,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
}

// PendingCheckout is parked in the cache between starting a payment and the
// gateway reporting its outcome.
type PendingCheckout struct {
	Reference       string          `json:"reference"`
	Provider        Provider        `json:"provider"`
	UserID          uuid.UUID       `json:"user_id"`
	Email           string          `json:"email"`
	Items           []CartItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	ShippingAddress Address         `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
}
