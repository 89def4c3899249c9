package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusInactive CouponStatus = "inactive"
)

// Coupon is read-only for this service. ValidFrom and ValidTo are calendar
// dates; only their year, month and day are meaningful.
type Coupon struct {
	Code          string          `json:"code"`
	Discount      decimal.Decimal `json:"discount"`
	Type          DiscountType    `json:"type"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	MaxDiscount   decimal.Decimal `json:"max_discount"`
	ValidFrom     time.Time       `json:"valid_from"`
	ValidTo       time.Time       `json:"valid_to"`
	Status        CouponStatus    `json:"status"`
}

type ValidateCouponRequest struct {
	Code       string          `json:"code" validate:"required,max=64"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

type ValidateCouponResponse struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}
