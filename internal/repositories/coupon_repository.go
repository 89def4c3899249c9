package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/utils"
)

// CouponRepository is read-only; coupons are managed elsewhere.
type CouponRepository interface {
	GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type couponRepository struct {
	DB *sql.DB
}

func NewCouponRepo(db *sql.DB) CouponRepository {
	return &couponRepository{DB: db}
}

// GetActiveByCode matches the code case-sensitively and returns
// sql.ErrNoRows (wrapped) when no active coupon carries it.
func (r *couponRepository) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT code, discount, discount_type, min_order_value, max_discount, valid_from, valid_to, status
		FROM coupons
		WHERE code = $1 AND status = $2
	`

	var coupon models.Coupon

	err := r.DB.QueryRowContext(dbCtx, query, code, models.CouponStatusActive).Scan(
		&coupon.Code, &coupon.Discount, &coupon.Type, &coupon.MinOrderValue, &coupon.MaxDiscount,
		&coupon.ValidFrom, &coupon.ValidTo, &coupon.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return &coupon, nil
}
