package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront-checkout/internal/errors"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type CouponService interface {
	// Validate returns the discount the coupon grants on orderTotal.
	Validate(ctx context.Context, code string, orderTotal decimal.Decimal) (decimal.Decimal, error)
}

type couponService struct {
	repo  repository.CouponRepository
	cache cache.Cache
	loc   *time.Location
	now   func() time.Time
}

// NewCouponService evaluates validity windows as calendar dates in loc.
// cache may be nil.
func NewCouponService(repo repository.CouponRepository, c cache.Cache, loc *time.Location) CouponService {
	return newCouponService(repo, c, loc, time.Now)
}

func newCouponService(repo repository.CouponRepository, c cache.Cache, loc *time.Location, now func() time.Time) *couponService {
	if loc == nil {
		loc = time.UTC
	}

	return &couponService{repo: repo, cache: c, loc: loc, now: now}
}

func (s *couponService) Validate(ctx context.Context, code string, orderTotal decimal.Decimal) (decimal.Decimal, error) {
	if orderTotal.IsNegative() {
		return decimal.Zero, appErrors.AddValidationError("order_total", "must not be negative")
	}

	coupon, err := s.lookup(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}

	today := calendarDate(s.now().In(s.loc))

	if today.Before(calendarDate(coupon.ValidFrom)) {
		return decimal.Zero, appErrors.CouponNotYetValidError("Coupon is not valid yet").WithDetail(code)
	}

	if today.After(calendarDate(coupon.ValidTo)) {
		return decimal.Zero, appErrors.CouponExpiredError("Coupon has expired").WithDetail(code)
	}

	if orderTotal.LessThan(coupon.MinOrderValue) {
		return decimal.Zero, appErrors.MinimumOrderNotMetError("Order total is below the coupon minimum").
			WithDetail("minimum: " + coupon.MinOrderValue.StringFixed(2))
	}

	return computeDiscount(coupon, orderTotal), nil
}

func (s *couponService) lookup(ctx context.Context, code string) (*models.Coupon, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.CouponKeyPrefix, code)

	if s.cache != nil {
		var cached models.Coupon

		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Coupon cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		} else if found {
			return &cached, nil
		}
	}

	coupon, err := s.repo.GetActiveByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.CouponNotFoundError(code)
	}

	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load coupon").WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, coupon, 0); err != nil {
			logger.Warn("Coupon cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	return coupon, nil
}

// computeDiscount never returns more than orderTotal and rounds half-up to cents.
func computeDiscount(coupon *models.Coupon, orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch coupon.Type {
	case models.DiscountTypePercentage:
		discount = orderTotal.Mul(coupon.Discount).Div(hundred)
		if coupon.MaxDiscount.IsPositive() && discount.GreaterThan(coupon.MaxDiscount) {
			discount = coupon.MaxDiscount
		}
	default:
		discount = coupon.Discount
	}

	discount = decimal.Min(discount, orderTotal)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return discount.Round(2)
}

// calendarDate drops the clock so dates compare by year, month and day.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
