package service

import (
	"strings"
	"time"

	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// Lookup 按优惠码查询店铺优惠券并校验状态、有效期与使用次数。
// 使用门槛不在这里校验，未达门槛时购物车折扣为 0。
func (s *CouponService) Lookup(storefrontID, code string, now time.Time) (*cart.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByCode(storefrontID, trimmed)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, ErrCouponNotStarted
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return nil, ErrCouponExpired
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, ErrCouponUsageLimit
	}
	return ToCartCoupon(coupon)
}

// ToCartCoupon 转换为购物车使用的优惠券快照
func ToCartCoupon(coupon *models.Coupon) (*cart.Coupon, error) {
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	result := &cart.Coupon{Code: strings.TrimSpace(coupon.Code)}
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypePercentage, constants.CouponTypePercent:
		result.DiscountType = cart.DiscountTypePercentage
		result.DiscountValue = coupon.Value.Decimal
	case constants.CouponTypeFixed:
		result.DiscountType = cart.DiscountTypeFixed
		result.DiscountValue = decimal.NewFromInt(coupon.Value.MinorUnits())
	default:
		return nil, ErrCouponInvalid
	}
	if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCouponInvalid
	}
	result.MinOrderMinorUnits = positiveMinorUnits(coupon.MinAmount)
	result.MaxDiscountMinorUnits = positiveMinorUnits(coupon.MaxDiscount)
	return result, nil
}

// positiveMinorUnits 金额大于 0 时返回最小单位，否则视为未设置
func positiveMinorUnits(amount models.Money) *int64 {
	units := amount.MinorUnits()
	if units <= 0 {
		return nil
	}
	return &units
}
