package service

import "errors"

var (
	// ErrStorefrontNotFound 店铺不存在
	ErrStorefrontNotFound = errors.New("storefront not found")
	// ErrStorefrontInactive 店铺未营业
	ErrStorefrontInactive = errors.New("storefront inactive")
	// ErrProductNotFound 菜品不存在或已下架
	ErrProductNotFound = errors.New("product not found")
)

var (
	ErrCouponInvalid    = errors.New("coupon invalid")
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponInactive   = errors.New("coupon inactive")
	ErrCouponNotStarted = errors.New("coupon not started")
	ErrCouponExpired    = errors.New("coupon expired")
	ErrCouponUsageLimit = errors.New("coupon usage limit reached")
)

var (
	// ErrCartSessionInvalid 购物车会话无效或已过期
	ErrCartSessionInvalid = errors.New("cart session invalid")
	// ErrCartSessionMismatch 会话与请求的店铺不一致
	ErrCartSessionMismatch = errors.New("cart session storefront mismatch")
	// ErrCartSaveFailed 购物车保存失败
	ErrCartSaveFailed = errors.New("cart save failed")
)

// IsCouponRejection 判断是否为优惠券校验失败（而非基础设施错误）
func IsCouponRejection(err error) bool {
	switch {
	case errors.Is(err, ErrCouponInvalid),
		errors.Is(err, ErrCouponNotFound),
		errors.Is(err, ErrCouponInactive),
		errors.Is(err, ErrCouponNotStarted),
		errors.Is(err, ErrCouponExpired),
		errors.Is(err, ErrCouponUsageLimit):
		return true
	default:
		return false
	}
}
