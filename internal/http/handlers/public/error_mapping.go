package public

import (
	"errors"

	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/http/response"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var storefrontErrorRules = []mappedHandlerError{
	{target: service.ErrStorefrontNotFound, code: response.CodeNotFound, key: "error.storefront_not_found"},
	{target: service.ErrStorefrontInactive, code: response.CodeNotFound, key: "error.storefront_not_found"},
}

var cartMutationErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: cart.ErrProductRequired, code: response.CodeBadRequest, key: "error.product_required"},
	{target: cart.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.quantity_invalid"},
	{target: cart.ErrLineLimitExceeded, code: response.CodeBadRequest, key: "error.cart_line_limit_exceeded"},
	{target: service.ErrCartSaveFailed, code: response.CodeInternal, key: "error.cart_save_failed"},
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, key: "error.coupon_not_found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, key: "error.coupon_not_started"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
}

var applyCouponErrorRules = concatMappedHandlerErrors(couponErrorRules, cartMutationErrorRules)
