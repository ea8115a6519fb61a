package shared

import (
	"strings"

	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/http/response"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOpenCart 从上下文读取会话中间件恢复的购物车并统一处理错误响应。
func GetOpenCart(c *gin.Context) (*service.OpenCart, bool) {
	value, exists := c.Get(constants.CartContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.cart_session_missing", nil)
		return nil, false
	}
	openCart, ok := value.(*service.OpenCart)
	if !ok || openCart == nil || openCart.Store == nil || openCart.Storefront == nil {
		RespondError(c, response.CodeInternal, "error.cart_context_invalid", nil)
		return nil, false
	}
	return openCart, true
}

// GetCartSessionClaims 读取会话 Claims
func GetCartSessionClaims(c *gin.Context) (*service.CartSessionClaims, bool) {
	value, exists := c.Get(constants.CartSessionClaimKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*service.CartSessionClaims)
	return claims, ok && claims != nil
}

// ExtractCartToken 优先读取 Authorization: Bearer，其次读取 X-Cart-Token。
// Authorization 存在但格式不正确时视为未携带。
func ExtractCartToken(c *gin.Context) (string, bool) {
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), true
		}
		return "", false
	}
	token := strings.TrimSpace(c.GetHeader(constants.CartSessionHeader))
	return token, token != ""
}
