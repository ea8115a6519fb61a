package public

import (
	"time"

	handlershared "github.com/tablecart/internal/http/handlers/shared"
	"github.com/tablecart/internal/http/response"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
)

// CartSessionResponse 会话签发响应
type CartSessionResponse struct {
	Token     string           `json:"token"`
	SessionID string           `json:"session_id"`
	ExpiresAt time.Time        `json:"expires_at"`
	Cart      service.CartView `json:"cart"`
}

// CreateCartSession 签发购物车会话。
// 请求携带本店铺仍有效的会话时续期原会话，购物车内容保持不变；否则创建新会话。
func (h *Handler) CreateCartSession(c *gin.Context) {
	storefront, ok := h.resolveStorefront(c)
	if !ok {
		return
	}

	sessionID := ""
	if token, ok := handlershared.ExtractCartToken(c); ok {
		if claims, err := h.CartSessionService.ParseForStorefront(token, storefront.ID); err == nil {
			sessionID = claims.SessionID
		}
	}

	session, err := h.CartSessionService.Issue(storefront.ID, sessionID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_session_issue_failed", err)
		return
	}
	openCart, err := h.CartService.OpenForStorefront(c.Request.Context(), storefront, session.SessionID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_unavailable", err)
		return
	}
	response.Success(c, CartSessionResponse{
		Token:     session.Token,
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
		Cart:      h.CartService.View(openCart),
	})
}
