package public

import (
	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/http/response"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	VariantID string   `json:"variant_id"`
	AddonIDs  []string `json:"addon_ids"`
	Notes     string   `json:"notes" binding:"max=500"`
	Quantity  int      `json:"quantity" binding:"min=0,max=999"`
}

// AddCartItemResponse 加购响应
type AddCartItemResponse struct {
	Line cart.LineItem    `json:"line"`
	Cart service.CartView `json:"cart"`
}

// SetTableLabelRequest 设置桌号请求
type SetTableLabelRequest struct {
	TableLabel string `json:"table_label" binding:"max=64"`
}

// ApplyCouponRequest 使用优惠码请求
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	openCart, ok := getOpenCart(c)
	if !ok {
		return
	}
	response.Success(c, h.CartService.View(openCart))
}

// AddCartItem 加入购物车，配置相同的行合并数量
func (h *Handler) AddCartItem(c *gin.Context) {
	openCart, ok := getOpenCart(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	line, err := h.CartService.AddItem(c.Request.Context(), openCart, service.AddItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		AddonIDs:  req.AddonIDs,
		Notes:     req.Notes,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondWithMappedError(c, err, cartMutationErrorRules, response.CodeInternal, "error.cart_save_failed")
		return
	}
	response.Success(c, AddCartItemResponse{Line: line, Cart: h.CartService.View(openCart)})
}

// IncrementCartLine 行数量加一
func (h *Handler) IncrementCartLine(c *gin.Context) {
	h.mutateCart(c, func(openCart *service.OpenCart) error {
		return h.CartService.IncrementLine(c.Request.Context(), openCart, c.Param("line_id"))
	})
}

// DecrementCartLine 行数量减一，减到 0 时移除
func (h *Handler) DecrementCartLine(c *gin.Context) {
	h.mutateCart(c, func(openCart *service.OpenCart) error {
		return h.CartService.DecrementLine(c.Request.Context(), openCart, c.Param("line_id"))
	})
}

// RemoveCartLine 删除行
func (h *Handler) RemoveCartLine(c *gin.Context) {
	h.mutateCart(c, func(openCart *service.OpenCart) error {
		return h.CartService.RemoveLine(c.Request.Context(), openCart, c.Param("line_id"))
	})
}

// SetTableLabel 设置桌号，空字符串表示清除
func (h *Handler) SetTableLabel(c *gin.Context) {
	var req SetTableLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	h.mutateCart(c, func(openCart *service.OpenCart) error {
		return h.CartService.SetTableLabel(c.Request.Context(), openCart, req.TableLabel)
	})
}

// ApplyCoupon 使用优惠码，校验失败时保留原优惠券
func (h *Handler) ApplyCoupon(c *gin.Context) {
	openCart, ok := getOpenCart(c)
	if !ok {
		return
	}
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if _, err := h.CartService.ApplyCouponCode(c.Request.Context(), openCart, req.Code); err != nil {
		if service.IsCouponRejection(err) {
			requestLog(c).Infow("cart_coupon_rejected", "storefront_id", openCart.Storefront.ID, "code", req.Code, "reason", err.Error())
		}
		respondWithMappedError(c, err, applyCouponErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
		return
	}
	response.Success(c, h.CartService.View(openCart))
}

// RemoveCoupon 移除优惠券
func (h *Handler) RemoveCoupon(c *gin.Context) {
	h.mutateCart(c, func(openCart *service.OpenCart) error {
		return h.CartService.RemoveCoupon(c.Request.Context(), openCart)
	})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	h.mutateCart(c, func(openCart *service.OpenCart) error {
		return h.CartService.Clear(c.Request.Context(), openCart)
	})
}

func (h *Handler) mutateCart(c *gin.Context, mutate func(*service.OpenCart) error) {
	openCart, ok := getOpenCart(c)
	if !ok {
		return
	}
	if err := mutate(openCart); err != nil {
		respondWithMappedError(c, err, cartMutationErrorRules, response.CodeInternal, "error.cart_save_failed")
		return
	}
	response.Success(c, h.CartService.View(openCart))
}
