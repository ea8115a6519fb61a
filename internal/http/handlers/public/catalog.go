package public

import (
	"strconv"
	"strings"

	"github.com/tablecart/internal/cart"
	handlershared "github.com/tablecart/internal/http/handlers/shared"
	"github.com/tablecart/internal/http/response"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductView 菜单菜品响应结构
type ProductView struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	BasePriceMinorUnits int64              `json:"base_price_minor_units"`
	DefaultVariantID    string             `json:"default_variant_id,omitempty"` // 建议预选的规格
	Variants            []cart.Variant     `json:"variants"`
	Addons              []cart.AddonOption `json:"addons"`
}

func buildProductView(options *service.ProductOptions) ProductView {
	view := ProductView{
		ID:                  options.Product.ID,
		Name:                options.Product.Name,
		BasePriceMinorUnits: options.Product.BasePriceMinorUnits,
		Variants:            options.Options.Variants,
		Addons:              options.Options.Addons,
	}
	if variant := options.Options.DefaultVariant(); variant != nil {
		view.DefaultVariantID = variant.ID
	}
	if options.Model != nil {
		view.Description = options.Model.Description
	}
	return view
}

// resolveStorefront 按路由 slug 解析店铺，失败时已写入响应
func (h *Handler) resolveStorefront(c *gin.Context) (*models.Storefront, bool) {
	storefront, err := h.CartService.ResolveStorefront(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, storefrontErrorRules, response.CodeInternal, "error.storefront_fetch_failed")
		return nil, false
	}
	return storefront, true
}

// ListProducts 获取店铺菜单
func (h *Handler) ListProducts(c *gin.Context) {
	storefront, ok := h.resolveStorefront(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.CatalogService.ListProducts(storefront.ID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}

	items := make([]ProductView, 0, len(products))
	for i := range products {
		items = append(items, buildProductView(service.NewProductOptions(&products[i])))
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetProductOptions 获取菜品的可选规格与加料
func (h *Handler) GetProductOptions(c *gin.Context) {
	storefront, ok := h.resolveStorefront(c)
	if !ok {
		return
	}
	options, err := h.CatalogService.GetOptions(storefront.ID, c.Param("product_id"))
	if err != nil {
		respondWithMappedError(c, err, cartMutationErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, buildProductView(options))
}
