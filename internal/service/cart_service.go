package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tablecart/internal/cache"
	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/repository"
)

// AddItemInput 加购输入
type AddItemInput struct {
	ProductID string
	VariantID string
	AddonIDs  []string
	Notes     string
	Quantity  int
}

// OpenCart 已恢复的会话购物车
type OpenCart struct {
	Storefront *models.Storefront
	SessionID  string
	Store      *cart.Store
}

// CartLineView 购物车行（用于响应）
type CartLineView struct {
	cart.LineItem
	LineTotalMinorUnits int64 `json:"line_total_minor_units"`
}

// CartCouponView 当前优惠券（用于响应）
type CartCouponView struct {
	Code                  string `json:"code"`
	DiscountType          string `json:"discount_type"`
	DiscountValue         string `json:"discount_value"`
	MinOrderMinorUnits    *int64 `json:"min_order_minor_units,omitempty"`
	MaxDiscountMinorUnits *int64 `json:"max_discount_minor_units,omitempty"`
}

// CartView 购物车详情（用于响应）
type CartView struct {
	StorefrontID string          `json:"storefront_id"`
	Currency     string          `json:"currency"`
	Items        []CartLineView  `json:"items"`
	TableLabel   string          `json:"table_label"`
	Coupon       *CartCouponView `json:"coupon"`
	cart.Totals
}

// CartService 购物车服务：解析店铺、恢复会话购物车、查询菜单与优惠券
type CartService struct {
	storefrontRepo repository.StorefrontRepository
	catalog        *CatalogService
	coupons        *CouponService
	slot           cart.Slot
	now            func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(storefrontRepo repository.StorefrontRepository, catalog *CatalogService, coupons *CouponService, slot cart.Slot) *CartService {
	if slot == nil {
		slot = cart.NewMemorySlot()
	}
	return &CartService{
		storefrontRepo: storefrontRepo,
		catalog:        catalog,
		coupons:        coupons,
		slot:           slot,
		now:            time.Now,
	}
}

// ResolveStorefront 按 slug 获取营业中的店铺（优先读缓存）
func (s *CartService) ResolveStorefront(ctx context.Context, slug string) (*models.Storefront, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrStorefrontNotFound
	}
	if state, hit, err := cache.GetStorefront(ctx, slug); err != nil {
		logger.Warnw("storefront_cache_get_failed", "slug", slug, "error", err)
	} else if hit {
		return activeStorefront(state.Model())
	}

	storefront, err := s.storefrontRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if storefront == nil {
		return nil, ErrStorefrontNotFound
	}
	if err := cache.SetStorefront(ctx, cache.BuildStorefrontState(storefront)); err != nil {
		logger.Warnw("storefront_cache_set_failed", "slug", slug, "error", err)
	}
	return activeStorefront(storefront)
}

func activeStorefront(storefront *models.Storefront) (*models.Storefront, error) {
	if storefront == nil {
		return nil, ErrStorefrontNotFound
	}
	if !storefront.IsActive {
		return nil, ErrStorefrontInactive
	}
	return storefront, nil
}

// Open 恢复会话购物车。快照中的优惠码会重新校验，校验不通过则静默移除。
func (s *CartService) Open(ctx context.Context, storefrontSlug, sessionID string) (*OpenCart, error) {
	storefront, err := s.ResolveStorefront(ctx, storefrontSlug)
	if err != nil {
		return nil, err
	}
	return s.OpenForStorefront(ctx, storefront, sessionID)
}

// OpenForStorefront 在已解析的店铺下恢复会话购物车
func (s *CartService) OpenForStorefront(ctx context.Context, storefront *models.Storefront, sessionID string) (*OpenCart, error) {
	if storefront == nil {
		return nil, ErrStorefrontNotFound
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrCartSessionInvalid
	}
	store := cart.Open(ctx, storefront.ID, cart.NewScopedSlot(s.slot, sessionID))
	s.revalidatePendingCoupon(ctx, store)
	return &OpenCart{Storefront: storefront, SessionID: sessionID, Store: store}, nil
}

func (s *CartService) revalidatePendingCoupon(ctx context.Context, store *cart.Store) {
	code := store.PendingCouponCode()
	if code == "" {
		return
	}
	coupon, err := s.coupons.Lookup(store.StorefrontID(), code, s.now())
	if err != nil {
		if !IsCouponRejection(err) {
			logger.Warnw("cart_pending_coupon_lookup_failed", "storefront_id", store.StorefrontID(), "code", code, "error", err)
			return
		}
		logger.Infow("cart_pending_coupon_dropped", "storefront_id", store.StorefrontID(), "code", code, "reason", err.Error())
		if err := store.RemoveCoupon(ctx); err != nil {
			logger.Warnw("cart_pending_coupon_remove_failed", "storefront_id", store.StorefrontID(), "error", err)
		}
		return
	}
	if err := store.ApplyCoupon(ctx, coupon); err != nil {
		logger.Warnw("cart_pending_coupon_apply_failed", "storefront_id", store.StorefrontID(), "error", err)
	}
}

// AddItem 查询菜单后加入购物车
func (s *CartService) AddItem(ctx context.Context, oc *OpenCart, input AddItemInput) (cart.LineItem, error) {
	if input.Quantity < 0 || input.Quantity > constants.MaxLineQuantity {
		return cart.LineItem{}, cart.ErrInvalidQuantity
	}
	options, err := s.catalog.GetOptions(oc.Storefront.ID, input.ProductID)
	if err != nil {
		return cart.LineItem{}, err
	}
	line, err := oc.Store.AddItem(ctx, cart.LineConfig{
		Product:   options.Product,
		Options:   options.Options,
		VariantID: input.VariantID,
		AddonIDs:  input.AddonIDs,
		Notes:     input.Notes,
	}, input.Quantity)
	if err != nil {
		return line, saveError(err)
	}
	return line, nil
}

// ApplyCouponCode 校验优惠码后替换当前优惠券
func (s *CartService) ApplyCouponCode(ctx context.Context, oc *OpenCart, code string) (*cart.Coupon, error) {
	coupon, err := s.coupons.Lookup(oc.Storefront.ID, code, s.now())
	if err != nil {
		return nil, err
	}
	if err := oc.Store.ApplyCoupon(ctx, coupon); err != nil {
		return nil, saveError(err)
	}
	return coupon, nil
}

// IncrementLine 数量加一
func (s *CartService) IncrementLine(ctx context.Context, oc *OpenCart, lineID string) error {
	return saveError(oc.Store.IncrementLine(ctx, lineID))
}

// DecrementLine 数量减一
func (s *CartService) DecrementLine(ctx context.Context, oc *OpenCart, lineID string) error {
	return saveError(oc.Store.DecrementLine(ctx, lineID))
}

// RemoveLine 删除行
func (s *CartService) RemoveLine(ctx context.Context, oc *OpenCart, lineID string) error {
	return saveError(oc.Store.RemoveLine(ctx, lineID))
}

// SetTableLabel 设置桌号
func (s *CartService) SetTableLabel(ctx context.Context, oc *OpenCart, label string) error {
	return saveError(oc.Store.SetTableLabel(ctx, label))
}

// RemoveCoupon 移除优惠券
func (s *CartService) RemoveCoupon(ctx context.Context, oc *OpenCart) error {
	return saveError(oc.Store.RemoveCoupon(ctx))
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, oc *OpenCart) error {
	return saveError(oc.Store.Clear(ctx))
}

// View 构建购物车响应
func (s *CartService) View(oc *OpenCart) CartView {
	items := oc.Store.Items()
	lines := make([]CartLineView, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLineView{LineItem: item, LineTotalMinorUnits: item.LineTotalMinorUnits()})
	}
	view := CartView{
		StorefrontID: oc.Storefront.ID,
		Currency:     oc.Storefront.Currency,
		Items:        lines,
		TableLabel:   oc.Store.TableLabel(),
		Totals:       oc.Store.Totals(),
	}
	if coupon := oc.Store.ActiveCoupon(); coupon != nil {
		view.Coupon = &CartCouponView{
			Code:                  coupon.Code,
			DiscountType:          coupon.DiscountType,
			DiscountValue:         coupon.DiscountValue.String(),
			MinOrderMinorUnits:    coupon.MinOrderMinorUnits,
			MaxDiscountMinorUnits: coupon.MaxDiscountMinorUnits,
		}
	}
	return view
}

// saveError 区分入参错误与持久化失败
func saveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cart.ErrProductRequired) || errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrLineLimitExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCartSaveFailed, err)
}
