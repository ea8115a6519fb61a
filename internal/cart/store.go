package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/logger"
)

var (
	// ErrProductRequired 商品ID为空
	ErrProductRequired = errors.New("cart product id required")
	// ErrInvalidQuantity 数量非法
	ErrInvalidQuantity = errors.New("cart quantity invalid")
	// ErrLineLimitExceeded 行数量或行小计超过上限
	ErrLineLimitExceeded = errors.New("cart line limit exceeded")
)

// State 购物车状态
type State struct {
	Items        []LineItem
	TableLabel   string
	ActiveCoupon *Coupon
}

// Totals 购物车金额汇总
type Totals struct {
	ItemCount          int   `json:"item_count"`
	SubtotalMinorUnits int64 `json:"subtotal_minor_units"`
	DiscountMinorUnits int64 `json:"discount_minor_units"`
	TotalMinorUnits    int64 `json:"total_minor_units"`
}

// Store 单个店铺的购物车。
// 所有操作同步执行且不加锁，同一个 Store 只能由一个调用方使用。
// 每次改变状态的操作都会把完整快照写入槽位；写入失败时内存状态已经生效，错误返回给调用方。
type Store struct {
	storefrontID      string
	slot              Slot
	state             State
	pendingCouponCode string
}

// Open 打开店铺购物车并从槽位恢复，槽位数据损坏时退化为空购物车
func Open(ctx context.Context, storefrontID string, slot Slot) *Store {
	if slot == nil {
		slot = NewMemorySlot()
	}
	s := &Store{slot: slot}
	s.load(ctx, storefrontID)
	return s
}

// StorefrontID 当前店铺
func (s *Store) StorefrontID() string {
	return s.storefrontID
}

// SwitchStorefront 切换店铺，旧店铺的内存状态被丢弃，旧槽位保持不变
func (s *Store) SwitchStorefront(ctx context.Context, storefrontID string) {
	storefrontID = strings.TrimSpace(storefrontID)
	if storefrontID == s.storefrontID {
		return
	}
	s.load(ctx, storefrontID)
}

func (s *Store) load(ctx context.Context, storefrontID string) {
	s.storefrontID = strings.TrimSpace(storefrontID)
	s.state = State{}
	s.pendingCouponCode = ""

	key := SlotKey(s.storefrontID)
	raw, ok, err := s.slot.Load(ctx, key)
	if err != nil {
		logger.Warnw("cart_slot_load_failed", "storefront_id", s.storefrontID, "key", key, "error", err)
		return
	}
	if !ok {
		return
	}
	decoded, err := decodeSnapshot(raw)
	if err != nil {
		logger.Warnw("cart_snapshot_corrupt", "storefront_id", s.storefrontID, "key", key, "error", err)
		return
	}
	if decoded.Dropped > 0 {
		logger.Infow("cart_snapshot_lines_dropped", "storefront_id", s.storefrontID, "dropped", decoded.Dropped)
	}
	s.state.Items = decoded.Items
	s.state.TableLabel = decoded.TableLabel
	s.pendingCouponCode = decoded.CouponCode
}

// AddItem 加入购物车，配置相同则合并数量。quantity 为 0 时按 1 处理。
// 合并后超过行上限时拒绝，购物车保持不变。
func (s *Store) AddItem(ctx context.Context, cfg LineConfig, quantity int) (LineItem, error) {
	cfg.Product.ID = strings.TrimSpace(cfg.Product.ID)
	if cfg.Product.ID == "" {
		return LineItem{}, ErrProductRequired
	}
	if quantity < 0 || quantity > constants.MaxLineQuantity {
		return LineItem{}, ErrInvalidQuantity
	}
	if quantity == 0 {
		quantity = 1
	}

	resolved := Resolve(cfg)
	var line LineItem
	if idx := s.indexOf(resolved.LineID); idx >= 0 {
		existing := &s.state.Items[idx]
		if existing.Quantity+quantity > quantityLimit(existing.UnitPriceMinorUnits) {
			return existing.clone(), ErrLineLimitExceeded
		}
		existing.Quantity += quantity
		line = existing.clone()
	} else {
		if quantity > quantityLimit(resolved.UnitPriceMinorUnits) {
			return LineItem{}, ErrLineLimitExceeded
		}
		line = LineItem{
			LineID:              resolved.LineID,
			ProductID:           cfg.Product.ID,
			DisplayName:         strings.TrimSpace(cfg.Product.Name),
			UnitPriceMinorUnits: resolved.UnitPriceMinorUnits,
			Quantity:            quantity,
			Addons:              resolved.Addons,
			Notes:               resolved.Notes,
		}
		if resolved.Variant != nil {
			line.VariantID = resolved.Variant.ID
			line.VariantName = resolved.Variant.Name
		}
		s.state.Items = append(s.state.Items, line)
		line = line.clone()
	}
	return line, s.persist(ctx)
}

// IncrementLine 数量加一，行不存在时忽略，已达上限时返回 ErrLineLimitExceeded
func (s *Store) IncrementLine(ctx context.Context, lineID string) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return nil
	}
	if s.state.Items[idx].Quantity+1 > quantityLimit(s.state.Items[idx].UnitPriceMinorUnits) {
		return ErrLineLimitExceeded
	}
	s.state.Items[idx].Quantity++
	return s.persist(ctx)
}

// DecrementLine 数量减一，减到 0 时移除该行，行不存在时忽略
func (s *Store) DecrementLine(ctx context.Context, lineID string) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return nil
	}
	if s.state.Items[idx].Quantity <= 1 {
		s.removeAt(idx)
	} else {
		s.state.Items[idx].Quantity--
	}
	return s.persist(ctx)
}

// RemoveLine 删除行
func (s *Store) RemoveLine(ctx context.Context, lineID string) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return nil
	}
	s.removeAt(idx)
	return s.persist(ctx)
}

// SetTableLabel 设置桌号
func (s *Store) SetTableLabel(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == s.state.TableLabel {
		return nil
	}
	s.state.TableLabel = label
	return s.persist(ctx)
}

// ApplyCoupon 替换当前优惠券，不做有效性校验；传入 nil 等同于 RemoveCoupon
func (s *Store) ApplyCoupon(ctx context.Context, coupon *Coupon) error {
	if coupon == nil {
		return s.RemoveCoupon(ctx)
	}
	previous := s.couponCode()
	s.state.ActiveCoupon = coupon.clone()
	s.pendingCouponCode = ""
	if s.couponCode() == previous {
		return nil
	}
	return s.persist(ctx)
}

// RemoveCoupon 移除优惠券（包括待校验的优惠码）
func (s *Store) RemoveCoupon(ctx context.Context) error {
	if s.state.ActiveCoupon == nil && s.pendingCouponCode == "" {
		return nil
	}
	s.state.ActiveCoupon = nil
	s.pendingCouponCode = ""
	return s.persist(ctx)
}

// Clear 清空商品、桌号与优惠券
func (s *Store) Clear(ctx context.Context) error {
	s.state = State{}
	s.pendingCouponCode = ""
	key := SlotKey(s.storefrontID)
	if err := s.slot.Delete(ctx, key); err != nil {
		logger.Warnw("cart_slot_delete_failed", "storefront_id", s.storefrontID, "key", key, "error", err)
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

// PendingCouponCode 从快照恢复、尚未重新校验的优惠码
func (s *Store) PendingCouponCode() string {
	return s.pendingCouponCode
}

// Items 返回购物车行副本
func (s *Store) Items() []LineItem {
	items := make([]LineItem, 0, len(s.state.Items))
	for _, item := range s.state.Items {
		items = append(items, item.clone())
	}
	return items
}

// Line 按行标识查询
func (s *Store) Line(lineID string) (LineItem, bool) {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return LineItem{}, false
	}
	return s.state.Items[idx].clone(), true
}

// TableLabel 桌号
func (s *Store) TableLabel() string {
	return s.state.TableLabel
}

// ActiveCoupon 当前优惠券副本
func (s *Store) ActiveCoupon() *Coupon {
	return s.state.ActiveCoupon.clone()
}

// ItemCount 商品总件数
func (s *Store) ItemCount() int {
	count := 0
	for _, item := range s.state.Items {
		count += item.Quantity
	}
	return count
}

// SubtotalMinorUnits 小计
func (s *Store) SubtotalMinorUnits() int64 {
	var subtotal int64
	for _, item := range s.state.Items {
		subtotal += item.LineTotalMinorUnits()
	}
	return subtotal
}

// DiscountMinorUnits 折扣
func (s *Store) DiscountMinorUnits() int64 {
	return s.state.ActiveCoupon.Discount(s.SubtotalMinorUnits())
}

// TotalMinorUnits 应付金额，不会小于 0
func (s *Store) TotalMinorUnits() int64 {
	total := s.SubtotalMinorUnits() - s.DiscountMinorUnits()
	if total < 0 {
		return 0
	}
	return total
}

// Totals 一次性返回全部汇总
func (s *Store) Totals() Totals {
	return Totals{
		ItemCount:          s.ItemCount(),
		SubtotalMinorUnits: s.SubtotalMinorUnits(),
		DiscountMinorUnits: s.DiscountMinorUnits(),
		TotalMinorUnits:    s.TotalMinorUnits(),
	}
}

// Snapshot 序列化当前状态
func (s *Store) Snapshot() ([]byte, error) {
	return EncodeSnapshot(s.state, s.couponCode())
}

func (s *Store) couponCode() string {
	if s.state.ActiveCoupon != nil {
		return strings.TrimSpace(s.state.ActiveCoupon.Code)
	}
	return s.pendingCouponCode
}

func (s *Store) indexOf(lineID string) int {
	if lineID == "" {
		return -1
	}
	for i := range s.state.Items {
		if s.state.Items[i].LineID == lineID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
}

func (s *Store) persist(ctx context.Context) error {
	payload, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	key := SlotKey(s.storefrontID)
	if err := s.slot.Save(ctx, key, payload); err != nil {
		logger.Warnw("cart_slot_save_failed", "storefront_id", s.storefrontID, "key", key, "error", err)
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
