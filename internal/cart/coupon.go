package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DiscountTypePercentage 百分比折扣
	DiscountTypePercentage = "percentage"
	// DiscountTypeFixed 固定金额折扣（最小货币单位）
	DiscountTypeFixed = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Coupon 优惠券快照
type Coupon struct {
	Code                  string          `json:"code"`
	DiscountType          string          `json:"discount_type"`
	DiscountValue         decimal.Decimal `json:"discount_value"`
	MinOrderMinorUnits    *int64          `json:"min_order_minor_units,omitempty"`
	MaxDiscountMinorUnits *int64          `json:"max_discount_minor_units,omitempty"`
}

// Discount 按小计计算折扣金额，任何无效输入都得到 0
func (c *Coupon) Discount(subtotal int64) int64 {
	if c == nil || subtotal <= 0 {
		return 0
	}
	if c.MinOrderMinorUnits != nil && subtotal < *c.MinOrderMinorUnits {
		return 0
	}

	var amount decimal.Decimal
	var limit *int64
	switch strings.ToLower(strings.TrimSpace(c.DiscountType)) {
	case DiscountTypePercentage:
		amount = decimal.NewFromInt(subtotal).Mul(c.DiscountValue).Div(hundred).Round(0)
		limit = c.MaxDiscountMinorUnits
	case DiscountTypeFixed:
		amount = c.DiscountValue.Round(0)
	default:
		return 0
	}

	// 先在十进制下截断到小计，超大面值不会在转换 int64 时溢出
	if amount.Sign() <= 0 {
		return 0
	}
	if amount.GreaterThan(decimal.NewFromInt(subtotal)) {
		amount = decimal.NewFromInt(subtotal)
	}
	discount := amount.IntPart()
	if limit != nil && discount > *limit {
		discount = *limit
	}
	if discount < 0 {
		return 0
	}
	return discount
}

func (c *Coupon) clone() *Coupon {
	if c == nil {
		return nil
	}
	out := *c
	if c.MinOrderMinorUnits != nil {
		v := *c.MinOrderMinorUnits
		out.MinOrderMinorUnits = &v
	}
	if c.MaxDiscountMinorUnits != nil {
		v := *c.MaxDiscountMinorUnits
		out.MaxDiscountMinorUnits = &v
	}
	return &out
}
