package cart

import (
	"encoding/base64"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tablecart/internal/constants"
)

// Addon 已选加料快照
type Addon struct {
	ID              string `json:"id"`                // 加料ID
	Name            string `json:"name"`              // 加料名称
	PriceMinorUnits int64  `json:"price_minor_units"` // 加料单价（最小货币单位）
}

// LineItem 购物车行
type LineItem struct {
	LineID              string  `json:"line_id"`                // 行标识（由商品配置推导）
	ProductID           string  `json:"product_id"`             // 商品ID
	DisplayName         string  `json:"display_name"`           // 加入时的商品名称快照
	UnitPriceMinorUnits int64   `json:"unit_price_minor_units"` // 单价（已含规格与加料）
	Quantity            int     `json:"quantity"`               // 数量
	VariantID           string  `json:"variant_id,omitempty"`   // 规格ID
	VariantName         string  `json:"variant_name,omitempty"` // 规格名称
	Addons              []Addon `json:"addons"`                 // 加料集合（按ID排序）
	Notes               string  `json:"notes,omitempty"`        // 备注
}

// LineTotalMinorUnits 行小计
func (l LineItem) LineTotalMinorUnits() int64 {
	return l.UnitPriceMinorUnits * int64(l.Quantity)
}

// quantityLimit 单价对应的行数量上限，保证行小计不超过 MaxLineTotalMinorUnits；
// 返回 0 表示单价本身已超限
func quantityLimit(unitPrice int64) int {
	limit := constants.MaxLineQuantity
	if unitPrice > 0 {
		if byTotal := constants.MaxLineTotalMinorUnits / unitPrice; byTotal < int64(limit) {
			limit = int(byTotal)
		}
	}
	return limit
}

// addPrice 饱和加法，溢出时停在 int64 边界
func addPrice(a, b int64) int64 {
	sum := a + b
	if b > 0 && sum < a {
		return math.MaxInt64
	}
	if b < 0 && sum > a {
		return math.MinInt64
	}
	return sum
}

// AddonIDs 返回已排序的加料ID
func (l LineItem) AddonIDs() []string {
	ids := make([]string, 0, len(l.Addons))
	for _, addon := range l.Addons {
		ids = append(ids, addon.ID)
	}
	return ids
}

func (l LineItem) clone() LineItem {
	out := l
	if l.Addons != nil {
		out.Addons = append([]Addon(nil), l.Addons...)
	}
	return out
}

// LineID 计算行标识。
// 字段顺序固定：商品、规格、加料（去重排序）、备注（去首尾空白）。
// 每个字段都带长度前缀，未选规格使用不带长度的占位符，因此任意ID内容都不会产生歧义。
func LineID(productID, variantID string, addonIDs []string, notes string) string {
	var b strings.Builder
	writeKeyField(&b, 'p', strings.TrimSpace(productID))

	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		b.WriteString("v-")
	} else {
		writeKeyField(&b, 'v', variantID)
	}

	ids := normalizeAddonIDs(addonIDs)
	b.WriteByte('a')
	b.WriteString(strconv.Itoa(len(ids)))
	b.WriteByte('[')
	for _, id := range ids {
		writeKeyField(&b, 'i', id)
	}
	b.WriteByte(']')

	writeKeyField(&b, 'n', strings.TrimSpace(notes))
	return base64.RawURLEncoding.EncodeToString([]byte(b.String()))
}

func writeKeyField(b *strings.Builder, tag byte, value string) {
	b.WriteByte(tag)
	b.WriteString(strconv.Itoa(len(value)))
	b.WriteByte(':')
	b.WriteString(value)
}

func normalizeAddonIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
