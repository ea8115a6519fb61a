package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSnapshotCorrupt 快照无法解析或结构不符
var ErrSnapshotCorrupt = errors.New("cart snapshot corrupt")

// snapshot 持久化格式（只保存优惠码，不保存折扣规则）
type snapshot struct {
	Items      []LineItem `json:"items"`
	TableLabel string     `json:"table_label"`
	CouponCode string     `json:"coupon_code"`
}

// decodedSnapshot 解析后的快照
type decodedSnapshot struct {
	Items      []LineItem
	TableLabel string
	CouponCode string
	Dropped    int
}

// EncodeSnapshot 序列化购物车状态
func EncodeSnapshot(state State, couponCode string) ([]byte, error) {
	items := state.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(snapshot{
		Items:      items,
		TableLabel: state.TableLabel,
		CouponCode: strings.TrimSpace(couponCode),
	})
}

func decodeSnapshot(raw []byte) (decodedSnapshot, error) {
	var result decodedSnapshot
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return result, ErrSnapshotCorrupt
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return result, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	var rawItems []json.RawMessage
	if err := decodeOptionalField(fields, "items", &rawItems); err != nil {
		return result, err
	}
	if err := decodeOptionalField(fields, "table_label", &result.TableLabel); err != nil {
		return result, err
	}
	if err := decodeOptionalField(fields, "coupon_code", &result.CouponCode); err != nil {
		return result, err
	}
	result.TableLabel = strings.TrimSpace(result.TableLabel)
	result.CouponCode = strings.TrimSpace(result.CouponCode)

	index := make(map[string]int, len(rawItems))
	for _, entry := range rawItems {
		var item LineItem
		if err := json.Unmarshal(entry, &item); err != nil {
			result.Dropped++
			continue
		}
		normalized, ok := normalizePersistedLine(item)
		if !ok {
			result.Dropped++
			continue
		}
		if pos, exists := index[normalized.LineID]; exists {
			merged := &result.Items[pos]
			merged.Quantity += normalized.Quantity
			if limit := quantityLimit(merged.UnitPriceMinorUnits); merged.Quantity > limit {
				merged.Quantity = limit
			}
			continue
		}
		index[normalized.LineID] = len(result.Items)
		result.Items = append(result.Items, normalized)
	}
	return result, nil
}

func decodeOptionalField(fields map[string]json.RawMessage, name string, dest interface{}) error {
	value, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(value, dest); err != nil {
		return fmt.Errorf("%w: field %s: %v", ErrSnapshotCorrupt, name, err)
	}
	return nil
}

// normalizePersistedLine 校验并规整持久化的行，超限数量截断到上限，行标识按字段重新计算
func normalizePersistedLine(item LineItem) (LineItem, bool) {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" || item.Quantity < 1 || item.UnitPriceMinorUnits < 0 {
		return LineItem{}, false
	}
	limit := quantityLimit(item.UnitPriceMinorUnits)
	if limit < 1 {
		return LineItem{}, false
	}
	if item.Quantity > limit {
		item.Quantity = limit
	}
	item.VariantID = strings.TrimSpace(item.VariantID)
	if item.VariantID == "" {
		item.VariantName = ""
	}
	item.Notes = strings.TrimSpace(item.Notes)

	seen := make(map[string]struct{}, len(item.Addons))
	addons := make([]Addon, 0, len(item.Addons))
	for _, addon := range item.Addons {
		addon.ID = strings.TrimSpace(addon.ID)
		if addon.ID == "" {
			continue
		}
		if _, ok := seen[addon.ID]; ok {
			continue
		}
		seen[addon.ID] = struct{}{}
		addons = append(addons, addon)
	}
	sort.Slice(addons, func(i, j int) bool { return addons[i].ID < addons[j].ID })
	item.Addons = addons

	item.LineID = LineID(item.ProductID, item.VariantID, item.AddonIDs(), item.Notes)
	return item, true
}
