package cart

import (
	"sort"
	"strings"
)

// Product 商品快照（来自目录）
type Product struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	BasePriceMinorUnits int64  `json:"base_price_minor_units"`
}

// Variant 商品规格（替换基础价）
type Variant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PriceMinorUnits int64  `json:"price_minor_units"`
	IsDefault       bool   `json:"is_default"`
	SortOrder       int    `json:"sort_order"`
}

// AddonOption 可选加料（叠加到单价）
type AddonOption struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PriceMinorUnits int64  `json:"price_minor_units"`
	SortOrder       int    `json:"sort_order"`
}

// Options 商品当前可用的规格与加料
type Options struct {
	Variants []Variant     `json:"variants"`
	Addons   []AddonOption `json:"addons"`
}

// DefaultVariant 返回默认规格，没有时返回 nil
func (o Options) DefaultVariant() *Variant {
	for i := range o.Variants {
		if o.Variants[i].IsDefault {
			v := o.Variants[i]
			return &v
		}
	}
	return nil
}

// LineConfig 用户选择的商品配置
type LineConfig struct {
	Product   Product
	Options   Options
	VariantID string
	AddonIDs  []string
	Notes     string
}

// Resolution 配置解析结果
type Resolution struct {
	LineID              string
	UnitPriceMinorUnits int64
	Variant             *Variant
	Addons              []Addon
	Notes               string
}

// Resolve 解析行标识与单价。
// 选中规格时以规格价替换基础价，每个加料价格叠加；目录中找不到的规格或加料直接跳过，
// 既不计价也不参与行标识。
func Resolve(cfg LineConfig) Resolution {
	price := cfg.Product.BasePriceMinorUnits

	var variant *Variant
	if id := strings.TrimSpace(cfg.VariantID); id != "" {
		for i := range cfg.Options.Variants {
			if cfg.Options.Variants[i].ID == id {
				v := cfg.Options.Variants[i]
				variant = &v
				break
			}
		}
	}
	if variant != nil {
		price = variant.PriceMinorUnits
	}

	available := make(map[string]AddonOption, len(cfg.Options.Addons))
	for _, option := range cfg.Options.Addons {
		available[option.ID] = option
	}
	addons := make([]Addon, 0, len(cfg.AddonIDs))
	for _, id := range normalizeAddonIDs(cfg.AddonIDs) {
		option, ok := available[id]
		if !ok {
			continue
		}
		addons = append(addons, Addon{ID: option.ID, Name: option.Name, PriceMinorUnits: option.PriceMinorUnits})
		price = addPrice(price, option.PriceMinorUnits)
	}
	sort.Slice(addons, func(i, j int) bool { return addons[i].ID < addons[j].ID })

	if price < 0 {
		price = 0
	}

	notes := strings.TrimSpace(cfg.Notes)
	variantID := ""
	if variant != nil {
		variantID = variant.ID
	}
	ids := make([]string, 0, len(addons))
	for _, addon := range addons {
		ids = append(ids, addon.ID)
	}

	return Resolution{
		LineID:              LineID(cfg.Product.ID, variantID, ids, notes),
		UnitPriceMinorUnits: price,
		Variant:             variant,
		Addons:              addons,
		Notes:               notes,
	}
}
