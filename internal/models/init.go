package models

import (
	"strings"

	"github.com/tablecart/internal/logger"
)

// InitDefaultStorefront 初始化默认店铺，已有任意店铺时不做处理
func InitDefaultStorefront(slug, name, currency string) error {
	var count int64
	if err := DB.Model(&Storefront{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = "main"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Main Dining Room"
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}

	storefront := Storefront{
		Slug:     slug,
		Name:     name,
		Currency: currency,
		IsActive: true,
	}
	if err := DB.Create(&storefront).Error; err != nil {
		return err
	}
	logger.Infow("default_storefront_created", "storefront_id", storefront.ID, "slug", slug)
	return nil
}
