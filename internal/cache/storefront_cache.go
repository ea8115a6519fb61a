package cache

import (
	"context"
	"strings"
	"time"

	"github.com/tablecart/internal/models"
)

const storefrontCacheTTL = 5 * time.Minute

// StorefrontState 店铺快照，仅用于按 slug 解析店铺时减少数据库查询
type StorefrontState struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	IsActive bool   `json:"is_active"`
}

func storefrontKey(slug string) string {
	return "storefront:slug:" + strings.ToLower(strings.TrimSpace(slug))
}

// BuildStorefrontState 从店铺模型构建快照
func BuildStorefrontState(storefront *models.Storefront) *StorefrontState {
	if storefront == nil {
		return nil
	}
	return &StorefrontState{
		ID:       storefront.ID,
		Slug:     storefront.Slug,
		Name:     storefront.Name,
		Currency: storefront.Currency,
		IsActive: storefront.IsActive,
	}
}

// Model 还原为店铺模型
func (s *StorefrontState) Model() *models.Storefront {
	if s == nil {
		return nil
	}
	return &models.Storefront{
		ID:       s.ID,
		Slug:     s.Slug,
		Name:     s.Name,
		Currency: s.Currency,
		IsActive: s.IsActive,
	}
}

// GetStorefront 获取店铺快照
func GetStorefront(ctx context.Context, slug string) (*StorefrontState, bool, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, false, nil
	}
	var state StorefrontState
	hit, err := GetJSON(ctx, storefrontKey(slug), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetStorefront 写入店铺快照
func SetStorefront(ctx context.Context, state *StorefrontState) error {
	if state == nil || state.Slug == "" {
		return nil
	}
	return SetJSON(ctx, storefrontKey(state.Slug), state, storefrontCacheTTL)
}

// DelStorefront 删除店铺快照
func DelStorefront(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	return Del(ctx, storefrontKey(slug))
}
