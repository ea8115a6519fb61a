package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`                                                 // 主键
	StorefrontID string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_coupon_storefront_code" json:"storefront_id"` // 所属店铺
	Code         string         `gorm:"not null;uniqueIndex:idx_coupon_storefront_code" json:"code"`                           // 优惠码
	Type         string         `gorm:"not null" json:"type"`                                                                  // 类型（percentage/fixed）
	Value        Money          `gorm:"type:decimal(20,2);not null" json:"value"`                                              // 数值（百分比或固定金额）
	MinAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`                               // 使用门槛（0 表示不限制）
	MaxDiscount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`                             // 最大优惠金额（0 表示不限制）
	UsageLimit   int            `gorm:"not null;default:0" json:"usage_limit"`                                                 // 总使用上限（0 表示不限制）
	UsedCount    int            `gorm:"not null;default:0" json:"used_count"`                                                  // 已使用次数
	StartsAt     *time.Time     `gorm:"index" json:"starts_at"`                                                                // 生效时间
	EndsAt       *time.Time     `gorm:"index" json:"ends_at"`                                                                  // 失效时间
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`                                                // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                                               // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                                               // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                                        // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// BeforeCreate 生成主键
func (c *Coupon) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
