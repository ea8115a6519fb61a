package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 菜品
type Product struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`                     // 主键
	StorefrontID string         `gorm:"type:varchar(36);not null;index" json:"storefront_id"`      // 所属店铺
	Name         string         `gorm:"not null" json:"name"`                                      // 名称
	Description  string         `gorm:"type:text" json:"description"`                              // 描述
	PriceAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 基础价格
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder    int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格列表
	Addons   []ProductAddon   `gorm:"foreignKey:ProductID" json:"addons,omitempty"`   // 加料列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 生成主键
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
