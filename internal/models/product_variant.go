package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 菜品规格（例如份量），价格替换基础价
type ProductVariant struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)" json:"id"`                     // 主键
	ProductID   string         `gorm:"type:varchar(36);not null;index" json:"product_id"`         // 菜品ID
	Name        string         `gorm:"not null" json:"name"`                                      // 规格名称
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 规格价格
	IsDefault   bool           `gorm:"not null;default:false" json:"is_default"`                  // 是否默认规格
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                       // 是否启用
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}

// BeforeCreate 生成主键
func (v *ProductVariant) BeforeCreate(_ *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
