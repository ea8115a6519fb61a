package models

import (
	"time"

	"gorm.io/gorm"
)

// Storefront 店铺（餐厅）
type Storefront struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`                  // 主键
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`                       // 唯一标识
	Name      string         `gorm:"not null" json:"name"`                                   // 名称
	Currency  string         `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"` // 结算币种
	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"`           // 是否营业
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                             // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (Storefront) TableName() string {
	return "storefronts"
}

// BeforeCreate 生成主键
func (s *Storefront) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
