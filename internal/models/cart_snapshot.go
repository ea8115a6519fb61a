package models

import "time"

// CartSnapshot 购物车快照（数据库槽位）
type CartSnapshot struct {
	SlotKey   string    `gorm:"primaryKey;type:varchar(255)" json:"slot_key"` // 槽位 key
	Payload   string    `gorm:"type:text;not null" json:"payload"`            // 序列化后的购物车
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`             // 过期时间
	CreatedAt time.Time `json:"created_at"`                                   // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                      // 更新时间
}

// TableName 指定表名
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
