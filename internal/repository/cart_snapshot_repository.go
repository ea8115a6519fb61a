package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tablecart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSnapshotRepository 购物车快照数据访问接口，同时实现 cart.Slot
type CartSnapshotRepository interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormCartSnapshotRepository GORM 实现
type GormCartSnapshotRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewCartSnapshotRepository 创建快照仓库，ttl 为每次写入后的保留时长
func NewCartSnapshotRepository(db *gorm.DB, ttl time.Duration) *GormCartSnapshotRepository {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &GormCartSnapshotRepository{db: db, ttl: ttl, now: time.Now}
}

// Load 读取未过期的快照
func (r *GormCartSnapshotRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var row models.CartSnapshot
	err := r.db.WithContext(ctx).
		Where("slot_key = ? AND expires_at > ?", key, r.now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(row.Payload), true, nil
}

// Save 写入快照并刷新过期时间
func (r *GormCartSnapshotRepository) Save(ctx context.Context, key string, value []byte) error {
	now := r.now()
	row := models.CartSnapshot{
		SlotKey:   key,
		Payload:   string(value),
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

// Delete 删除快照
func (r *GormCartSnapshotRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&models.CartSnapshot{}).Error
}

// PurgeExpired 清理已过期的快照，返回删除数量
func (r *GormCartSnapshotRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.CartSnapshot{})
	return result.RowsAffected, result.Error
}
