package repository

import (
	"errors"

	"github.com/tablecart/internal/models"

	"gorm.io/gorm"
)

// StorefrontRepository 店铺数据访问接口
type StorefrontRepository interface {
	GetBySlug(slug string) (*models.Storefront, error)
	Create(storefront *models.Storefront) error
	WithTx(tx *gorm.DB) *GormStorefrontRepository
}

// GormStorefrontRepository GORM 实现
type GormStorefrontRepository struct {
	db *gorm.DB
}

// NewStorefrontRepository 创建店铺仓库
func NewStorefrontRepository(db *gorm.DB) *GormStorefrontRepository {
	return &GormStorefrontRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStorefrontRepository) WithTx(tx *gorm.DB) *GormStorefrontRepository {
	if tx == nil {
		return r
	}
	return &GormStorefrontRepository{db: tx}
}

// GetBySlug 根据标识获取店铺，不存在时返回 nil
func (r *GormStorefrontRepository) GetBySlug(slug string) (*models.Storefront, error) {
	var storefront models.Storefront
	if err := r.db.Where("slug = ?", slug).First(&storefront).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &storefront, nil
}

// Create 创建店铺
func (r *GormStorefrontRepository) Create(storefront *models.Storefront) error {
	return r.db.Create(storefront).Error
}
