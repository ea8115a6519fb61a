package repository

import (
	"errors"
	"strings"

	"github.com/tablecart/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 菜品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(storefrontID, id string, onlyActive bool) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建菜品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// List 菜品列表（规格与加料按排序权重预加载）
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product
	query := r.db.Model(&models.Product{}).Where("storefront_id = ?", filter.StorefrontID)
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	query = preloadOptions(query, filter.OnlyActive)

	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"name", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("sort_order DESC, created_at ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID 获取店铺内的菜品，不存在时返回 nil
func (r *GormProductRepository) GetByID(storefrontID, id string, onlyActive bool) (*models.Product, error) {
	query := r.db.Where("id = ? AND storefront_id = ?", id, storefrontID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	query = preloadOptions(query, onlyActive)

	var product models.Product
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建菜品（连同规格与加料）
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新菜品基础信息
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Variants", "Addons").Save(product).Error
}

func preloadOptions(query *gorm.DB, onlyActive bool) *gorm.DB {
	scope := func(db *gorm.DB) *gorm.DB {
		if onlyActive {
			db = db.Where("is_active = ?", true)
		}
		return db.Order("sort_order DESC, created_at ASC")
	}
	return query.Preload("Variants", scope).Preload("Addons", scope)
}
