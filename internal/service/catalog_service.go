package service

import (
	"strings"

	"github.com/tablecart/internal/cart"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/repository"
)

// ProductOptions 菜品及其可选规格、加料
type ProductOptions struct {
	Model   *models.Product
	Product cart.Product
	Options cart.Options
}

// CatalogService 菜单查询服务
type CatalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService 创建菜单服务
func NewCatalogService(productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// ListProducts 店铺上架菜品列表
func (s *CatalogService) ListProducts(storefrontID, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.productRepo.List(repository.ProductListFilter{
		StorefrontID: storefrontID,
		Search:       strings.TrimSpace(search),
		Page:         page,
		PageSize:     pageSize,
		OnlyActive:   true,
	})
}

// GetOptions 查询菜品的启用规格与加料
func (s *CatalogService) GetOptions(storefrontID, productID string) (*ProductOptions, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(storefrontID, productID, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return NewProductOptions(product), nil
}

// NewProductOptions 把菜品模型转换为加购所需的商品与选项
func NewProductOptions(product *models.Product) *ProductOptions {
	return &ProductOptions{
		Model:   product,
		Product: toCartProduct(product),
		Options: toCartOptions(product),
	}
}

func toCartProduct(product *models.Product) cart.Product {
	return cart.Product{
		ID:                  product.ID,
		Name:                product.Name,
		BasePriceMinorUnits: product.PriceAmount.MinorUnits(),
	}
}

func toCartOptions(product *models.Product) cart.Options {
	options := cart.Options{
		Variants: make([]cart.Variant, 0, len(product.Variants)),
		Addons:   make([]cart.AddonOption, 0, len(product.Addons)),
	}
	for _, variant := range product.Variants {
		if !variant.IsActive {
			continue
		}
		options.Variants = append(options.Variants, cart.Variant{
			ID:              variant.ID,
			Name:            variant.Name,
			PriceMinorUnits: variant.PriceAmount.MinorUnits(),
			IsDefault:       variant.IsDefault,
			SortOrder:       variant.SortOrder,
		})
	}
	for _, addon := range product.Addons {
		if !addon.IsActive {
			continue
		}
		options.Addons = append(options.Addons, cart.AddonOption{
			ID:              addon.ID,
			Name:            addon.Name,
			PriceMinorUnits: addon.PriceAmount.MinorUnits(),
			SortOrder:       addon.SortOrder,
		})
	}
	return options
}
