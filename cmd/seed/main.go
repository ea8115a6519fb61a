package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tablecart/internal/cache"
	"github.com/tablecart/internal/config"
	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/logger"
	"github.com/tablecart/internal/models"
	"github.com/tablecart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const demoStorefrontSlug = "demo-bistro"

type seedProduct struct {
	product  models.Product
	variants []models.ProductVariant
	addons   []models.ProductAddon
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	menu, coupons := demoMenu(), demoCoupons(time.Now())
	if err := seedDemo(models.DB, stdLog, menu, coupons); err != nil {
		stdLog.Fatalf("Failed to seed demo data: %v", err)
	}

	// 清理店铺缓存，避免 API 读到旧的店铺快照
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		stdLog.Printf("Failed to init redis: %v", err)
	} else if cache.Enabled() {
		if err := cache.DelStorefront(context.Background(), demoStorefrontSlug); err != nil {
			stdLog.Printf("Failed to invalidate storefront cache: %v", err)
		}
		_ = cache.Close()
	}

	fmt.Println("\n✅ Demo data created successfully!")
	fmt.Println("Summary:")
	fmt.Printf("- 1 Storefront (%s)\n", demoStorefrontSlug)
	fmt.Printf("- %d Products with variants and add-ons\n", len(menu))
	fmt.Printf("- %d Coupons (WELCOME10, LUNCH5, FIRST50)\n", len(coupons))
}

// seedDemo 在一个事务内写入演示店铺、菜单与优惠券，重复执行时刷新菜品信息
func seedDemo(db *gorm.DB, stdLog *log.Logger, menu []seedProduct, coupons []models.Coupon) error {
	storefrontRepo := repository.NewStorefrontRepository(db)
	productRepo := repository.NewProductRepository(db)
	couponRepo := repository.NewCouponRepository(db)

	return productRepo.Transaction(func(tx *gorm.DB) error {
		storefronts := storefrontRepo.WithTx(tx)
		products := productRepo.WithTx(tx)
		couponsTx := couponRepo.WithTx(tx)

		storefront, err := storefronts.GetBySlug(demoStorefrontSlug)
		if err != nil {
			return err
		}
		if storefront == nil {
			storefront = &models.Storefront{Slug: demoStorefrontSlug, Name: "Demo Bistro", Currency: "USD", IsActive: true}
			if err := storefronts.Create(storefront); err != nil {
				return fmt.Errorf("create storefront %s: %w", demoStorefrontSlug, err)
			}
			stdLog.Printf("Created storefront: %s", storefront.Slug)
		} else {
			stdLog.Printf("Storefront already exists: %s", storefront.Slug)
		}

		for _, item := range menu {
			if err := seedMenuItem(products, stdLog, storefront.ID, item); err != nil {
				return err
			}
		}
		for _, coupon := range coupons {
			coupon.StorefrontID = storefront.ID
			if err := seedCoupon(couponsTx, stdLog, coupon); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedMenuItem(products repository.ProductRepository, stdLog *log.Logger, storefrontID string, item seedProduct) error {
	existing, _, err := products.List(repository.ProductListFilter{
		StorefrontID: storefrontID,
		Search:       item.product.Name,
		Page:         1,
		PageSize:     100,
	})
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].Name != item.product.Name {
			continue
		}
		current := existing[i]
		current.Description = item.product.Description
		current.PriceAmount = item.product.PriceAmount
		current.SortOrder = item.product.SortOrder
		current.IsActive = true
		if err := products.Update(&current); err != nil {
			return fmt.Errorf("update product %s: %w", current.Name, err)
		}
		stdLog.Printf("Refreshed product: %s", current.Name)
		return nil
	}

	product := item.product
	product.StorefrontID = storefrontID
	product.Variants = item.variants
	product.Addons = item.addons
	if err := products.Create(&product); err != nil {
		return fmt.Errorf("create product %s: %w", product.Name, err)
	}
	stdLog.Printf("Created product: %s (%d variants, %d add-ons)", product.Name, len(product.Variants), len(product.Addons))
	return nil
}

func seedCoupon(coupons repository.CouponRepository, stdLog *log.Logger, coupon models.Coupon) error {
	existing, err := coupons.GetByCode(coupon.StorefrontID, coupon.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		stdLog.Printf("Coupon already exists: %s", coupon.Code)
		return nil
	}
	if err := coupons.Create(&coupon); err != nil {
		return fmt.Errorf("create coupon %s: %w", coupon.Code, err)
	}
	stdLog.Printf("Created coupon: %s", coupon.Code)
	return nil
}

// demoMenu 演示菜单
func demoMenu() []seedProduct {
	return []seedProduct{
		{
			product: models.Product{
				Name:        "Classic Burger",
				Description: "Beef patty, lettuce, tomato and house sauce",
				PriceAmount: money("10.00"),
				IsActive:    true,
				SortOrder:   100,
			},
			variants: []models.ProductVariant{
				{Name: "Regular", PriceAmount: money("10.00"), IsDefault: true, IsActive: true, SortOrder: 20},
				{Name: "Double", PriceAmount: money("14.00"), IsActive: true, SortOrder: 10},
			},
			addons: []models.ProductAddon{
				{Name: "Cheese", PriceAmount: money("1.50"), IsActive: true, SortOrder: 30},
				{Name: "Bacon", PriceAmount: money("2.50"), IsActive: true, SortOrder: 20},
				{Name: "Fried Egg", PriceAmount: money("1.00"), IsActive: true, SortOrder: 10},
			},
		},
		{
			product: models.Product{
				Name:        "Margherita Pizza",
				Description: "Tomato, mozzarella and basil",
				PriceAmount: money("12.00"),
				IsActive:    true,
				SortOrder:   90,
			},
			variants: []models.ProductVariant{
				{Name: "10 inch", PriceAmount: money("12.00"), IsDefault: true, IsActive: true, SortOrder: 20},
				{Name: "14 inch", PriceAmount: money("16.50"), IsActive: true, SortOrder: 10},
			},
			addons: []models.ProductAddon{
				{Name: "Extra Mozzarella", PriceAmount: money("2.00"), IsActive: true, SortOrder: 20},
				{Name: "Olives", PriceAmount: money("1.25"), IsActive: true, SortOrder: 10},
			},
		},
		{
			product: models.Product{
				Name:        "French Fries",
				Description: "Crispy fries with sea salt",
				PriceAmount: money("4.50"),
				IsActive:    true,
				SortOrder:   80,
			},
			addons: []models.ProductAddon{
				{Name: "Truffle Mayo", PriceAmount: money("0.75"), IsActive: true},
			},
		},
		{
			product: models.Product{
				Name:        "Lemonade",
				Description: "Freshly squeezed",
				PriceAmount: money("3.00"),
				IsActive:    true,
				SortOrder:   70,
			},
			variants: []models.ProductVariant{
				{Name: "Small", PriceAmount: money("3.00"), IsDefault: true, IsActive: true, SortOrder: 20},
				{Name: "Large", PriceAmount: money("4.20"), IsActive: true, SortOrder: 10},
			},
		},
	}
}

// demoCoupons 演示优惠券
func demoCoupons(now time.Time) []models.Coupon {
	expiresAt := now.AddDate(0, 3, 0)
	return []models.Coupon{
		{
			Code:        "WELCOME10",
			Type:        constants.CouponTypePercentage,
			Value:       money("10"),
			MaxDiscount: money("5.00"),
			IsActive:    true,
			EndsAt:      &expiresAt,
		},
		{
			Code:      "LUNCH5",
			Type:      constants.CouponTypeFixed,
			Value:     money("5.00"),
			MinAmount: money("25.00"),
			IsActive:  true,
		},
		{
			Code:       "FIRST50",
			Type:       constants.CouponTypePercentage,
			Value:      money("50"),
			UsageLimit: 100,
			IsActive:   true,
		},
	}
}

func money(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}
