package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tablecart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type menuFixture struct {
	db         *gorm.DB
	storefront *models.Storefront
	burger     *models.Product
	fries      *models.Product
}

func newMenuFixture(t *testing.T) *menuFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Storefront{},
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductAddon{},
		&models.Coupon{},
		&models.CartSnapshot{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	storefront := &models.Storefront{Slug: "main", Name: "Main", Currency: "USD", IsActive: true}
	if err := db.Create(storefront).Error; err != nil {
		t.Fatalf("create storefront failed: %v", err)
	}
	burger := &models.Product{
		StorefrontID: storefront.ID,
		Name:         "Classic Burger",
		PriceAmount:  models.NewMoneyFromMinorUnits(1000),
		IsActive:     true,
		Variants: []models.ProductVariant{
			{Name: "Regular", PriceAmount: models.NewMoneyFromMinorUnits(1000), IsDefault: true, IsActive: true, SortOrder: 1},
			{Name: "Large", PriceAmount: models.NewMoneyFromMinorUnits(1400), IsActive: true},
		},
		Addons: []models.ProductAddon{
			{Name: "Cheese", PriceAmount: models.NewMoneyFromMinorUnits(150), IsActive: true},
			{Name: "Bacon", PriceAmount: models.NewMoneyFromMinorUnits(250), IsActive: true},
		},
	}
	if err := db.Create(burger).Error; err != nil {
		t.Fatalf("create burger failed: %v", err)
	}
	fries := &models.Product{
		StorefrontID: storefront.ID,
		Name:         "Fries",
		PriceAmount:  models.NewMoneyFromMinorUnits(450),
		IsActive:     true,
	}
	if err := db.Create(fries).Error; err != nil {
		t.Fatalf("create fries failed: %v", err)
	}
	return &menuFixture{db: db, storefront: storefront, burger: burger, fries: fries}
}

func (f *menuFixture) variantID(t *testing.T, name string) string {
	t.Helper()
	for _, variant := range f.burger.Variants {
		if variant.Name == name {
			return variant.ID
		}
	}
	t.Fatalf("variant %s not found", name)
	return ""
}

func (f *menuFixture) addonID(t *testing.T, name string) string {
	t.Helper()
	for _, addon := range f.burger.Addons {
		if addon.Name == name {
			return addon.ID
		}
	}
	t.Fatalf("addon %s not found", name)
	return ""
}

func (f *menuFixture) createCoupon(t *testing.T, coupon models.Coupon) *models.Coupon {
	t.Helper()
	if coupon.StorefrontID == "" {
		coupon.StorefrontID = f.storefront.ID
	}
	if err := f.db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return &coupon
}
