package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/tablecart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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
	return db
}

func createTestStorefront(t *testing.T, db *gorm.DB, slug string) *models.Storefront {
	t.Helper()
	storefront := &models.Storefront{Slug: slug, Name: slug, Currency: "USD", IsActive: true}
	if err := db.Create(storefront).Error; err != nil {
		t.Fatalf("create storefront failed: %v", err)
	}
	return storefront
}
