package repository

import (
	"testing"

	"github.com/tablecart/internal/models"
)

func createBurger(t *testing.T, repo *GormProductRepository, storefrontID string) *models.Product {
	t.Helper()
	product := &models.Product{
		StorefrontID: storefrontID,
		Name:         "Classic Burger",
		Description:  "beef patty",
		PriceAmount:  models.NewMoneyFromMinorUnits(1000),
		IsActive:     true,
		SortOrder:    10,
		Variants: []models.ProductVariant{
			{Name: "Regular", PriceAmount: models.NewMoneyFromMinorUnits(1000), IsDefault: true, IsActive: true, SortOrder: 2},
			{Name: "Large", PriceAmount: models.NewMoneyFromMinorUnits(1400), IsActive: true, SortOrder: 1},
			{Name: "Retired", PriceAmount: models.NewMoneyFromMinorUnits(900), IsActive: true, SortOrder: 0},
		},
		Addons: []models.ProductAddon{
			{Name: "Cheese", PriceAmount: models.NewMoneyFromMinorUnits(150), IsActive: true, SortOrder: 1},
			{Name: "Bacon", PriceAmount: models.NewMoneyFromMinorUnits(250), IsActive: true, SortOrder: 0},
		},
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestProductRepositoryGetByIDLoadsActiveOptions(t *testing.T) {
	db := openRepositoryTestDB(t, "product_repo_options")
	repo := NewProductRepository(db)
	storefront := createTestStorefront(t, db, "main")
	product := createBurger(t, repo, storefront.ID)

	retired := product.Variants[2]
	if err := db.Model(&models.ProductVariant{}).Where("id = ?", retired.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate variant failed: %v", err)
	}

	got, err := repo.GetByID(storefront.ID, product.ID, true)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got == nil {
		t.Fatalf("expected product")
	}
	if len(got.Variants) != 2 {
		t.Fatalf("expected 2 active variants, got %d", len(got.Variants))
	}
	if got.Variants[0].Name != "Regular" || got.Variants[1].Name != "Large" {
		t.Fatalf("variants should follow sort order, got %s,%s", got.Variants[0].Name, got.Variants[1].Name)
	}
	if len(got.Addons) != 2 || got.Addons[0].Name != "Cheese" {
		t.Fatalf("unexpected addons: %+v", got.Addons)
	}
	if got.PriceAmount.MinorUnits() != 1000 {
		t.Fatalf("base price want 1000 got %d", got.PriceAmount.MinorUnits())
	}
}

func TestProductRepositoryGetByIDScopedToStorefront(t *testing.T) {
	db := openRepositoryTestDB(t, "product_repo_scope")
	repo := NewProductRepository(db)
	mainStore := createTestStorefront(t, db, "main")
	other := createTestStorefront(t, db, "patio")
	product := createBurger(t, repo, mainStore.ID)

	got, err := repo.GetByID(other.ID, product.ID, true)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got != nil {
		t.Fatalf("product must not leak across storefronts")
	}
}

func TestProductRepositoryGetByIDHidesInactive(t *testing.T) {
	db := openRepositoryTestDB(t, "product_repo_inactive")
	repo := NewProductRepository(db)
	storefront := createTestStorefront(t, db, "main")
	product := createBurger(t, repo, storefront.ID)
	product.IsActive = false
	if err := repo.Update(product); err != nil {
		t.Fatalf("update product failed: %v", err)
	}

	got, err := repo.GetByID(storefront.ID, product.ID, true)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got != nil {
		t.Fatalf("inactive product should not be returned")
	}
	got, err = repo.GetByID(storefront.ID, product.ID, false)
	if err != nil || got == nil {
		t.Fatalf("inactive product should be visible without filter, err=%v", err)
	}
}

func TestProductRepositoryListSearchAndPaging(t *testing.T) {
	db := openRepositoryTestDB(t, "product_repo_list")
	repo := NewProductRepository(db)
	storefront := createTestStorefront(t, db, "main")
	createBurger(t, repo, storefront.ID)
	for _, name := range []string{"Fries", "Lemonade", "Veggie Burger"} {
		product := &models.Product{
			StorefrontID: storefront.ID,
			Name:         name,
			PriceAmount:  models.NewMoneyFromMinorUnits(500),
			IsActive:     true,
		}
		if err := repo.Create(product); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	items, total, err := repo.List(ProductListFilter{StorefrontID: storefront.ID, Search: "burger", OnlyActive: true})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 burgers, total=%d len=%d", total, len(items))
	}
	if items[0].Name != "Classic Burger" {
		t.Fatalf("higher sort order should come first, got %s", items[0].Name)
	}

	items, total, err = repo.List(ProductListFilter{StorefrontID: storefront.ID, Page: 2, PageSize: 3, OnlyActive: true})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 4 || len(items) != 1 {
		t.Fatalf("expected page 2 with 1 item of 4, total=%d len=%d", total, len(items))
	}
}
