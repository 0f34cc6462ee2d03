package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// seedCatalog creates a collection with two priced products.
func seedCatalog(t *testing.T) (*catalogRepositoryInMemory, domain.Product, domain.Product) {
	t.Helper()

	catalog := NewCatalogRepository(nil)
	collection, err := catalog.CreateCollection(domain.Collection{Title: "kitchen"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	mug, err := catalog.CreateProduct(domain.Product{
		Title:        "mug",
		Slug:         "mug",
		UnitPrice:    decimal.RequireFromString("5.00"),
		Inventory:    10,
		CollectionID: collection.ID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	teapot, err := catalog.CreateProduct(domain.Product{
		Title:        "teapot",
		Slug:         "teapot",
		UnitPrice:    decimal.RequireFromString("20.00"),
		Inventory:    3,
		CollectionID: collection.ID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	return catalog, mug, teapot
}

func TestCartUpsertItem_OverwritesQuantity(t *testing.T) {
	catalog, mug, _ := seedCatalog(t)
	carts := NewCartRepository(catalog)

	cart, err := carts.Create(domain.Cart{})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}

	if _, err := carts.UpsertItem(cart.ID, mug.ID, 3); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 3); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	items, err := carts.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected exactly one row for (cart, product), got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 (overwrite, not increment), got %d", items[0].Quantity)
	}

	// A different value overwrites as well.
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 7); err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	items, _ = carts.ListItems(cart.ID)
	if items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7 after overwrite, got %d", items[0].Quantity)
	}
}

func TestCartUpsertItem_MissingCart(t *testing.T) {
	catalog, mug, _ := seedCatalog(t)
	carts := NewCartRepository(catalog)

	if _, err := carts.UpsertItem("no-such-cart", mug.ID, 1); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartSetItemQuantity_MissingItem(t *testing.T) {
	catalog, mug, _ := seedCatalog(t)
	carts := NewCartRepository(catalog)

	cart, _ := carts.Create(domain.Cart{})
	if _, err := carts.SetItemQuantity(cart.ID, mug.ID, 2); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartDelete_Idempotent(t *testing.T) {
	catalog, mug, _ := seedCatalog(t)
	carts := NewCartRepository(catalog)

	cart, _ := carts.Create(domain.Cart{})
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := carts.DeleteCart(cart.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := carts.DeleteCart(cart.ID); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}

	if _, err := carts.Get(cart.ID); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after delete, got %v", err)
	}
	if _, err := carts.ListItems(cart.ID); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected items to be gone with the cart, got %v", err)
	}
}

func TestCartListItems_DropsDeletedProduct(t *testing.T) {
	catalog, mug, teapot := seedCatalog(t)
	carts := NewCartRepository(catalog)

	cart, _ := carts.Create(domain.Cart{})
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 2); err != nil {
		t.Fatalf("upsert mug: %v", err)
	}
	if _, err := carts.UpsertItem(cart.ID, teapot.ID, 1); err != nil {
		t.Fatalf("upsert teapot: %v", err)
	}

	if err := catalog.DeleteProduct(teapot.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	items, err := carts.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != mug.ID {
		t.Fatalf("expected the deleted product's line to drop out, got %+v", items)
	}
}

func TestCartDeleteOlderThan(t *testing.T) {
	catalog, _, _ := seedCatalog(t)
	carts := NewCartRepository(catalog)

	old := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := carts.Create(domain.Cart{ID: "old-cart", CreatedAt: old}); err != nil {
		t.Fatalf("create old cart: %v", err)
	}
	fresh, err := carts.Create(domain.Cart{})
	if err != nil {
		t.Fatalf("create fresh cart: %v", err)
	}

	deleted, err := carts.DeleteOlderThan(time.Now().UTC().Add(-24*time.Hour), 100)
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted cart, got %d", deleted)
	}

	if ok, _ := carts.Exists("old-cart"); ok {
		t.Fatal("expected old cart to be gone")
	}
	if ok, _ := carts.Exists(fresh.ID); !ok {
		t.Fatal("expected fresh cart to survive")
	}
}
