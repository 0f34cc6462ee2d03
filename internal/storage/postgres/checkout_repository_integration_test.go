package postgres

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

func TestCheckoutRepository_PostgresConvertCart(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	mug, teapot := seedCatalogForIntegrationTest(t, store)

	carts := NewCartRepository(store)
	customers := NewCustomerRepository(store)
	orders := NewOrderRepository(store)
	outbox := NewOutboxRepository(store)
	checkout := NewCheckoutRepository(store)

	customer, err := customers.GetOrCreate(1)
	if err != nil {
		t.Fatalf("get or create customer: %v", err)
	}

	cart, err := carts.Create(domain.Cart{})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 1); err != nil {
		t.Fatalf("upsert mug: %v", err)
	}
	if _, err := carts.UpsertItem(cart.ID, teapot.ID, 1); err != nil {
		t.Fatalf("upsert teapot: %v", err)
	}

	order, err := checkout.ConvertCart(cart.ID, customer.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("convert cart: %v", err)
	}

	if want := decimal.RequireFromString("30.00"); !order.Total().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total())
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %q", order.PaymentStatus)
	}

	// The cart is consumed in the same transaction.
	if exists, _ := carts.Exists(cart.ID); exists {
		t.Fatal("expected the cart to be gone after conversion")
	}

	// Exactly one order_created message is pending.
	pending, err := outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != domain.EventOrderCreated {
		t.Fatalf("expected one order_created message, got %+v", pending)
	}

	// The persisted order survives a fresh read with its snapshot prices.
	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(stored.Items))
	}
	if !stored.Total().Equal(order.Total()) {
		t.Fatalf("stored total %s differs from returned %s", stored.Total(), order.Total())
	}
}

func TestCheckoutRepository_PostgresMissingAndEmpty(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)

	carts := NewCartRepository(store)
	checkout := NewCheckoutRepository(store)

	if _, err := checkout.ConvertCart("8ec22e4d-95b4-4c64-bd3e-2f42a04bf383", 1, time.Now().UTC()); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	cart, err := carts.Create(domain.Cart{})
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if _, err := checkout.ConvertCart(cart.ID, 1, time.Now().UTC()); !errors.Is(err, domain.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
	if exists, _ := carts.Exists(cart.ID); !exists {
		t.Fatal("expected the empty cart to survive the failed conversion")
	}
}

func TestCheckoutRepository_PostgresPriceSnapshot(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	mug, _ := seedCatalogForIntegrationTest(t, store)

	catalog := NewCatalogRepository(store)
	carts := NewCartRepository(store)
	customers := NewCustomerRepository(store)
	orders := NewOrderRepository(store)
	checkout := NewCheckoutRepository(store)

	customer, _ := customers.GetOrCreate(1)
	cart, _ := carts.Create(domain.Cart{})
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 2); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	order, err := checkout.ConvertCart(cart.ID, customer.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("convert cart: %v", err)
	}

	mug.UnitPrice = decimal.RequireFromString("99.00")
	if _, err := catalog.UpdateProduct(mug); err != nil {
		t.Fatalf("update product: %v", err)
	}

	stored, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if want := decimal.RequireFromString("10.00"); !stored.Items[0].UnitPrice.Equal(want) {
		t.Fatalf("expected snapshotted price %s, got %s", want, stored.Items[0].UnitPrice)
	}
}

func TestCheckoutRepository_PostgresConcurrentDoubleCheckout(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	mug, _ := seedCatalogForIntegrationTest(t, store)

	carts := NewCartRepository(store)
	customers := NewCustomerRepository(store)
	outbox := NewOutboxRepository(store)
	checkout := NewCheckoutRepository(store)

	customer, _ := customers.GetOrCreate(1)
	cart, _ := carts.Create(domain.Cart{})
	if _, err := carts.UpsertItem(cart.ID, mug.ID, 1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = checkout.ConvertCart(cart.ID, customer.ID, time.Now().UTC())
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrCartNotFound):
		case errors.Is(err, domain.ErrTransientStorage):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning conversion, got %d", wins)
	}

	stats, err := outbox.Stats()
	if err != nil {
		t.Fatalf("outbox stats: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected one staged event, got %d", stats.PendingCount)
	}
}
