package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
	cartsvc "github.com/Sina-Lotfi/storefront/internal/service/cart"
	checkoutsvc "github.com/Sina-Lotfi/storefront/internal/service/checkout"
	customersvc "github.com/Sina-Lotfi/storefront/internal/service/customer"
	"github.com/Sina-Lotfi/storefront/internal/storage/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	orders := memory.NewOrderRepository()
	catalog := memory.NewCatalogRepository(orders)
	carts := memory.NewCartRepository(catalog)
	outbox := memory.NewOutboxRepository()
	checkout := memory.NewCheckoutRepository(carts, orders, outbox)
	customers := memory.NewCustomerRepository()

	server := NewServer(
		catalog,
		cartsvc.NewService(carts, catalog, nil),
		customersvc.NewResolver(customers, nil),
		checkoutsvc.NewService(customers, checkout, orders, nil, nil),
		nil,
	)
	return server.Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func seedProduct(t *testing.T, handler http.Handler, title, price string) productResponse {
	t.Helper()

	w := doRequest(t, handler, http.MethodPost, "/store/collections", createCollectionRequest{Title: "Kitchen " + title}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create collection: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var collection collectionResponse
	decodeInto(t, w, &collection)

	w = doRequest(t, handler, http.MethodPost, "/store/products", productRequest{
		Title:        title,
		Slug:         title,
		UnitPrice:    decimal.RequireFromString(price),
		Inventory:    10,
		CollectionID: collection.ID,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var product productResponse
	decodeInto(t, w, &product)
	return product
}

func seedCartWithItem(t *testing.T, handler http.Handler, productID int64, quantity int) string {
	t.Helper()

	w := doRequest(t, handler, http.MethodPost, "/store/carts", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d", w.Code)
	}
	var cart cartResponse
	decodeInto(t, w, &cart)

	w = doRequest(t, handler, http.MethodPost, "/store/carts/"+cart.ID+"/items", upsertCartItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("upsert cart item: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	return cart.ID
}

func TestPlaceOrder_EndToEnd(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	product := seedProduct(t, handler, "mug", "10.00")
	cartID := seedCartWithItem(t, handler, product.ID, 3)

	// The cart totals reflect current catalog prices.
	w := doRequest(t, handler, http.MethodGet, "/store/carts/"+cartID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get cart: expected 200, got %d", w.Code)
	}
	var cart cartResponse
	decodeInto(t, w, &cart)
	if want := decimal.RequireFromString("30.00"); !cart.TotalPrice.Equal(want) {
		t.Fatalf("expected cart total %s, got %s", want, cart.TotalPrice)
	}

	w = doRequest(t, handler, http.MethodPost, "/store/orders", placeOrderRequest{CartID: cartID}, "42")
	if w.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var order orderResponse
	decodeInto(t, w, &order)

	if order.PaymentStatus != string(domain.PaymentStatusPending) {
		t.Fatalf("expected pending payment status, got %s", order.PaymentStatus)
	}
	if want := decimal.RequireFromString("30.00"); !order.Total.Equal(want) {
		t.Fatalf("expected order total %s, got %s", want, order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}

	// The cart is consumed by checkout.
	if w := doRequest(t, handler, http.MethodGet, "/store/carts/"+cartID, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for converted cart, got %d", w.Code)
	}

	// The order is readable and its payment status can be transitioned.
	orderPath := fmt.Sprintf("/store/orders/%d", order.ID)
	if w := doRequest(t, handler, http.MethodGet, orderPath, nil, "42"); w.Code != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", w.Code)
	}
	w = doRequest(t, handler, http.MethodPatch, orderPath, patchOrderRequest{PaymentStatus: "complete"}, "42")
	if w.Code != http.StatusOK {
		t.Fatalf("patch order: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var patched orderResponse
	decodeInto(t, w, &patched)
	if patched.PaymentStatus != string(domain.PaymentStatusComplete) {
		t.Fatalf("expected complete, got %s", patched.PaymentStatus)
	}

	// The principal sees the order in their list.
	w = doRequest(t, handler, http.MethodGet, "/store/orders", nil, "42")
	if w.Code != http.StatusOK {
		t.Fatalf("list orders: expected 200, got %d", w.Code)
	}
	var orders []orderResponse
	decodeInto(t, w, &orders)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
}

func TestGetOrder_ScopedToPrincipal(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	product := seedProduct(t, handler, "mug", "10.00")
	cartID := seedCartWithItem(t, handler, product.ID, 1)

	w := doRequest(t, handler, http.MethodPost, "/store/orders", placeOrderRequest{CartID: cartID}, "42")
	if w.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", w.Code)
	}
	var order orderResponse
	decodeInto(t, w, &order)
	orderPath := fmt.Sprintf("/store/orders/%d", order.ID)

	if w := doRequest(t, handler, http.MethodGet, orderPath, nil, "42"); w.Code != http.StatusOK {
		t.Fatalf("owner read: expected 200, got %d", w.Code)
	}
	// Another principal cannot see the order at all.
	if w := doRequest(t, handler, http.MethodGet, orderPath, nil, "43"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign principal, got %d", w.Code)
	}
	if w := doRequest(t, handler, http.MethodGet, orderPath, nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", w.Code)
	}
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	product := seedProduct(t, handler, "mug", "10.00")

	// Missing principal header.
	cartID := seedCartWithItem(t, handler, product.ID, 1)
	if w := doRequest(t, handler, http.MethodPost, "/store/orders", placeOrderRequest{CartID: cartID}, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", w.Code)
	}

	// A missing cart is a validation failure on checkout, not a 404.
	w := doRequest(t, handler, http.MethodPost, "/store/orders", placeOrderRequest{CartID: "c0ffee00-0000-4000-8000-000000000000"}, "42")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing cart, got %d", w.Code)
	}
	var resp errorResponse
	decodeInto(t, w, &resp)
	if resp.Error != domain.ErrCartNotFound.Error() {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}

	// Empty cart.
	emptyCart := doRequest(t, handler, http.MethodPost, "/store/carts", nil, "")
	var cart cartResponse
	decodeInto(t, emptyCart, &cart)
	w = doRequest(t, handler, http.MethodPost, "/store/orders", placeOrderRequest{CartID: cart.ID}, "42")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", w.Code)
	}
	decodeInto(t, w, &resp)
	if resp.Error != domain.ErrCartEmpty.Error() {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}

func TestDeleteGuards(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	product := seedProduct(t, handler, "mug", "10.00")
	cartID := seedCartWithItem(t, handler, product.ID, 1)

	if w := doRequest(t, handler, http.MethodPost, "/store/orders", placeOrderRequest{CartID: cartID}, "42"); w.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", w.Code)
	}

	// Ordered products cannot be deleted.
	productPath := fmt.Sprintf("/store/products/%d", product.ID)
	if w := doRequest(t, handler, http.MethodDelete, productPath, nil, ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for referenced product, got %d", w.Code)
	}

	// Non-empty collections cannot be deleted.
	collectionPath := fmt.Sprintf("/store/collections/%d", product.CollectionID)
	if w := doRequest(t, handler, http.MethodDelete, collectionPath, nil, ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for non-empty collection, got %d", w.Code)
	}
}

func TestCartItemValidation(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	product := seedProduct(t, handler, "mug", "10.00")

	w := doRequest(t, handler, http.MethodPost, "/store/carts", nil, "")
	var cart cartResponse
	decodeInto(t, w, &cart)
	itemsPath := "/store/carts/" + cart.ID + "/items"

	// Zero quantity is rejected.
	w = doRequest(t, handler, http.MethodPost, itemsPath, upsertCartItemRequest{ProductID: product.ID, Quantity: 0}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", w.Code)
	}

	// Unknown products are a 404.
	w = doRequest(t, handler, http.MethodPost, itemsPath, upsertCartItemRequest{ProductID: 9999, Quantity: 1}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", w.Code)
	}

	// Upserting the same product twice overwrites the quantity.
	for _, quantity := range []int{2, 5} {
		w = doRequest(t, handler, http.MethodPost, itemsPath, upsertCartItemRequest{ProductID: product.ID, Quantity: quantity}, "")
		if w.Code != http.StatusCreated {
			t.Fatalf("upsert: expected 201, got %d", w.Code)
		}
	}
	w = doRequest(t, handler, http.MethodGet, itemsPath, nil, "")
	var items []cartItemResponse
	decodeInto(t, w, &items)
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", items)
	}

	// Quantity update of an absent line is a 404.
	w = doRequest(t, handler, http.MethodPut, itemsPath+"/9999", setQuantityRequest{Quantity: 2}, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for absent line, got %d", w.Code)
	}
}

func TestCustomerProfile(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	// First access creates the default profile.
	w := doRequest(t, handler, http.MethodGet, "/store/customers/me", nil, "42")
	if w.Code != http.StatusOK {
		t.Fatalf("get customer: expected 200, got %d", w.Code)
	}
	var customer customerResponse
	decodeInto(t, w, &customer)
	if customer.Membership != string(domain.MembershipBronze) {
		t.Fatalf("expected bronze default, got %s", customer.Membership)
	}

	w = doRequest(t, handler, http.MethodPut, "/store/customers/me", updateCustomerRequest{
		Phone:      "+31201234567",
		Membership: "gold",
	}, "42")
	if w.Code != http.StatusOK {
		t.Fatalf("update customer: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated customerResponse
	decodeInto(t, w, &updated)
	if updated.Membership != string(domain.MembershipGold) || updated.Phone != "+31201234567" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
	if updated.ID != customer.ID {
		t.Fatalf("profile row changed: %d vs %d", updated.ID, customer.ID)
	}

	// Unknown tiers are rejected.
	w = doRequest(t, handler, http.MethodPut, "/store/customers/me", updateCustomerRequest{Membership: "platinum"}, "42")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tier, got %d", w.Code)
	}

	// Profile endpoints need a principal.
	if w := doRequest(t, handler, http.MethodGet, "/store/customers/me", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", w.Code)
	}
}

func TestListProducts_Filters(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	seedProduct(t, handler, "mug", "5.00")
	teapot := seedProduct(t, handler, "teapot", "20.00")

	w := doRequest(t, handler, http.MethodGet, "/store/products?unit_price_gt=10", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", w.Code)
	}
	var products []productResponse
	decodeInto(t, w, &products)
	if len(products) != 1 || products[0].ID != teapot.ID {
		t.Fatalf("expected only the teapot, got %+v", products)
	}

	// Displayed prices carry the flat tax.
	if want := decimal.RequireFromString("22.00"); !products[0].PriceWithTax.Equal(want) {
		t.Fatalf("expected taxed price %s, got %s", want, products[0].PriceWithTax)
	}

	w = doRequest(t, handler, http.MethodGet, "/store/products?search=TEA", nil, "")
	decodeInto(t, w, &products)
	if len(products) != 1 || products[0].ID != teapot.ID {
		t.Fatalf("expected case-insensitive search hit, got %+v", products)
	}

	if w := doRequest(t, handler, http.MethodGet, "/store/products?unit_price_lt=abc", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price filter, got %d", w.Code)
	}
}

func TestListProducts_OrderingAndPagination(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	mug := seedProduct(t, handler, "mug", "5.00")
	teapot := seedProduct(t, handler, "teapot", "20.00")
	kettle := seedProduct(t, handler, "kettle", "12.50")

	w := doRequest(t, handler, http.MethodGet, "/store/products?ordering=-unit_price", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", w.Code)
	}
	var products []productResponse
	decodeInto(t, w, &products)
	if len(products) != 3 || products[0].ID != teapot.ID || products[2].ID != mug.ID {
		t.Fatalf("expected descending price order, got %+v", products)
	}

	// The second page of size one, cheapest first.
	w = doRequest(t, handler, http.MethodGet, "/store/products?ordering=unit_price&limit=1&offset=1", nil, "")
	decodeInto(t, w, &products)
	if len(products) != 1 || products[0].ID != kettle.ID {
		t.Fatalf("expected only the kettle on page two, got %+v", products)
	}

	if w := doRequest(t, handler, http.MethodGet, "/store/products?ordering=title", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown ordering field, got %d", w.Code)
	}
	if w := doRequest(t, handler, http.MethodGet, "/store/products?limit=-1", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", w.Code)
	}
	if w := doRequest(t, handler, http.MethodGet, "/store/products?offset=x", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad offset, got %d", w.Code)
	}
}

func TestReviews(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	product := seedProduct(t, handler, "mug", "10.00")
	reviewsPath := fmt.Sprintf("/store/products/%d/reviews", product.ID)

	w := doRequest(t, handler, http.MethodPost, reviewsPath, createReviewRequest{
		Name:        "Sam",
		Description: "Sturdy and keeps coffee warm.",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create review: expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	w = doRequest(t, handler, http.MethodGet, reviewsPath, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list reviews: expected 200, got %d", w.Code)
	}
	var reviews []reviewResponse
	decodeInto(t, w, &reviews)
	if len(reviews) != 1 || reviews[0].Name != "Sam" {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}

	// Reviews of unknown products are a 404.
	if w := doRequest(t, handler, http.MethodGet, "/store/products/9999/reviews", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", w.Code)
	}
}
