package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// helper producing a well-formed order with one item.
func makeOrder() domain.Order {
	return domain.Order{
		ID:            1,
		CustomerID:    42,
		PlacedAt:      time.Now().UTC(),
		PaymentStatus: domain.PaymentStatusPending,
		Items: []domain.OrderItem{
			{
				ID:        1,
				OrderID:   1,
				ProductID: 7,
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("10.00"),
			},
		},
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = 0
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Quantity = 0
			},
		},
		{
			name: "price negative",
			mut: func(o *domain.Order) {
				o.Items[0].UnitPrice = decimal.RequireFromString("-1.00")
			},
		},
		{
			name: "unknown payment status",
			mut: func(o *domain.Order) {
				o.PaymentStatus = "chargeback"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestOrderTotal(t *testing.T) {
	order := makeOrder()
	order.Items = append(order.Items, domain.OrderItem{
		ID:        2,
		OrderID:   1,
		ProductID: 8,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("20.00"),
	})

	want := decimal.RequireFromString("40.00")
	if got := order.Total(); !got.Equal(want) {
		t.Fatalf("expected order total %s, got %s", want, got)
	}
}

func TestProductFilterMatches(t *testing.T) {
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	product := domain.Product{
		ID:           1,
		Title:        "Ceramic Mug",
		Description:  "a glazed mug",
		UnitPrice:    decimal.RequireFromString("12.50"),
		CollectionID: 3,
	}

	cases := []struct {
		name   string
		filter domain.ProductFilter
		want   bool
	}{
		{name: "empty filter", filter: domain.ProductFilter{}, want: true},
		{name: "collection match", filter: domain.ProductFilter{CollectionID: 3}, want: true},
		{name: "collection mismatch", filter: domain.ProductFilter{CollectionID: 4}, want: false},
		{name: "price window", filter: domain.ProductFilter{PriceGT: price("10.00"), PriceLT: price("15.00")}, want: true},
		{name: "price too low", filter: domain.ProductFilter{PriceGT: price("12.50")}, want: false},
		{name: "search title", filter: domain.ProductFilter{Search: "mug"}, want: true},
		{name: "search miss", filter: domain.ProductFilter{Search: "teapot"}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(product); got != tc.want {
				t.Fatalf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}
