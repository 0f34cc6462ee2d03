package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// taxRate is the flat sales tax applied to displayed prices. Orders freeze
// the pre-tax unit price; the taxed price is presentation only.
var taxRate = decimal.RequireFromString("1.1")

type errorResponse struct {
	Error string `json:"error"`
}

type collectionResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ProductsCount int    `json:"products_count"`
}

type createCollectionRequest struct {
	Title string `json:"title"`
}

type productResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	PriceWithTax decimal.Decimal `json:"price_with_tax"`
	Inventory    int             `json:"inventory"`
	CollectionID int64           `json:"collection_id"`
	LastUpdate   time.Time       `json:"last_update"`
}

type productRequest struct {
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Inventory    int             `json:"inventory"`
	CollectionID int64           `json:"collection_id"`
}

type reviewResponse struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

type createReviewRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type cartItemResponse struct {
	ID         int64            `json:"id"`
	ProductID  int64            `json:"product_id"`
	Quantity   int              `json:"quantity"`
	Product    *productResponse `json:"product,omitempty"`
	TotalPrice decimal.Decimal  `json:"total_price"`
}

type cartResponse struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []cartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

type upsertCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type customerResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Phone      string     `json:"phone,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Membership string     `json:"membership"`
}

type updateCustomerRequest struct {
	Phone      string     `json:"phone"`
	BirthDate  *time.Time `json:"birth_date"`
	Membership string     `json:"membership"`
}

type orderItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	CustomerID    int64               `json:"customer_id"`
	PlacedAt      time.Time           `json:"placed_at"`
	PaymentStatus string              `json:"payment_status"`
	Items         []orderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
}

type placeOrderRequest struct {
	CartID string `json:"cart_id"`
}

type patchOrderRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func toCollectionResponse(c domain.CollectionWithCount) collectionResponse {
	return collectionResponse{
		ID:            c.ID,
		Title:         c.Title,
		ProductsCount: c.ProductsCount,
	}
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice,
		PriceWithTax: p.UnitPrice.Mul(taxRate).Round(2),
		Inventory:    p.Inventory,
		CollectionID: p.CollectionID,
		LastUpdate:   p.LastUpdate,
	}
}

func toReviewResponse(r domain.Review) reviewResponse {
	return reviewResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Date:        r.Date,
	}
}

func toCartItemResponse(item domain.CartItem) cartItemResponse {
	resp := cartItemResponse{
		ID:         item.ID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		TotalPrice: item.TotalPrice(),
	}
	if item.Product != nil {
		product := toProductResponse(*item.Product)
		resp.Product = &product
	}
	return resp
}

func toCartResponse(cart domain.Cart) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, toCartItemResponse(item))
	}
	return cartResponse{
		ID:         cart.ID,
		CreatedAt:  cart.CreatedAt,
		Items:      items,
		TotalPrice: cart.TotalPrice(),
	}
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Phone:      c.Phone,
		BirthDate:  c.BirthDate,
		Membership: string(c.Membership),
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total(),
		})
	}
	return orderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		PlacedAt:      o.PlacedAt,
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		Total:         o.Total(),
	}
}
