// Package cart implements the pre-checkout shopping cart operations on top of
// the cart and catalog repositories.
package cart

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// Service exposes cart lifecycle and line-item operations. Carts hold no
// prices of their own; totals are computed from current catalog prices at
// read time.
type Service struct {
	carts   domain.CartRepository
	catalog domain.CatalogLookup
	logger  *log.Entry
}

// NewService creates the cart service.
func NewService(carts domain.CartRepository, catalog domain.CatalogLookup, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart-service")
	}
	return &Service{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// Create opens a new empty cart and returns it with its token.
func (s *Service) Create() (domain.Cart, error) {
	cart, err := s.carts.Create(domain.Cart{})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}

	s.logger.WithField("cart_id", cart.ID).Debug("cart created")
	return cart, nil
}

// Get returns the cart with its items joined against the current catalog.
func (s *Service) Get(cartID string) (domain.Cart, error) {
	cart, err := s.carts.Get(cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// ListItems returns the cart's line items or ErrCartNotFound.
func (s *Service) ListItems(cartID string) ([]domain.CartItem, error) {
	return s.carts.ListItems(cartID)
}

// UpsertItem adds a product to the cart or overwrites the quantity of the
// existing line. The product must exist in the catalog and the quantity must
// be a positive integer.
func (s *Service) UpsertItem(cartID string, productID int64, quantity int) (domain.CartItem, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartItem{}, err
	}
	if productID < 1 {
		return domain.CartItem{}, domain.ErrProductNotFound
	}

	if _, ok, err := s.catalog.GetProductPrice(productID); err != nil {
		return domain.CartItem{}, fmt.Errorf("look up product %d: %w", productID, err)
	} else if !ok {
		return domain.CartItem{}, domain.ErrProductNotFound
	}

	item, err := s.carts.UpsertItem(cartID, productID, quantity)
	if err != nil {
		return domain.CartItem{}, err
	}

	s.logger.WithFields(log.Fields{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	}).Debug("cart item upserted")
	return item, nil
}

// SetItemQuantity changes the quantity of an existing line or fails with
// ErrCartItemNotFound.
func (s *Service) SetItemQuantity(cartID string, productID int64, quantity int) (domain.CartItem, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.CartItem{}, err
	}

	return s.carts.SetItemQuantity(cartID, productID, quantity)
}

// Delete removes the cart with its items. Deleting an absent cart succeeds.
func (s *Service) Delete(cartID string) error {
	if err := s.carts.DeleteCart(cartID); err != nil {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}
