// Package http exposes the storefront REST API under /store.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	cartsvc "github.com/Sina-Lotfi/storefront/internal/service/cart"
	checkoutsvc "github.com/Sina-Lotfi/storefront/internal/service/checkout"
	customersvc "github.com/Sina-Lotfi/storefront/internal/service/customer"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// userIDHeader carries the authenticated principal. Authentication itself
// happens upstream; this service trusts the header.
const userIDHeader = "X-User-ID"

// Server wires the storefront services to HTTP handlers.
type Server struct {
	catalog   domain.CatalogRepository
	carts     *cartsvc.Service
	customers *customersvc.Resolver
	checkout  *checkoutsvc.Service
	logger    *log.Entry
}

// NewServer creates the API server.
func NewServer(
	catalog domain.CatalogRepository,
	carts *cartsvc.Service,
	customers *customersvc.Resolver,
	checkout *checkoutsvc.Service,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Server{
		catalog:   catalog,
		carts:     carts,
		customers: customers,
		checkout:  checkout,
		logger:    logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /store/collections", s.handleListCollections)
	mux.HandleFunc("POST /store/collections", s.handleCreateCollection)
	mux.HandleFunc("GET /store/collections/{id}", s.handleGetCollection)
	mux.HandleFunc("DELETE /store/collections/{id}", s.handleDeleteCollection)

	mux.HandleFunc("GET /store/products", s.handleListProducts)
	mux.HandleFunc("POST /store/products", s.handleCreateProduct)
	mux.HandleFunc("GET /store/products/{id}", s.handleGetProduct)
	mux.HandleFunc("PUT /store/products/{id}", s.handleUpdateProduct)
	mux.HandleFunc("DELETE /store/products/{id}", s.handleDeleteProduct)
	mux.HandleFunc("GET /store/products/{id}/reviews", s.handleListReviews)
	mux.HandleFunc("POST /store/products/{id}/reviews", s.handleCreateReview)

	mux.HandleFunc("POST /store/carts", s.handleCreateCart)
	mux.HandleFunc("GET /store/carts/{id}", s.handleGetCart)
	mux.HandleFunc("DELETE /store/carts/{id}", s.handleDeleteCart)
	mux.HandleFunc("GET /store/carts/{id}/items", s.handleListCartItems)
	mux.HandleFunc("POST /store/carts/{id}/items", s.handleUpsertCartItem)
	mux.HandleFunc("PUT /store/carts/{id}/items/{productID}", s.handleSetCartItemQuantity)

	mux.HandleFunc("GET /store/customers/me", s.handleGetCustomer)
	mux.HandleFunc("PUT /store/customers/me", s.handleUpdateCustomer)

	mux.HandleFunc("GET /store/orders", s.handleListOrders)
	mux.HandleFunc("POST /store/orders", s.handlePlaceOrder)
	mux.HandleFunc("GET /store/orders/{id}", s.handleGetOrder)
	// Payment status updates arrive from the payment provider, not the
	// shopper, so PATCH takes no shopper principal.
	mux.HandleFunc("PATCH /store/orders/{id}", s.handleSetPaymentStatus)

	return mux
}

// principal extracts the authenticated user id from the request, or writes a
// 401 and returns false.
func (s *Server) principal(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		s.writeError(w, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID < 1 {
		s.writeError(w, http.StatusUnauthorized, "invalid "+userIDHeader+" header")
		return 0, false
	}
	return userID, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

var (
	errInvalidPriceFilter = errors.New("invalid price filter")
	errInvalidPagination  = errors.New("invalid pagination parameter")
)

func parseQueryInt(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid collection_id filter")
	}
	return id, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Warn("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain errors to status codes. Handlers that need a
// different mapping for a specific sentinel (checkout treats a missing cart
// as a validation failure) check it before falling through to this.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsTransient(err):
		w.Header().Set("Retry-After", "1")
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case domain.IsConflict(err):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrProductReferenced), errors.Is(err, domain.ErrCollectionNotEmpty):
		s.writeError(w, http.StatusMethodNotAllowed, err.Error())
	case domain.IsNotFound(err):
		s.writeError(w, http.StatusNotFound, err.Error())
	case domain.IsValidation(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.WithError(err).Error("request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
