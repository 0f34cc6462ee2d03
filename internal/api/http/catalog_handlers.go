package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

func (s *Server) handleListCollections(w http.ResponseWriter, _ *http.Request) {
	collections, err := s.catalog.ListCollections()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]collectionResponse, 0, len(collections))
	for _, c := range collections {
		resp = append(resp, toCollectionResponse(c))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := s.catalog.CreateCollection(domain.Collection{Title: req.Title})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toCollectionResponse(domain.CollectionWithCount{Collection: created}))
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid collection id")
		return
	}

	collection, err := s.catalog.GetCollection(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCollectionResponse(collection))
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid collection id")
		return
	}

	if err := s.catalog.DeleteCollection(id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFromQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := s.catalog.ListProducts(filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func productFilterFromQuery(r *http.Request) (domain.ProductFilter, error) {
	var filter domain.ProductFilter
	query := r.URL.Query()

	if raw := query.Get("collection_id"); raw != "" {
		id, err := parseQueryInt(raw)
		if err != nil {
			return domain.ProductFilter{}, err
		}
		filter.CollectionID = id
	}
	if raw := query.Get("unit_price_gt"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.ProductFilter{}, errInvalidPriceFilter
		}
		filter.PriceGT = &price
	}
	if raw := query.Get("unit_price_lt"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.ProductFilter{}, errInvalidPriceFilter
		}
		filter.PriceLT = &price
	}
	filter.Search = query.Get("search")
	filter.OrderBy = query.Get("ordering")

	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.ProductFilter{}, errInvalidPagination
		}
		filter.Limit = n
	}
	if raw := query.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.ProductFilter{}, errInvalidPagination
		}
		filter.Offset = n
	}

	return filter, nil
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.UnitPrice.IsNegative() {
		s.writeError(w, http.StatusBadRequest, domain.ErrPriceNegative.Error())
		return
	}

	created, err := s.catalog.CreateProduct(domain.Product{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		Inventory:    req.Inventory,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toProductResponse(created))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := s.catalog.GetProduct(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UnitPrice.IsNegative() {
		s.writeError(w, http.StatusBadRequest, domain.ErrPriceNegative.Error())
		return
	}

	updated, err := s.catalog.UpdateProduct(domain.Product{
		ID:           id,
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		Inventory:    req.Inventory,
		CollectionID: req.CollectionID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProductResponse(updated))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.catalog.DeleteProduct(id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if _, err := s.catalog.GetProduct(productID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	reviews, err := s.catalog.ListReviews(productID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, toReviewResponse(review))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.catalog.CreateReview(domain.Review{
		ProductID:   productID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toReviewResponse(created))
}
