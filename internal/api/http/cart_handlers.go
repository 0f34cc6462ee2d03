package http

import (
	"net/http"
)

func (s *Server) handleCreateCart(w http.ResponseWriter, _ *http.Request) {
	cart, err := s.carts.Create()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toCartResponse(cart))
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.Get(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartResponse(cart))
}

func (s *Server) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	if err := s.carts.Delete(r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCartItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.carts.ListItems(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toCartItemResponse(item))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpsertCartItem(w http.ResponseWriter, r *http.Request) {
	var req upsertCartItemRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.carts.UpsertItem(r.PathValue("id"), req.ProductID, req.Quantity)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toCartItemResponse(item))
}

func (s *Server) handleSetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req setQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.carts.SetItemQuantity(r.PathValue("id"), productID, req.Quantity)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartItemResponse(item))
}
