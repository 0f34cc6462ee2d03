package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := s.checkout.PlaceOrder(req.CartID, userID)
	if err != nil {
		// Checkout preconditions read as validation failures, including the
		// missing cart, which elsewhere is a 404.
		if errors.Is(err, domain.ErrCartNotFound) || errors.Is(err, domain.ErrCartEmpty) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.principal(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	orders, err := s.checkout.ListOrders(userID, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := s.checkout.GetOrder(id, userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) handleSetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req patchOrderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := s.checkout.SetPaymentStatus(id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toOrderResponse(order))
}
