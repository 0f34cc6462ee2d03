package http

import (
	"net/http"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.principal(w, r)
	if !ok {
		return
	}

	customer, err := s.customers.Resolve(userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req updateCustomerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.customers.Update(userID, domain.Customer{
		Phone:      req.Phone,
		BirthDate:  req.BirthDate,
		Membership: domain.Membership(req.Membership),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCustomerResponse(updated))
}
