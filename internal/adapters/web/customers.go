package web

import (
	"net/http"

	"distribution-backend/internal/app"
)

// apiListCustomers handles GET /api/customers.
func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateCustomer handles POST /api/customers.
func (h *Handler) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.CreateCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

// apiDeleteCustomer handles DELETE /api/customers/{id}.
func (h *Handler) apiDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
