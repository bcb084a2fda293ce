package web

import (
	"net/http"

	"distribution-backend/internal/app"
)

// apiListIssuances handles GET /api/issuances?year=&month=.
func (h *Handler) apiListIssuances(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	result, err := h.svc.ListIssuances(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateIssuance handles POST /api/issuances.
func (h *Handler) apiCreateIssuance(w http.ResponseWriter, r *http.Request) {
	var req app.IssuanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateIssuance(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiGetIssuance handles GET /api/issuances/{id}. The response carries what
// an edit form needs, including per-item availability.
func (h *Handler) apiGetIssuance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.GetIssuanceForEdit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, view)
}

// apiUpdateIssuance handles PUT /api/issuances/{id}.
func (h *Handler) apiUpdateIssuance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.IssuanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateIssuance(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiDeleteIssuance handles DELETE /api/issuances/{id}.
func (h *Handler) apiDeleteIssuance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteIssuance(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiSetPaymentStatus handles PATCH /api/issuances/{id}/payment-status.
func (h *Handler) apiSetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		PaymentStatus string `json:"payment_status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	dist, err := h.svc.SetPaymentStatus(r.Context(), id, body.PaymentStatus)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, dist)
}

// apiProfitSharing handles GET /api/reports/profit-sharing?year=&month=.
func (h *Handler) apiProfitSharing(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	summary, err := h.svc.ProfitSharingReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}
