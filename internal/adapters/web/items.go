package web

import (
	"net/http"

	"distribution-backend/internal/app"
)

// apiListItems handles GET /api/items.
func (h *Handler) apiListItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetItem handles GET /api/items/{id}.
func (h *Handler) apiGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// apiCreateItem handles POST /api/items.
func (h *Handler) apiCreateItem(w http.ResponseWriter, r *http.Request) {
	var req app.CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.svc.CreateItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, item)
}

// apiReceiveStock handles POST /api/items/{id}/receive.
func (h *Handler) apiReceiveStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Quantity int64 `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	item, err := h.svc.ReceiveStock(r.Context(), app.ReceiveStockRequest{ItemID: id, Quantity: body.Quantity})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// apiDeleteItem handles DELETE /api/items/{id}.
func (h *Handler) apiDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
