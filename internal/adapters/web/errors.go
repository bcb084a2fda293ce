package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"distribution-backend/internal/core"
	"distribution-backend/internal/logger"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code"`
	RequestID string        `json:"request_id,omitempty"`
	Retryable bool          `json:"retryable,omitempty"`
	Stock     *stockDetails `json:"stock,omitempty"`
}

type stockDetails struct {
	ItemID    int64  `json:"item_id"`
	ItemName  string `json:"item_name"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a service error onto an HTTP status by its kind.
// Store failures are logged in full and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Error:     err.Error(),
		Code:      string(core.KindOf(err)),
		RequestID: requestIDFromContext(r.Context()),
	}

	var status int
	switch core.KindOf(err) {
	case core.KindValidation:
		status = http.StatusBadRequest
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindInsufficientStock:
		status = http.StatusConflict
		var stockErr *core.InsufficientStockError
		if errors.As(err, &stockErr) {
			resp.Stock = &stockDetails{
				ItemID:    stockErr.ItemID,
				ItemName:  stockErr.ItemName,
				Requested: stockErr.Requested,
				Available: stockErr.Available,
			}
		}
	case core.KindConflict:
		status = http.StatusConflict
		resp.Retryable = true
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		status = http.StatusInternalServerError
		resp.Error = "internal error"
		resp.Code = string(core.KindPersistence)
	}
	writeErrorResponse(w, status, resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
