package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"distribution-backend/internal/app"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins string // comma-separated; empty disables CORS
	JWTSecret      string // empty disables authentication
	JWTIssuer      string
	MaxBodyBytes   int64
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	logger    *zap.Logger
	jwtSecret string
	jwtIssuer string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, logger *zap.Logger, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20 // 1 MB
	}
	h := &Handler{
		svc:       svc,
		logger:    logger.Named("http"),
		jwtSecret: opts.JWTSecret,
		jwtIssuer: opts.JWTIssuer,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes ──────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(opts.MaxBodyBytes))

		// ── Items ────────────────────────────────────────────────────────────
		r.Get("/api/items", h.apiListItems)
		r.Post("/api/items", h.apiCreateItem)
		r.Get("/api/items/{id}", h.apiGetItem)
		r.Delete("/api/items/{id}", h.apiDeleteItem)
		r.Post("/api/items/{id}/receive", h.apiReceiveStock)

		// ── Customers ────────────────────────────────────────────────────────
		r.Get("/api/customers", h.apiListCustomers)
		r.Post("/api/customers", h.apiCreateCustomer)
		r.Delete("/api/customers/{id}", h.apiDeleteCustomer)

		// ── Goods issuances ──────────────────────────────────────────────────
		r.Get("/api/issuances", h.apiListIssuances)
		r.Post("/api/issuances", h.apiCreateIssuance)
		r.Get("/api/issuances/{id}", h.apiGetIssuance)
		r.Put("/api/issuances/{id}", h.apiUpdateIssuance)
		r.Delete("/api/issuances/{id}", h.apiDeleteIssuance)
		r.Patch("/api/issuances/{id}/payment-status", h.apiSetPaymentStatus)

		// ── Reports ──────────────────────────────────────────────────────────
		r.Get("/api/reports/profit-sharing", h.apiProfitSharing)
	})

	return r
}

// health reports service status and store reachability.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}

	if err := h.svc.Health(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(response{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// pathID parses the {id} URL parameter and writes a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "id must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, name+" must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
