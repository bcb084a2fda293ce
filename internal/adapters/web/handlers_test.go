package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"distribution-backend/internal/app"
	"distribution-backend/internal/core"
	"distribution-backend/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type recordingPublisher struct {
	events []core.AuditEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e core.AuditEvent) {
	p.events = append(p.events, e)
}

type testServer struct {
	handler http.Handler
	audit   *recordingPublisher
	token   string
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	store := memory.New()
	clock := core.FixedClock(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	audit := &recordingPublisher{}
	logger := zap.NewNop()
	inventory := core.NewInventoryService(store, audit, clock, logger)
	issuances := core.NewIssuanceService(store, core.NewDocumentNumberGenerator("DST"), audit, clock, logger)
	svc := app.NewAppService(store, inventory, issuances, clock, app.IssuanceDefaults{HandlingFeePerUnit: 400})

	ts := &testServer{
		handler: NewHandler(svc, logger, Options{JWTSecret: secret, JWTIssuer: "test"}),
		audit:   audit,
	}
	if secret != "" {
		token, err := IssueToken(secret, "test", "clerk-1", "clerk", time.Hour)
		require.NoError(t, err)
		ts.token = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) seed(t *testing.T) (itemID, customerID int64) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/items", app.CreateItemRequest{Name: "Widget", Unit: "pcs", UnitCost: 60000, InitialStock: 50})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[core.Item](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/customers", app.CreateCustomerRequest{Name: "Toko Maju"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customer := decode[core.Customer](t, rec)
	return item.ID, customer.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t, testSecret)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		bad, err := IssueToken("other", "test", "clerk-1", "", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Authorization", "Bearer "+bad)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cookie token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: ts.token})
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("subject becomes audit actor", func(t *testing.T) {
		ts.seed(t)
		require.NotEmpty(t, ts.audit.events)
		assert.Equal(t, "clerk-1", ts.audit.events[len(ts.audit.events)-1].ActorID)
	})

	t.Run("no secret means open access as system", func(t *testing.T) {
		open := newTestServer(t, "")
		open.seed(t)
		require.NotEmpty(t, open.audit.events)
		assert.Equal(t, core.SystemActor, open.audit.events[0].ActorID)
	})
}

func TestIssuanceLifecycle(t *testing.T) {
	ts := newTestServer(t, testSecret)
	itemID, customerID := ts.seed(t)

	rec := ts.do(t, http.MethodPost, "/api/issuances", app.IssuanceRequest{
		CustomerID:     customerID,
		IssueDate:      "2024-03-05",
		Lines:          []app.IssuanceLineInput{{ItemID: itemID, Quantity: 10, UnitPrice: 75000}},
		ShippingCharge: 25000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[core.IssuanceResult](t, rec)
	assert.Equal(t, "INV/001/05/DST/03/2024", created.DocumentNumber)

	issuancePath := "/api/issuances/" + strconv.FormatInt(created.ID, 10)

	rec = ts.do(t, http.MethodGet, "/api/items/"+strconv.FormatInt(itemID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(40), decode[core.Item](t, rec).OnHand)

	t.Run("update restores before checking", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, issuancePath, app.IssuanceRequest{
			CustomerID: customerID,
			IssueDate:  "2024-03-05",
			Lines:      []app.IssuanceLineInput{{ItemID: itemID, Quantity: 50, UnitPrice: 75000}},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[core.IssuanceResult](t, rec)
		assert.Equal(t, created.DocumentNumber, updated.DocumentNumber)

		rec = ts.do(t, http.MethodGet, issuancePath, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode[core.IssuanceEditView](t, rec)
		assert.Equal(t, int64(50), view.Available[itemID])
		assert.Equal(t, int64(50), view.Issuance.Lines[0].Quantity)
	})

	t.Run("insufficient stock carries details", func(t *testing.T) {
		rec := ts.do(t, http.MethodPut, issuancePath, app.IssuanceRequest{
			CustomerID: customerID,
			IssueDate:  "2024-03-05",
			Lines:      []app.IssuanceLineInput{{ItemID: itemID, Quantity: 51, UnitPrice: 75000}},
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, string(core.KindInsufficientStock), resp.Code)
		assert.Contains(t, resp.Error, "available: 50")
		require.NotNil(t, resp.Stock)
		assert.Equal(t, "Widget", resp.Stock.ItemName)
		assert.False(t, resp.Retryable)
	})

	t.Run("payment status", func(t *testing.T) {
		rec := ts.do(t, http.MethodPatch, issuancePath+"/payment-status", map[string]string{"payment_status": "paid"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, core.PaymentPaid, decode[core.FinancialDistribution](t, rec).PaymentStatus)

		rec = ts.do(t, http.MethodPatch, issuancePath+"/payment-status", map[string]string{"payment_status": "void"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list and report", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/issuances?year=2024&month=3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[app.IssuanceListResult](t, rec).Issuances, 1)

		rec = ts.do(t, http.MethodGet, "/api/reports/profit-sharing?year=2024&month=3", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[core.PeriodSummary](t, rec).Issuances)

		rec = ts.do(t, http.MethodGet, "/api/reports/profit-sharing?year=2024&month=x", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("referenced item cannot be deleted", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/items/"+strconv.FormatInt(itemID, 10), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete returns stock", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, issuancePath, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = ts.do(t, http.MethodGet, "/api/items/"+strconv.FormatInt(itemID, 10), nil)
		assert.Equal(t, int64(50), decode[core.Item](t, rec).OnHand)

		rec = ts.do(t, http.MethodGet, issuancePath, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t, testSecret)

	rec := ts.do(t, http.MethodGet, "/api/issuances/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/issuances", map[string]any{"customer_id": 1, "unknown": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/issuances", app.IssuanceRequest{CustomerID: 1, IssueDate: "2024-03-05"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(core.KindValidation), decode[errorResponse](t, rec).Code)
}
