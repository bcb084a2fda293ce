package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"distribution-backend/internal/config"
	"distribution-backend/internal/core"
	"distribution-backend/internal/db"
	"distribution-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var (
	sharedDSN  string
	sharedOnce sync.Once
	sharedErr  error
)

// testDSN returns TEST_DATABASE_URL when set; otherwise it starts one
// PostgreSQL container shared by every test in the package.
func testDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	_ = godotenv.Load("../../../.env")
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	sharedOnce.Do(func() {
		ctx := context.Background()
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("distribution_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			sharedErr = err
			return
		}
		sharedDSN, sharedErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, sharedErr, "failed to start PostgreSQL container")
	return sharedDSN
}

// setupStore migrates the schema, wipes all rows and returns a store on a
// fresh pool.
func setupStore(t *testing.T) (*postgres.Store, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, config.DatabaseConfig{URL: testDSN(t), MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	m, err := db.NewMigrator(pool, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	_, err = pool.Exec(ctx, `TRUNCATE issuance_lines, financial_distributions, issuances,
		customers, items, document_sequences RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return postgres.New(pool, zaptest.NewLogger(t)), pool
}

type services struct {
	issuances core.IssuanceService
	inventory core.InventoryService
	widget    *core.Item
	customer  *core.Customer
}

func newServices(t *testing.T, store core.Store, widgetStock int64) *services {
	t.Helper()
	ctx := context.Background()
	clock := core.FixedClock(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	s := &services{
		inventory: core.NewInventoryService(store, core.NopAuditPublisher{}, clock, logger),
		issuances: core.NewIssuanceService(store, core.NewDocumentNumberGenerator("DST"), core.NopAuditPublisher{}, clock, logger),
	}
	var err error
	s.widget, err = s.inventory.CreateItem(ctx, core.NewItemInput{Name: "Widget", Unit: "pcs", UnitCost: 60000, InitialStock: widgetStock})
	require.NoError(t, err)
	s.customer, err = s.issuances.CreateCustomer(ctx, core.NewCustomerInput{Name: "Toko Maju", Address: "Jl. Merdeka 1"})
	require.NoError(t, err)
	return s
}

func (s *services) draft(qty int64) core.IssuanceDraft {
	return core.IssuanceDraft{
		CustomerID:     s.customer.ID,
		IssueDate:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Lines:          []core.LineDraft{{ItemID: s.widget.ID, Quantity: qty, UnitPrice: 75000}},
		ShippingCharge: 25000,
		FeeRatePerUnit: 400,
	}
}

func (s *services) onHand(t *testing.T) int64 {
	t.Helper()
	item, err := s.inventory.GetItem(context.Background(), s.widget.ID)
	require.NoError(t, err)
	return item.OnHand
}

func TestStore_IssuanceLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	s := newServices(t, store, 50)

	po := "PO-881"
	d := s.draft(10)
	d.PurchaseOrderRef = &po
	res, err := s.issuances.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "INV/001/05/DST/03/2024", res.DocumentNumber)
	assert.Equal(t, int64(40), s.onHand(t))

	view, err := s.issuances.GetForEdit(ctx, res.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Issuance.PurchaseOrderRef)
	assert.Equal(t, "PO-881", *view.Issuance.PurchaseOrderRef)
	assert.Equal(t, "Toko Maju", view.Issuance.CustomerName)
	assert.Equal(t, "Widget", view.Issuance.Lines[0].ItemName)
	assert.Equal(t, int64(121000), view.Distribution.RunningMargin)
	assert.Equal(t, [core.OwnerCount]int64{36300, 36300, 36300}, view.Distribution.OwnerShares)
	assert.Equal(t, int64(50), view.Available[s.widget.ID])

	_, err = s.issuances.Update(ctx, res.ID, s.draft(5))
	require.NoError(t, err)
	assert.Equal(t, int64(45), s.onHand(t))

	_, err = s.issuances.Update(ctx, res.ID, s.draft(51))
	require.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available: 50")
	assert.Equal(t, int64(45), s.onHand(t))

	_, err = s.issuances.SetPaymentStatus(ctx, res.ID, core.PaymentPaid)
	require.NoError(t, err)
	summary, err := s.issuances.PeriodSummary(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Issuances)
	assert.Equal(t, 0, summary.Unpaid)

	list, err := s.issuances.List(ctx, core.IssuanceFilter{Year: 2024, Month: 3})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, core.PaymentPaid, list[0].PaymentStatus)

	assert.ErrorIs(t, s.inventory.DeleteItem(ctx, s.widget.ID), core.ErrConflict)

	require.NoError(t, s.issuances.Delete(ctx, res.ID))
	assert.Equal(t, int64(50), s.onHand(t))
	_, err = s.issuances.GetForEdit(ctx, res.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_ConcurrentCreatesNeverOversell(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	s := newServices(t, store, 5)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
		rejected  int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.issuances.Create(ctx, s.draft(1))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, core.ErrInsufficientStock)
				rejected++
				return
			}
			succeeded = append(succeeded, res.DocumentNumber)
		}()
	}
	wg.Wait()

	assert.Len(t, succeeded, 5)
	assert.Equal(t, workers-5, rejected)
	assert.Equal(t, int64(0), s.onHand(t))

	seen := map[string]bool{}
	for _, n := range succeeded {
		assert.False(t, seen[n], "duplicate document number %s", n)
		seen[n] = true
	}
}

func TestStore_SequenceSeedsFromExistingRows(t *testing.T) {
	ctx := context.Background()
	store, pool := setupStore(t)
	s := newServices(t, store, 50)

	_, err := s.issuances.Create(ctx, s.draft(1))
	require.NoError(t, err)

	// Simulate data imported without a counter row.
	_, err = pool.Exec(ctx, `DELETE FROM document_sequences`)
	require.NoError(t, err)

	res, err := s.issuances.Create(ctx, s.draft(1))
	require.NoError(t, err)
	assert.Equal(t, "INV/002/05/DST/03/2024", res.DocumentNumber)
}

func TestStore_StockCheckConstraint(t *testing.T) {
	ctx := context.Background()
	_, pool := setupStore(t)

	_, err := pool.Exec(ctx, `INSERT INTO items (name, unit, unit_cost, on_hand) VALUES ('Bad', 'pcs', 0, -1)`)
	require.Error(t, err)
}
