package bootstrap

import (
	"context"
	"testing"
	"time"

	"distribution-backend/internal/app"
	"distribution-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Audit: config.AuditConfig{
			BufferSize:      16,
			Workers:         1,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		Issuance: config.IssuanceConfig{OrganizationalUnit: "JKT", HandlingFeePerUnit: 400},
	}
}

func TestBuild_MemoryDriver(t *testing.T) {
	ctx := context.Background()
	rt, err := Build(ctx, memoryConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, rt.Pool)

	item, err := rt.Service.CreateItem(ctx, app.CreateItemRequest{Name: "Widget", Unit: "pcs", UnitCost: 100, InitialStock: 5})
	require.NoError(t, err)
	customer, err := rt.Service.CreateCustomer(ctx, app.CreateCustomerRequest{Name: "Toko"})
	require.NoError(t, err)

	res, err := rt.Service.CreateIssuance(ctx, app.IssuanceRequest{
		CustomerID: customer.ID,
		IssueDate:  "2024-03-05",
		Lines:      []app.IssuanceLineInput{{ItemID: item.ID, Quantity: 1, UnitPrice: 200}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV/001/05/JKT/03/2024", res.DocumentNumber)

	_, err = rt.Migrator()
	assert.Error(t, err)

	require.NoError(t, rt.Close(ctx))
}
