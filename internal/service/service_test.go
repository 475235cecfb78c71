package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pharmacy-storefront/internal/client"
	"pharmacy-storefront/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive for the
	// whole test.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Neighborhood{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderQuote{},
		&model.WebhookEvent{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, kind model.CatalogType) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Available: true,
		Type:      kind,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedNeighborhood(t *testing.T, db *gorm.DB, name string, tax string) *model.Neighborhood {
	t.Helper()

	neighborhood := &model.Neighborhood{
		Name: name,
		Tax:  decimal.RequireFromString(tax),
	}
	require.NoError(t, db.Create(neighborhood).Error)
	return neighborhood
}

// fakeGatewayClient stands in for the Mercado Pago API in service tests.
type fakeGatewayClient struct {
	preferenceRequests []*client.PreferenceRequest
	preferenceErr      error

	payments    map[string]*client.Payment
	getPayments int
	getErr      error
}

func newFakeGatewayClient() *fakeGatewayClient {
	return &fakeGatewayClient{payments: make(map[string]*client.Payment)}
}

func (f *fakeGatewayClient) CreatePreference(_ context.Context, req *client.PreferenceRequest) (*client.PreferenceResponse, error) {
	f.preferenceRequests = append(f.preferenceRequests, req)
	if f.preferenceErr != nil {
		return nil, f.preferenceErr
	}
	return &client.PreferenceResponse{
		ID:        "pref-" + req.ExternalReference,
		InitPoint: "https://checkout.example/init/" + req.ExternalReference,
	}, nil
}

func (f *fakeGatewayClient) GetPayment(_ context.Context, paymentID string) (*client.Payment, error) {
	f.getPayments++
	if f.getErr != nil {
		return nil, f.getErr
	}
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("mercadopago error 404: payment %s not found", paymentID)
	}
	return payment, nil
}
