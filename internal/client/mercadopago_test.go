package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-storefront/internal/config"
)

func newTestClient(serverURL string) MercadoPagoClient {
	return NewMercadoPagoClient(&config.MercadoPago{
		BaseApiURL:  serverURL,
		AccessToken: "test-token",
	})
}

func TestCreatePreference(t *testing.T) {
	var (
		gotPath    string
		gotAuth    string
		gotIdemKey string
		gotBody    PreferenceRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PreferenceResponse{
			ID:        "123456-abc",
			InitPoint: "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=123456-abc",
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).CreatePreference(context.Background(), &PreferenceRequest{
		Items: []PreferenceItem{
			{Title: "Vitamin C", Quantity: 2, CurrencyID: "BRL", UnitPrice: 10},
		},
		ExternalReference: "42",
	})
	require.NoError(t, err)

	assert.Equal(t, "/checkout/preferences", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.NotEmpty(t, gotIdemKey)
	assert.Equal(t, "42", gotBody.ExternalReference)
	require.Len(t, gotBody.Items, 1)
	assert.Equal(t, "Vitamin C", gotBody.Items[0].Title)

	assert.Equal(t, "123456-abc", resp.ID)
	assert.Contains(t, resp.InitPoint, "pref_id=123456-abc")
}

func TestCreatePreferenceUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid items"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreatePreference(context.Background(), &PreferenceRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mercadopago error 400")
	assert.Contains(t, err.Error(), "invalid items")
}

func TestGetPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/777", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Payment{
			ID:                777,
			Status:            "approved",
			ExternalReference: "42",
		})
	}))
	defer server.Close()

	payment, err := newTestClient(server.URL).GetPayment(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, int64(777), payment.ID)
	assert.Equal(t, "approved", payment.Status)
	assert.Equal(t, "42", payment.ExternalReference)
}

func TestGetPaymentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"payment not found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetPayment(context.Background(), "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mercadopago error 404")
}
