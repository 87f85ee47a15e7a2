package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction(t *testing.T) {
	var gotAuth string
	var gotBody InitializeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "LD-20250601-123456789-1748779200000"
			}
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk_test_key", server.URL)

	data, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:     "ada@example.com",
		Amount:    25000,
		Currency:  "NGN",
		Reference: "LD-20250601-123456789-1748779200000",
		Metadata:  Metadata{OrderNumber: "LD-20250601-123456789", UserID: "656e6f7567682062797465"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.Equal(t, int64(25000), gotBody.Amount)
	assert.Equal(t, "LD-20250601-123456789", gotBody.Metadata.OrderNumber)
	assert.Equal(t, "https://checkout.paystack.com/abc123", data.AuthorizationURL)
	assert.Equal(t, "LD-20250601-123456789-1748779200000", data.Reference)
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/transaction/verify/LD-20250601-123456789-1748779200000", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "LD-20250601-123456789-1748779200000",
				"amount": 25000,
				"metadata": {"order_number": "LD-20250601-123456789", "user_id": "u1"}
			}
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk_test_key", server.URL)

	tx, err := client.VerifyTransaction(context.Background(), "LD-20250601-123456789-1748779200000")

	require.NoError(t, err)
	assert.Equal(t, "success", tx.Status)
	assert.Equal(t, int64(25000), tx.Amount)
	assert.Equal(t, "LD-20250601-123456789", tx.Metadata.OrderNumber)
}

func TestVerifyTransactionGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk_test_key", server.URL)

	_, err := client.VerifyTransaction(context.Background(), "missing-ref")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transaction reference not found")
}

func TestInitializeTransactionFalseStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk_bad_key", server.URL)

	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}
