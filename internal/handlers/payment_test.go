package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"backend/internal/paystack"
)

func webhookRouter(webhookKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payments/webhook", PaystackWebhook(nil, webhookKey))
	return r
}

func TestPaystackWebhookMissingKey(t *testing.T) {
	r := webhookRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPaystackWebhookInvalidSignature(t *testing.T) {
	r := webhookRouter("whsec_test")
	body := `{"event":"charge.success","data":{"reference":"LD-20250601-123456789-1700000000000"}}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
	req.Header.Set("x-paystack-signature", "deadbeef")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaystackWebhookNoSignatureHeader(t *testing.T) {
	r := webhookRouter("whsec_test")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaystackWebhookIgnoresOtherEvents(t *testing.T) {
	const key = "whsec_test"
	r := webhookRouter(key)
	body := `{"event":"subscription.create","data":{"reference":"sub-123"}}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
	req.Header.Set("x-paystack-signature", paystack.SignBody([]byte(body), key))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaystackWebhookMalformedBodyStillAcknowledged(t *testing.T) {
	const key = "whsec_test"
	r := webhookRouter(key)
	body := `not json`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
	req.Header.Set("x-paystack-signature", paystack.SignBody([]byte(body), key))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
