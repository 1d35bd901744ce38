package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkout-service/controllers"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubVerifier struct {
	order  *services.VerifiedOrder
	verr   *services.VerificationError
	called bool
	input  services.VerifyInput
}

func (s *stubVerifier) Verify(_ context.Context, in services.VerifyInput) (*services.VerifiedOrder, *services.VerificationError) {
	s.called = true
	s.input = in
	return s.order, s.verr
}

func newWebhookRouter(v controllers.PaymentVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	wc := &controllers.WebhookController{Verifier: v, Logger: zap.NewNop()}
	r := gin.New()
	r.POST("/webhooks/portone", wc.HandlePortOneWebhook)
	r.GET("/webhooks/portone", wc.WebhookHealth)
	return r
}

func postWebhook(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/portone", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook_IgnoresOtherEventTypes(t *testing.T) {
	v := &stubVerifier{}
	r := newWebhookRouter(v)

	for _, eventType := range []string{"Transaction.Failed", "Transaction.Cancelled", "Transaction.Ready"} {
		w := postWebhook(r, `{"type":"`+eventType+`","data":{"paymentId":"pay_1"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, v.called, "verifier must not run for %s", eventType)
	}
}

func TestWebhook_MissingPaymentIDAcked(t *testing.T) {
	v := &stubVerifier{}
	r := newWebhookRouter(v)

	w := postWebhook(r, `{"type":"Transaction.Paid","data":{}}`)

	// Unprocessable, but a retry cannot fix it: ack with 200.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, v.called)
}

func TestWebhook_MalformedBodyAcked(t *testing.T) {
	v := &stubVerifier{}
	r := newWebhookRouter(v)

	w := postWebhook(r, `{not json`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, v.called)
}

func TestWebhook_RetryableFailureReturns500(t *testing.T) {
	v := &stubVerifier{verr: &services.VerificationError{
		Code:      services.CodeProviderUnavailable,
		Message:   "failed to fetch payment from provider",
		Retryable: true,
	}}
	r := newWebhookRouter(v)

	w := postWebhook(r, `{"type":"Transaction.Paid","data":{"paymentId":"pay_1"}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhook_TerminalFailureAcked(t *testing.T) {
	v := &stubVerifier{verr: &services.VerificationError{
		Code:    services.CodeAmountMismatch,
		Message: "payment amount does not match product price",
	}}
	r := newWebhookRouter(v)

	w := postWebhook(r, `{"type":"Transaction.Paid","data":{"paymentId":"pay_1"}}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}

func TestWebhook_Success(t *testing.T) {
	v := &stubVerifier{order: &services.VerifiedOrder{
		OrderID:   uuid.New(),
		PaymentID: "pay_1",
		Status:    "paid",
	}}
	r := newWebhookRouter(v)

	w := postWebhook(r, `{"type":"Transaction.Paid","data":{"paymentId":"pay_1"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, v.called)
	assert.Equal(t, "pay_1", v.input.PaymentID)
	assert.Empty(t, v.input.UserID, "webhook path has no session identity")
}

func TestWebhook_HealthEndpoint(t *testing.T) {
	r := newWebhookRouter(&stubVerifier{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhooks/portone", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
