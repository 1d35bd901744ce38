package controllers

import (
	"net/http"

	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// eventTransactionPaid is the only PortOne event type this service processes.
const eventTransactionPaid = "Transaction.Paid"

type WebhookController struct {
	Verifier PaymentVerifier
	Logger   *zap.Logger
}

type portOneWebhookPayload struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		PaymentID     string `json:"paymentId"`
		TransactionID string `json:"transactionId"`
		StoreID       string `json:"storeId"`
	} `json:"data"`
}

// HandlePortOneWebhook is the asynchronous entry point. The provider retries
// on non-2xx, so only retry-worthy failures (gateway or store unavailable)
// return 5xx; unprocessable payloads are acknowledged with 200 to stop the
// redelivery loop.
func (wc *WebhookController) HandlePortOneWebhook(c *gin.Context) {
	var payload portOneWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		wc.Logger.Warn("Malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "malformed payload"})
		return
	}

	if payload.Type != eventTransactionPaid {
		wc.Logger.Info("Ignoring webhook event", zap.String("type", payload.Type))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "event ignored"})
		return
	}

	if payload.Data.PaymentID == "" {
		wc.Logger.Warn("Webhook payload missing paymentId")
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "paymentId is required"})
		return
	}

	// No session on a server-to-server call; the engine recovers the buyer's
	// identity from the payment's custom data.
	order, verr := wc.Verifier.Verify(c.Request.Context(), services.VerifyInput{
		PaymentID: payload.Data.PaymentID,
	})
	if verr != nil {
		if verr.Retryable {
			wc.Logger.Error("Webhook verification failed, provider should retry",
				zap.String("payment_id", payload.Data.PaymentID),
				zap.String("code", verr.Code),
				zap.Error(verr),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": verr.Message})
			return
		}
		// Terminal: retrying cannot change the outcome, ack to stop retries.
		wc.Logger.Warn("Webhook verification terminal failure",
			zap.String("payment_id", payload.Data.PaymentID),
			zap.String("code", verr.Code),
			zap.Error(verr),
		)
		c.JSON(http.StatusOK, gin.H{"success": false, "code": verr.Code, "message": verr.Message})
		return
	}

	wc.Logger.Info("Webhook processed",
		zap.String("payment_id", payload.Data.PaymentID),
		zap.String("order_id", order.OrderID.String()),
		zap.Bool("already_processed", order.AlreadyProcessed),
	)
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": order.OrderID})
}

// WebhookHealth answers the provider's endpoint check.
func (wc *WebhookController) WebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "endpoint": "/webhooks/portone"})
}
