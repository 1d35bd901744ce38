package controllers

import (
	"context"
	"net/http"

	"checkout-service/middleware"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentVerifier is the engine contract both entry points share.
type PaymentVerifier interface {
	Verify(ctx context.Context, in services.VerifyInput) (*services.VerifiedOrder, *services.VerificationError)
}

type PaymentController struct {
	Verifier PaymentVerifier
	Logger   *zap.Logger
}

type verifyRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	// OrderToken is the client-chosen token sent by older storefront builds.
	// It is accepted for compatibility but the payment ID is the only
	// deduplication key.
	OrderToken string `json:"order_token"`
}

// VerifyPayment is the client-confirmation entry point, called when the buyer
// returns from the payment widget. The amount and status reported by the
// browser are ignored; the engine re-fetches the gateway record itself.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)

	order, verr := pc.Verifier.Verify(c.Request.Context(), services.VerifyInput{
		PaymentID: req.PaymentID,
		UserID:    userID,
	})
	if verr != nil {
		c.JSON(statusForVerificationError(verr), gin.H{
			"success": false,
			"code":    verr.Code,
			"message": verr.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// statusForVerificationError maps engine error codes to HTTP statuses.
// Retryable failures become 5xx so the caller knows another attempt may
// succeed; terminal ones get a 4xx that should not be retried.
func statusForVerificationError(verr *services.VerificationError) int {
	if verr.Retryable {
		if verr.Code == services.CodeProviderUnavailable {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
	switch verr.Code {
	case services.CodeUnauthenticated:
		return http.StatusUnauthorized
	case services.CodeProductNotFound:
		return http.StatusNotFound
	case services.CodeOutOfStock:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
