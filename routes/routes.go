package routes

import (
	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.Engine,
	pc *controllers.PaymentController,
	wc *controllers.WebhookController,
	oc *controllers.OrderController,
) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	payments.POST("/verify", pc.VerifyPayment)

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	orders.GET("", oc.GetMyOrders)
	orders.GET("/:id", oc.GetOrderByID)

	// PortOne webhook (no auth, server-to-server)
	r.POST("/webhooks/portone", wc.HandlePortOneWebhook)
	r.GET("/webhooks/portone", wc.WebhookHealth)
}
