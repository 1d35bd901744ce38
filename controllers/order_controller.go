package controllers

import (
	"net/http"
	"strconv"

	"checkout-service/middleware"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderController struct {
	Service *services.OrderService
	Logger  *zap.Logger
}

// GetMyOrders returns the caller's order history, newest first.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	resp, serr := oc.Service.GetUserOrders(c.Request.Context(), userID, page, limit)
	if serr != nil {
		c.JSON(serr.StatusCode, gin.H{"error": serr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetOrderByID returns one order, scoped to its owner.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, serr := oc.Service.GetOrderByID(c.Request.Context(), userID, orderID)
	if serr != nil {
		c.JSON(serr.StatusCode, gin.H{"error": serr.Message})
		return
	}

	c.JSON(http.StatusOK, order)
}
