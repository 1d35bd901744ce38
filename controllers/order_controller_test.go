package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkout-service/controllers"
	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubOrderRepo struct {
	orders []models.Order
	total  int64
}

func (s *stubOrderRepo) Create(_ context.Context, _ *models.Order) error          { return nil }
func (s *stubOrderRepo) CreateItem(_ context.Context, _ *models.OrderItem) error  { return nil }
func (s *stubOrderRepo) Delete(_ context.Context, _ uuid.UUID) error              { return nil }
func (s *stubOrderRepo) FindByPaymentID(_ context.Context, _ string) (*models.Order, error) {
	return nil, nil
}
func (s *stubOrderRepo) FindByUserID(_ context.Context, _ uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	return s.orders, s.total, nil
}
func (s *stubOrderRepo) FindByIDAndUserID(_ context.Context, _, _ uuid.UUID) (*models.Order, error) {
	if len(s.orders) == 0 {
		return nil, repository.ErrOrderNotFound
	}
	return &s.orders[0], nil
}

func newOrderRouter(repo *stubOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	oc := &controllers.OrderController{
		Service: services.NewOrderService(repo, zap.NewNop()),
		Logger:  zap.NewNop(),
	}
	r := gin.New()
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	orders.GET("", oc.GetMyOrders)
	orders.GET("/:id", oc.GetOrderByID)
	return r
}

func TestGetMyOrders_ReturnsList(t *testing.T) {
	repo := &stubOrderRepo{
		orders: []models.Order{{ID: uuid.New(), Status: models.StatusPaid}},
		total:  1,
	}
	r := newOrderRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders?page=1&limit=10", nil)
	req.Header.Set("X-User-ID", uuid.New().String())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_orders":1`)
}

func TestGetMyOrders_RequiresAuth(t *testing.T) {
	r := newOrderRouter(&stubOrderRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetOrderByID_InvalidID(t *testing.T) {
	r := newOrderRouter(&stubOrderRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	req.Header.Set("X-User-ID", uuid.New().String())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
