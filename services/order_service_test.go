package services_test

import (
	"context"
	"testing"
	"time"

	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetUserOrders_PaginationMeta(t *testing.T) {
	orders := make([]models.Order, 10)
	for i := range orders {
		orders[i] = models.Order{ID: uuid.New(), UserID: testUserID, Status: models.StatusPaid}
	}

	repo := &mockOrderRepo{orders: orders, total: 25}
	svc := services.NewOrderService(repo, zap.NewNop())

	resp, serr := svc.GetUserOrders(context.Background(), testUserID.String(), 1, 10)

	require.Nil(t, serr)
	assert.Len(t, resp.Orders, 10)
	assert.Equal(t, int64(25), resp.Meta.TotalOrders)
	assert.Equal(t, int64(3), resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasMore)
}

func TestGetUserOrders_InvalidUserID(t *testing.T) {
	svc := services.NewOrderService(&mockOrderRepo{}, zap.NewNop())

	resp, serr := svc.GetUserOrders(context.Background(), "not-a-uuid", 1, 10)

	assert.Nil(t, resp)
	require.NotNil(t, serr)
	assert.Equal(t, 400, serr.StatusCode)
}

func TestGetOrderByID_NotFound(t *testing.T) {
	repo := &mockOrderRepo{byIDErr: repository.ErrOrderNotFound}
	svc := services.NewOrderService(repo, zap.NewNop())

	order, serr := svc.GetOrderByID(context.Background(), testUserID.String(), uuid.New())

	assert.Nil(t, order)
	require.NotNil(t, serr)
	assert.Equal(t, 404, serr.StatusCode)
}

func TestEstimateDelivery(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("paid orders get a two to four day window", func(t *testing.T) {
		est := services.EstimateDelivery(&models.Order{Status: models.StatusPaid, CreatedAt: created})
		require.NotNil(t, est)
		assert.Equal(t, created.AddDate(0, 0, 2), est.Earliest)
		assert.Equal(t, created.AddDate(0, 0, 4), est.Latest)
	})

	t.Run("window narrows once shipping", func(t *testing.T) {
		est := services.EstimateDelivery(&models.Order{Status: models.StatusShipping, CreatedAt: created})
		require.NotNil(t, est)
		assert.Equal(t, created.AddDate(0, 0, 1), est.Earliest)
		assert.Equal(t, created.AddDate(0, 0, 2), est.Latest)
	})

	t.Run("no window for terminal statuses", func(t *testing.T) {
		assert.Nil(t, services.EstimateDelivery(&models.Order{Status: models.StatusDelivered, CreatedAt: created}))
		assert.Nil(t, services.EstimateDelivery(&models.Order{Status: models.StatusCancelled, CreatedAt: created}))
	})
}

func TestCanTransition(t *testing.T) {
	assert.True(t, models.CanTransition(models.StatusPaid, models.StatusShipping))
	assert.True(t, models.CanTransition(models.StatusPaid, models.StatusCancelled))
	assert.True(t, models.CanTransition(models.StatusShipping, models.StatusDelivered))
	assert.True(t, models.CanTransition(models.StatusShipping, models.StatusCancelled))
	assert.False(t, models.CanTransition(models.StatusDelivered, models.StatusShipping))
	assert.False(t, models.CanTransition(models.StatusCancelled, models.StatusPaid))
	assert.False(t, models.CanTransition(models.StatusPaid, models.StatusDelivered))
}
