package services

import (
	"context"
	"errors"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryEstimate is a display-only window computed from the order's
// creation time; it narrows once the order reaches shipping and disappears
// for terminal statuses.
type DeliveryEstimate struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

type OrderView struct {
	models.Order
	EstimatedDelivery *DeliveryEstimate `json:"estimated_delivery,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderView `json:"orders"`
	Meta   MetaData    `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// OrderService serves the order history read path. Status transitions beyond
// "paid" are written by fulfillment tooling; this service only reads them.
type OrderService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orderRepo: orderRepo, logger: logger}
}

// GetUserOrders retrieves paginated orders for a specific user
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrderListResponse, *ServiceError) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	orders, total, err := s.orderRepo.FindByUserID(ctx, userUUID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}

	return &OrderListResponse{
		Orders: views,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  calculateTotalPages(total, limit),
			HasMore:     total > int64(page*limit),
		},
	}, nil
}

// GetOrderByID retrieves a specific order scoped to its owner
func (s *OrderService) GetOrderByID(ctx context.Context, userID string, orderID uuid.UUID) (*OrderView, *ServiceError) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
	}

	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userUUID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}

	view := toOrderView(order)
	return &view, nil
}

func toOrderView(order *models.Order) OrderView {
	return OrderView{
		Order:             *order,
		EstimatedDelivery: EstimateDelivery(order),
	}
}

// EstimateDelivery computes the expected delivery window: two to four days
// after order creation, narrowing to one to two once the order ships. No
// window for delivered or cancelled orders.
func EstimateDelivery(order *models.Order) *DeliveryEstimate {
	if order.Status == models.StatusDelivered || order.Status == models.StatusCancelled {
		return nil
	}

	minDays, maxDays := 2, 4
	if order.Status == models.StatusShipping {
		minDays, maxDays = 1, 2
	}

	return &DeliveryEstimate{
		Earliest: order.CreatedAt.AddDate(0, 0, minDays),
		Latest:   order.CreatedAt.AddDate(0, 0, maxDays),
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
