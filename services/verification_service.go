package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"checkout-service/aws"
	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error codes surfaced by the verification engine. Controllers map these to
// HTTP statuses; Retryable decides whether the caller (buyer reload or
// provider webhook redelivery) should try again.
const (
	CodeUnauthenticated        = "unauthenticated"
	CodeProviderUnavailable    = "provider_unavailable"
	CodeNotYetPaid             = "not_yet_paid"
	CodeMalformedOrderData     = "malformed_order_data"
	CodeProductNotFound        = "product_not_found"
	CodeAmountMismatch         = "amount_mismatch"
	CodeOutOfStock             = "out_of_stock"
	CodeOrderPersistenceFailed = "order_persistence_failed"
	CodeStockDecrementFailed   = "stock_decrement_failed"
)

type VerificationError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *VerificationError) Unwrap() error { return e.Err }

// VerifyInput carries what an entry point knows about the attempt. UserID is
// set on the client path (session identity); the webhook path leaves it empty
// and identity is recovered from the payment's custom data.
type VerifyInput struct {
	PaymentID string
	UserID    string
}

type ShippingInfo struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Postcode      string `json:"postcode"`
	Address       string `json:"address"`
	DetailAddress string `json:"detail_address,omitempty"`
	Memo          string `json:"memo,omitempty"`
}

// VerifiedOrder is the summary returned to both entry points. AlreadyProcessed
// marks attempts resolved by duplicate detection rather than a fresh insert.
type VerifiedOrder struct {
	OrderID          uuid.UUID    `json:"order_id"`
	PaymentID        string       `json:"payment_id"`
	ProductID        string       `json:"product_id"`
	ProductName      string       `json:"product_name"`
	Amount           int          `json:"amount"`
	Status           string       `json:"status"`
	Shipping         ShippingInfo `json:"shipping"`
	AlreadyProcessed bool         `json:"already_processed,omitempty"`
}

// OrderEventSender publishes order events to Kafka.
type OrderEventSender interface {
	SendOrderEvent(evt models.OrderEvent) error
}

const orderQuantity = 1 // single-item checkout

// Shipping fallbacks when neither custom data nor the gateway customer record
// carries a value, matching what order views expect for legacy rows.
const (
	fallbackRecipient = "알 수 없음"
	fallbackAddress   = "주소 없음"
	fallbackZipcode   = "00000"
)

// VerificationService is the single authoritative payment verification and
// order finalization procedure, shared by the client-confirmation and webhook
// entry points.
type VerificationService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     PaymentGateway
	producer    OrderEventSender
	snsClient   aws.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewVerificationService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	gateway PaymentGateway,
	producer OrderEventSender,
	snsClient aws.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// Verify runs the full verification procedure for one payment. It is safe to
// call any number of times, concurrently or sequentially, for the same
// payment ID: the unique index on orders.payment_id guarantees at most one
// order is materialized, and every later attempt converges on that order.
func (s *VerificationService) Verify(ctx context.Context, in VerifyInput) (*VerifiedOrder, *VerificationError) {
	if in.PaymentID == "" {
		return nil, &VerificationError{
			Code:    CodeMalformedOrderData,
			Message: "payment ID is required",
		}
	}

	log := s.logger.With(zap.String("payment_id", in.PaymentID))

	// Duplicate detection comes first: a payment that already materialized an
	// order resolves to that order no matter how product price or stock has
	// moved since, and without another provider round trip.
	existing, err := s.orderRepo.FindByPaymentID(ctx, in.PaymentID)
	if err == nil {
		log.Info("Payment already processed", zap.String("order_id", existing.ID.String()))
		return summarize(existing, true), nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		log.Error("Duplicate lookup failed", zap.Error(err))
		return nil, &VerificationError{
			Code:      CodeOrderPersistenceFailed,
			Message:   "failed to check for existing order",
			Retryable: true,
			Err:       err,
		}
	}

	// Fetch the authoritative payment record. Client-supplied amount or
	// status is never trusted.
	payment, err := s.gateway.GetPayment(ctx, in.PaymentID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			log.Warn("Payment not found at gateway")
			return nil, &VerificationError{
				Code:    CodeMalformedOrderData,
				Message: "payment not found",
				Err:     err,
			}
		}
		log.Error("Gateway fetch failed", zap.Error(err))
		return nil, &VerificationError{
			Code:      CodeProviderUnavailable,
			Message:   "failed to fetch payment from provider",
			Retryable: true,
			Err:       err,
		}
	}

	// Non-paid statuses are expected intermediate states, not faults. The
	// provider may call back again once the payment completes.
	if payment.Status != PaymentStatusPaid {
		log.Info("Payment not completed", zap.String("status", payment.Status))
		return nil, &VerificationError{
			Code:    CodeNotYetPaid,
			Message: "payment not completed (status: " + payment.Status + ")",
		}
	}

	data, err := DecodeCheckoutData(payment.CustomData)
	if err != nil {
		log.Warn("Malformed custom data", zap.Error(err), zap.String("raw", payment.CustomData))
		return nil, &VerificationError{
			Code:    CodeMalformedOrderData,
			Message: "order data could not be decoded",
			Err:     err,
		}
	}

	// Identity: session on the client path, custom data on the webhook path.
	rawUserID := in.UserID
	if rawUserID == "" {
		rawUserID = data.UserID
	}
	if rawUserID == "" {
		log.Warn("No principal available for verification")
		return nil, &VerificationError{
			Code:    CodeUnauthenticated,
			Message: "authentication required",
		}
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		log.Warn("Invalid user ID", zap.String("user_id", rawUserID))
		return nil, &VerificationError{
			Code:    CodeUnauthenticated,
			Message: "invalid user identity",
			Err:     err,
		}
	}

	product, err := s.productRepo.FindByID(ctx, data.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			log.Warn("Product not found", zap.String("product_id", data.ProductID))
			return nil, &VerificationError{
				Code:    CodeProductNotFound,
				Message: "product not found",
				Err:     err,
			}
		}
		log.Error("Product lookup failed", zap.Error(err))
		return nil, &VerificationError{
			Code:      CodeOrderPersistenceFailed,
			Message:   "failed to look up product",
			Retryable: true,
			Err:       err,
		}
	}

	// The paid amount must exactly match the current price; a mismatch means
	// the displayed price was tampered with before payment initiation.
	if payment.Amount.Total != product.Price {
		log.Warn("Payment amount mismatch",
			zap.Int("paid", payment.Amount.Total),
			zap.Int("price", product.Price),
			zap.String("product_id", product.ID),
		)
		return nil, &VerificationError{
			Code:    CodeAmountMismatch,
			Message: "payment amount does not match product price",
		}
	}

	if product.Stock < orderQuantity || !product.IsAvailable {
		log.Warn("Product out of stock",
			zap.String("product_id", product.ID),
			zap.Int("stock", product.Stock),
			zap.Bool("is_available", product.IsAvailable),
		)
		return nil, &VerificationError{
			Code:    CodeOutOfStock,
			Message: "product is out of stock",
		}
	}

	now := time.Now()
	order := &models.Order{
		UserID:          userID,
		PaymentID:       in.PaymentID,
		PaymentMethod:   "card",
		PaymentAmount:   payment.Amount.Total,
		TotalAmount:     payment.Amount.Total,
		Status:          models.StatusPaid,
		RecipientName:   firstNonEmpty(data.Name, payment.Customer.Name.Full, fallbackRecipient),
		RecipientPhone:  firstNonEmpty(data.Phone, payment.Customer.PhoneNumber, fallbackRecipient),
		ShippingAddress: firstNonEmpty(strings.TrimSpace(data.Address+" "+data.DetailAddress), fallbackAddress),
		ShippingZipcode: firstNonEmpty(data.Postcode, fallbackZipcode),
		PaidAt:          &now,
	}
	if data.Message != "" {
		order.ShippingMemo = &data.Message
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			// Lost the insert race; the winner's order is authoritative.
			log.Info("Concurrent request already materialized order")
			winner, ferr := s.orderRepo.FindByPaymentID(ctx, in.PaymentID)
			if ferr != nil {
				log.Error("Failed to fetch winning order after duplicate insert", zap.Error(ferr))
				return nil, &VerificationError{
					Code:      CodeOrderPersistenceFailed,
					Message:   "failed to load existing order",
					Retryable: true,
					Err:       ferr,
				}
			}
			return summarize(winner, true), nil
		}
		log.Error("Order insert failed", zap.Error(err))
		return nil, &VerificationError{
			Code:      CodeOrderPersistenceFailed,
			Message:   "failed to save order",
			Retryable: true,
			Err:       err,
		}
	}

	// Best-effort: the order is already committed, a missing line item is the
	// lesser inconsistency and gets reconciled manually.
	item := &models.OrderItem{
		OrderID:      order.ID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.ImageURL,
		Price:        product.Price,
		Quantity:     orderQuantity,
		Subtotal:     product.Price * orderQuantity,
	}
	if err := s.orderRepo.CreateItem(ctx, item); err != nil {
		log.Error("Order item insert failed, order kept",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	} else {
		order.OrderItems = []models.OrderItem{*item}
	}

	if err := s.productRepo.DecrementStock(ctx, product.ID, orderQuantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			// Sold out between the stock check and the decrement. The buyer
			// already paid, so the order stands; flagged for reconciliation.
			log.Warn("Stock exhausted after order commit, order kept",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", product.ID),
			)
		} else {
			log.Error("Stock decrement failed, rolling back order",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
			if derr := s.orderRepo.Delete(ctx, order.ID); derr != nil {
				log.Error("Compensating order delete failed, manual reconciliation needed",
					zap.String("order_id", order.ID.String()),
					zap.Error(derr),
				)
			}
			return nil, &VerificationError{
				Code:      CodeStockDecrementFailed,
				Message:   "failed to update stock",
				Retryable: true,
				Err:       err,
			}
		}
	}

	s.publishOrderPaid(ctx, order, product.ID)

	log.Info("Payment verified and order created",
		zap.String("order_id", order.ID.String()),
		zap.Int("amount", order.TotalAmount),
	)
	result := summarize(order, false)
	// The product is in scope on a fresh order; don't let a failed line-item
	// insert blank the summary.
	result.ProductID = product.ID
	result.ProductName = product.Name
	return result, nil
}

// publishOrderPaid fans the event out to Kafka and, when configured, SNS.
// Both are best-effort; a failed publish never fails the verification.
func (s *VerificationService) publishOrderPaid(ctx context.Context, order *models.Order, productID string) {
	evt := models.OrderEvent{
		Type:      "order_paid",
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		PaymentID: order.PaymentID,
		ProductID: productID,
		Amount:    order.TotalAmount,
		Currency:  "KRW",
		Timestamp: time.Now().UTC(),
	}

	if s.producer != nil {
		if err := s.producer.SendOrderEvent(evt); err != nil {
			s.logger.Error("Failed to publish order event to Kafka",
				zap.String("order_id", evt.OrderID),
				zap.Error(err),
			)
		}
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		data, err := json.Marshal(evt)
		if err == nil {
			if err := s.snsClient.Publish(ctx, s.snsTopicArn, data); err != nil {
				s.logger.Warn("SNS publish failed",
					zap.String("order_id", evt.OrderID),
					zap.Error(err),
				)
			}
		}
	}
}

func summarize(order *models.Order, alreadyProcessed bool) *VerifiedOrder {
	v := &VerifiedOrder{
		OrderID:   order.ID,
		PaymentID: order.PaymentID,
		Amount:    order.TotalAmount,
		Status:    order.Status,
		Shipping: ShippingInfo{
			Name:     order.RecipientName,
			Phone:    order.RecipientPhone,
			Postcode: order.ShippingZipcode,
			Address:  order.ShippingAddress,
		},
		AlreadyProcessed: alreadyProcessed,
	}
	if order.ShippingMemo != nil {
		v.Shipping.Memo = *order.ShippingMemo
	}
	if len(order.OrderItems) > 0 {
		v.ProductID = order.OrderItems[0].ProductID
		v.ProductName = order.OrderItems[0].ProductName
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
