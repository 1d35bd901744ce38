package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. This service only ever writes StatusPaid; later transitions
// are performed by fulfillment tooling.
const (
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusShipping       = "shipping"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// validTransitions encodes the forward-only order lifecycle:
// paid -> shipping -> delivered, with cancelled reachable from paid or shipping.
var validTransitions = map[string][]string{
	StatusPaid:     {StatusShipping, StatusCancelled},
	StatusShipping: {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	// PaymentID is the gateway's payment reference and the idempotency key:
	// the unique index is what serializes racing inserts for one payment.
	PaymentID     string `gorm:"uniqueIndex;not null" json:"payment_id"`
	PaymentMethod string `gorm:"type:varchar(20);not null;default:'card'" json:"payment_method"`
	PaymentAmount int    `gorm:"not null" json:"payment_amount"`
	TotalAmount   int    `gorm:"not null" json:"total_amount"`

	Status string `gorm:"type:varchar(20);not null;default:'paid'" json:"status"`

	RecipientName   string  `gorm:"not null" json:"recipient_name"`
	RecipientPhone  string  `gorm:"not null" json:"recipient_phone"`
	ShippingAddress string  `gorm:"not null" json:"shipping_address"`
	ShippingZipcode string  `gorm:"type:varchar(10);not null" json:"shipping_zipcode"`
	ShippingMemo    *string `json:"shipping_memo,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
}

// OrderItem is a snapshot of the product at order time. Name, image and price
// must never be recomputed from the live product row.
type OrderItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    string    `gorm:"not null" json:"product_id"`
	ProductName  string    `gorm:"not null" json:"product_name"`
	ProductImage *string   `json:"product_image,omitempty"`
	Price        int       `gorm:"not null" json:"price"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Subtotal     int       `gorm:"not null" json:"subtotal"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
