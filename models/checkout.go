package models

import "time"

// CheckoutData is the order intent the storefront attaches to a payment as
// custom data. It comes back from the gateway as an opaque string and is
// untrusted until decoded and validated.
type CheckoutData struct {
	ProductID     string `json:"productId"`
	UserID        string `json:"userId,omitempty"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Postcode      string `json:"postcode"`
	Address       string `json:"address"`
	DetailAddress string `json:"detailAddress"`
	Message       string `json:"message,omitempty"`
}

// OrderEvent is published after an order is materialized for the first time.
type OrderEvent struct {
	Type      string    `json:"type"` // "order_paid"
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	PaymentID string    `json:"payment_id"`
	ProductID string    `json:"product_id"`
	Amount    int       `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}
