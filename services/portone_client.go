package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultPortOneBaseURL = "https://api.portone.io"

// Payment statuses as reported by the PortOne API.
const (
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusPending   = "PENDING"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrProviderUnavailable covers transport failures and non-2xx responses
	// from the gateway; callers should treat it as retryable.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)

type PaymentAmount struct {
	Total    int    `json:"total"`
	Currency string `json:"currency"`
}

// CustomerName tolerates both shapes PortOne has been observed to send:
// a bare string and an object with a "full" field.
type CustomerName struct {
	Full string `json:"full"`
}

func (n *CustomerName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Full = s
		return nil
	}
	type alias CustomerName
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	n.Full = a.Full
	return nil
}

type PaymentCustomer struct {
	Name        CustomerName `json:"name"`
	PhoneNumber string       `json:"phoneNumber"`
	Email       string       `json:"email"`
}

// PaymentRecord is the gateway's authoritative record for one payment. It is
// fetched fresh on every verification attempt and never persisted.
type PaymentRecord struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	OrderName     string          `json:"orderName"`
	Status        string          `json:"status"`
	Amount        PaymentAmount   `json:"amount"`
	Customer      PaymentCustomer `json:"customer"`
	CustomData    string          `json:"customData"`
}

// PaymentGateway is the outbound contract the verification engine depends on.
type PaymentGateway interface {
	GetPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
}

type PortOneClient struct {
	baseURL   string
	apiSecret string
	client    *http.Client
}

func NewPortOneClient(apiSecret string) *PortOneClient {
	return &PortOneClient{
		baseURL:   defaultPortOneBaseURL,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewPortOneClientWithBaseURL points the client at a non-default API host.
func NewPortOneClientWithBaseURL(apiSecret, baseURL string) *PortOneClient {
	c := NewPortOneClient(apiSecret)
	c.baseURL = baseURL
	return c
}

// GetPayment fetches the payment record from PortOne. Anything other than a
// 2xx with a parseable body is an error: the engine must never guess success.
func (c *PortOneClient) GetPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	endpoint := fmt.Sprintf("%s/payments/%s", c.baseURL, url.PathEscape(paymentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "PortOne "+c.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portone request failed: %v: %w", err, ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("portone returned %d: %s: %w", resp.StatusCode, string(body), ErrProviderUnavailable)
	}

	var record PaymentRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode portone response: %v: %w", err, ErrProviderUnavailable)
	}
	return &record, nil
}
