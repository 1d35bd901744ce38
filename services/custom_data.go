package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"checkout-service/models"
)

var ErrMalformedCheckoutData = errors.New("malformed checkout data")

// DecodeCheckoutData parses the custom data string attached to a payment.
// PortOne sometimes delivers the payload JSON-encoded twice, so one re-decode
// of a string result is attempted before giving up. The payload is parsed
// only, never interpreted, and rejected outright when the product reference
// is missing.
func DecodeCheckoutData(raw string) (*models.CheckoutData, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty custom data: %w", ErrMalformedCheckoutData)
	}

	payload := raw
	var data models.CheckoutData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		// Double-encoded case: the first pass yields another JSON string.
		var inner string
		if err := json.Unmarshal([]byte(payload), &inner); err != nil {
			return nil, fmt.Errorf("decode custom data: %w", ErrMalformedCheckoutData)
		}
		if err := json.Unmarshal([]byte(inner), &data); err != nil {
			return nil, fmt.Errorf("decode custom data after re-decode: %w", ErrMalformedCheckoutData)
		}
	}

	if data.ProductID == "" {
		return nil, fmt.Errorf("custom data missing productId: %w", ErrMalformedCheckoutData)
	}
	return &data, nil
}
