package services_test

import (
	"testing"

	"checkout-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCheckoutData_SingleEncoded(t *testing.T) {
	raw := `{"productId":"prod_1","name":"홍길동","phone":"010-1234-5678","postcode":"12345","address":"제주시 첨단로 242","detailAddress":"101동"}`

	data, err := services.DecodeCheckoutData(raw)

	require.NoError(t, err)
	assert.Equal(t, "prod_1", data.ProductID)
	assert.Equal(t, "홍길동", data.Name)
	assert.Equal(t, "010-1234-5678", data.Phone)
	assert.Equal(t, "101동", data.DetailAddress)
}

func TestDecodeCheckoutData_DoubleEncoded(t *testing.T) {
	// PortOne occasionally delivers the payload JSON-encoded twice.
	raw := `"{\"productId\":\"prod_1\",\"name\":\"홍길동\",\"userId\":\"a6e3c1de-0000-4000-8000-000000000001\"}"`

	data, err := services.DecodeCheckoutData(raw)

	require.NoError(t, err)
	assert.Equal(t, "prod_1", data.ProductID)
	assert.Equal(t, "a6e3c1de-0000-4000-8000-000000000001", data.UserID)
}

func TestDecodeCheckoutData_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "not-json-at-all"},
		{"double-encoded garbage", `"still not json"`},
		{"triple-encoded", `"\"{\\\"productId\\\":\\\"prod_1\\\"}\""`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := services.DecodeCheckoutData(tc.raw)
			assert.Nil(t, data)
			assert.ErrorIs(t, err, services.ErrMalformedCheckoutData)
		})
	}
}

func TestDecodeCheckoutData_MissingProductID(t *testing.T) {
	data, err := services.DecodeCheckoutData(`{"name":"홍길동","phone":"010-1234-5678"}`)

	assert.Nil(t, data)
	assert.ErrorIs(t, err, services.ErrMalformedCheckoutData)
}
