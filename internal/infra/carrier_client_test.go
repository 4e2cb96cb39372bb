package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"commerce-core/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestGetRates(t *testing.T) {
	srv := rateServer(t, http.StatusOK,
		`{"pricing":[{"courier_code":"jne","courier_service_code":"reg","price":"18000"}]}`)
	defer srv.Close()

	c := NewCarrierClient(srv.URL, "key", 2*time.Second)
	rates, err := c.GetRates(context.Background(), "40111", "12950", nil, nil)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "jne", rates[0].CourierCode)
}

func TestGetRatesErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "bad destination", status: http.StatusBadRequest, wantErr: domain.ErrInvalidDestination},
		{name: "rate limited is retryable", status: http.StatusTooManyRequests, wantErr: domain.ErrUpstreamUnavailable},
		{name: "server error", status: http.StatusBadGateway, wantErr: domain.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rateServer(t, tt.status, `{}`)
			defer srv.Close()

			c := NewCarrierClient(srv.URL, "key", 2*time.Second)
			_, err := c.GetRates(context.Background(), "40111", "12950", nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetRatesUnreachableUpstream(t *testing.T) {
	srv := rateServer(t, http.StatusOK, `{}`)
	srv.Close()

	c := NewCarrierClient(srv.URL, "key", 500*time.Millisecond)
	_, err := c.GetRates(context.Background(), "40111", "12950", nil, nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestCreateShippingOrder(t *testing.T) {
	srv := rateServer(t, http.StatusCreated, `{"id":"CO-7","courier":{"tracking_id":"JNE777"}}`)
	defer srv.Close()

	c := NewCarrierClient(srv.URL, "key", 2*time.Second)
	order, err := c.CreateShippingOrder(context.Background(), ShippingOrderRequest{CourierCode: "jne"})
	require.NoError(t, err)
	assert.Equal(t, "CO-7", order.OrderID)
	assert.Equal(t, "JNE777", order.TrackingID)
}
