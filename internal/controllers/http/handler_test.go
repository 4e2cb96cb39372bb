package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"commerce-core/internal/config"
	"commerce-core/internal/domain"
	"commerce-core/internal/mocks"
	"commerce-core/internal/services"
	"commerce-core/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// stubQuoter satisfies the service's quoter dependency; no route under test
// requests a quote through it.
type stubQuoter struct{}

func (stubQuoter) Quote(context.Context, shipping.Destination, int64, []string) (*shipping.Quote, error) {
	return nil, domain.ErrNoOptionsFound
}

func newTestRouter(store *mocks.FakeOrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	carts := new(mocks.MockCartRepository)
	quoter := stubQuoter{}
	carrier := new(mocks.MockCarrierClient)
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := config.Config{DomesticCountryCode: "ID", Currency: "IDR", TaxRate: 0.11}
	service := services.NewOrderService(store, carts, quoter, carrier, pub, cfg)
	scheduler := services.NewScheduler(service, store)

	zones := new(mocks.MockZoneRepository)
	zones.On("FindByCountry", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	resolver := shipping.NewResolver(zones, carrier, "40111", "ID")

	r := gin.New()
	NewHandler(service, scheduler, resolver).RegisterRoutes(r)
	return r
}

func TestCarrierWebhookAlwaysAcknowledges(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "unknown order",
			body: `{"order_id":"EXT-MISSING","status":"delivered","courier":{"tracking_id":"X"}}`,
		},
		{
			name: "unknown status",
			body: `{"order_id":"EXT-1","status":"teleported"}`,
		},
		{
			name: "malformed payload",
			body: `{"order_id":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(mocks.NewFakeOrderStore())

			req := httptest.NewRequest(http.MethodPost, "/webhooks/carrier", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, "webhook sender must never see a retryable status")
		})
	}
}

func TestGetOrderNotFound(t *testing.T) {
	router := newTestRouter(mocks.NewFakeOrderStore())

	req := httptest.NewRequest(http.MethodGet, "/orders/ORD-NOPE", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransitionConflictMapsTo409(t *testing.T) {
	store := mocks.NewFakeOrderStore()
	order := &domain.Order{OrderNumber: "ORD-1", Status: domain.StatusPending}
	store.Put(order)

	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/orders/ORD-1/status",
		strings.NewReader(`{"target":"SHIPPED","trackingNumber":"JNE123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutRequiresUser(t *testing.T) {
	router := newTestRouter(mocks.NewFakeOrderStore())

	body := `{"recipientName":"Budi","recipientPhone":"+62811","addressLine":"Jl. Merdeka 1","city":"Jakarta","countryCode":"ID","paymentMethod":"va"}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
