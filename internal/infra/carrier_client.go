package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"commerce-core/internal/domain"

	"github.com/shopspring/decimal"
)

// CarrierRate is one pricing row from the aggregator's rate response.
type CarrierRate struct {
	CourierCode        string          `json:"courier_code"`
	ServiceCode        string          `json:"courier_service_code"`
	CourierName        string          `json:"courier_name"`
	ServiceName        string          `json:"courier_service_name"`
	Price              decimal.Decimal `json:"price"`
	EtaDaysMin         int             `json:"shipment_duration_min"`
	EtaDaysMax         int             `json:"shipment_duration_max"`
	AvailableInsurance bool            `json:"available_for_insurance"`
}

type ParcelItem struct {
	Name        string          `json:"name"`
	Value       decimal.Decimal `json:"value"`
	Quantity    int64           `json:"quantity"`
	WeightGrams int64           `json:"weight"`
}

type Contact struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
}

type ShippingOrderRequest struct {
	Origin      Contact      `json:"origin"`
	Destination Contact      `json:"destination"`
	CourierCode string       `json:"courier_company"`
	ServiceCode string       `json:"courier_type"`
	Items       []ParcelItem `json:"items"`
}

type ShippingOrder struct {
	OrderID    string `json:"order_id"`
	TrackingID string `json:"tracking_id"`
}

type CarrierClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewCarrierClient(baseURL, apiKey string, timeout time.Duration) *CarrierClient {
	return &CarrierClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CarrierClient) GetRates(ctx context.Context, originPostal, destPostal string, items []ParcelItem, couriers []string) ([]CarrierRate, error) {
	if c.baseURL == "" {
		return nil, domain.ErrUpstreamUnavailable
	}

	body, _ := json.Marshal(map[string]any{
		"origin_postal_code":      originPostal,
		"destination_postal_code": destPostal,
		"items":                   items,
		"couriers":                couriers,
	})

	var out struct {
		Pricing []CarrierRate `json:"pricing"`
	}
	if err := c.post(ctx, "/v1/rates/couriers", body, &out); err != nil {
		return nil, err
	}
	return out.Pricing, nil
}

func (c *CarrierClient) CreateShippingOrder(ctx context.Context, req ShippingOrderRequest) (*ShippingOrder, error) {
	if c.baseURL == "" {
		return nil, domain.ErrUpstreamUnavailable
	}

	body, _ := json.Marshal(req)

	var out struct {
		ID      string `json:"id"`
		Courier struct {
			TrackingID string `json:"tracking_id"`
		} `json:"courier"`
	}
	if err := c.post(ctx, "/v1/orders", body, &out); err != nil {
		return nil, err
	}
	return &ShippingOrder{OrderID: out.ID, TrackingID: out.Courier.TrackingID}, nil
}

func (c *CarrierClient) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, DNS failure, and client timeout all land here.
		return fmt.Errorf("carrier request failed: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusTooManyRequests:
		// Rate limiting is the upstream's problem, not the destination's.
		return fmt.Errorf("carrier api rate limited: %w", domain.ErrUpstreamUnavailable)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return domain.ErrInvalidDestination
	default:
		return fmt.Errorf("carrier api returned status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}
