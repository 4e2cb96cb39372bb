package http

import "github.com/shopspring/decimal"

type CheckoutRequest struct {
	RecipientName  string `json:"recipientName" binding:"required"`
	RecipientPhone string `json:"recipientPhone" binding:"required"`
	AddressLine    string `json:"addressLine" binding:"required"`
	City           string `json:"city" binding:"required"`
	PostalCode     string `json:"postalCode"`
	CountryCode    string `json:"countryCode" binding:"required,len=2"`

	CourierCode string `json:"courierCode"`
	ServiceCode string `json:"serviceCode"`

	PaymentMethod   string `json:"paymentMethod" binding:"required"`
	PaymentProvider string `json:"paymentProvider"`
}

type QuoteRequest struct {
	CountryCode string   `json:"countryCode" binding:"required,len=2"`
	PostalCode  string   `json:"postalCode"`
	WeightGrams int64    `json:"weightGrams" binding:"required,min=1"`
	Couriers    []string `json:"couriers"`
}

type TransitionRequest struct {
	Target          string `json:"target" binding:"required"`
	TrackingNumber  string `json:"trackingNumber"`
	PaymentMethod   string `json:"paymentMethod"`
	PaymentProvider string `json:"paymentProvider"`
	PaymentRef      string `json:"paymentRef"`
}

// CarrierWebhookPayload mirrors the aggregator's status push body.
type CarrierWebhookPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Courier struct {
		TrackingID string `json:"tracking_id"`
	} `json:"courier"`
}

type QuoteResponse struct {
	ShippingType string          `json:"shippingType"`
	Options      any             `json:"options,omitempty"`
	Zone         string          `json:"zone,omitempty"`
	Cost         decimal.Decimal `json:"cost,omitempty"`
	EtaDaysMin   int             `json:"etaDaysMin,omitempty"`
	EtaDaysMax   int             `json:"etaDaysMax,omitempty"`
}
