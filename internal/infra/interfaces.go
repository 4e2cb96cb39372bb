package infra

import "context"

type CarrierClientInterface interface {
	GetRates(ctx context.Context, originPostal, destPostal string, items []ParcelItem, couriers []string) ([]CarrierRate, error)
	CreateShippingOrder(ctx context.Context, req ShippingOrderRequest) (*ShippingOrder, error)
}

var _ CarrierClientInterface = (*CarrierClient)(nil)
