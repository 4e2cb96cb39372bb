package mocks

import (
	"context"

	"commerce-core/internal/domain"
	"commerce-core/internal/infra"

	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByUser(ctx context.Context, userID uint64) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) FindByCountry(ctx context.Context, countryCode string) (*domain.ShippingZone, error) {
	args := m.Called(ctx, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingZone), args.Error(1)
}

type MockCarrierClient struct {
	mock.Mock
}

func (m *MockCarrierClient) GetRates(ctx context.Context, originPostal, destPostal string, items []infra.ParcelItem, couriers []string) ([]infra.CarrierRate, error) {
	args := m.Called(ctx, originPostal, destPostal, items, couriers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]infra.CarrierRate), args.Error(1)
}

func (m *MockCarrierClient) CreateShippingOrder(ctx context.Context, req infra.ShippingOrderRequest) (*infra.ShippingOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.ShippingOrder), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}
