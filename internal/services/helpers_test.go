package services

import (
	"context"
	"time"

	"commerce-core/internal/config"
	"commerce-core/internal/domain"
	"commerce-core/internal/mocks"
	"commerce-core/internal/shipping"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockQuoter stands in for the shipping resolver. It cannot live in the shared
// mocks package: its signature imports the shipping package, and the resolver's
// own tests import mocks, which would cycle.
type MockQuoter struct {
	mock.Mock
}

func (m *MockQuoter) Quote(ctx context.Context, dest shipping.Destination, weightGrams int64, preferredCarriers []string) (*shipping.Quote, error) {
	args := m.Called(ctx, dest, weightGrams, preferredCarriers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Quote), args.Error(1)
}

func testConfig() config.Config {
	return config.Config{
		CarrierTimeout:      5 * time.Second,
		OriginPostalCode:    "40111",
		OriginContactName:   "Warehouse",
		DomesticCountryCode: "ID",
		Currency:            "IDR",
		TaxRate:             0.11,
		PaymentTimeout:      24 * time.Hour,
		AutoCompleteBase:    7 * 24 * time.Hour,
		ExpiryInterval:      time.Hour,
		CompleteInterval:    24 * time.Hour,
		SweepConcurrency:    4,
		SweepBatchSize:      100,
	}
}

type testEnv struct {
	store   *mocks.FakeOrderStore
	carts   *mocks.MockCartRepository
	quoter  *MockQuoter
	carrier *mocks.MockCarrierClient
	pub     *mocks.MockPublisher
	service *OrderService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:   mocks.NewFakeOrderStore(),
		carts:   new(mocks.MockCartRepository),
		quoter:  new(MockQuoter),
		carrier: new(mocks.MockCarrierClient),
		pub:     new(mocks.MockPublisher),
	}
	env.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	env.service = NewOrderService(env.store, env.carts, env.quoter, env.carrier, env.pub, testConfig())
	return env
}

// testCart builds a single-variant cart with products and variants preloaded
// the way the cart repository returns them.
func testCart(variantID uint64, quantity, stock int64, unitPrice int64) *domain.Cart {
	product := &domain.Product{ID: 10, Name: "Batik Shirt", Active: true}
	variant := &domain.ProductVariant{
		ID:          variantID,
		ProductID:   10,
		Name:        "Navy / L",
		SKU:         "BTK-NVY-L",
		Price:       decimal.NewFromInt(unitPrice),
		Stock:       stock,
		WeightGrams: 400,
		Active:      true,
	}
	return &domain.Cart{
		ID:     77,
		UserID: 42,
		Items: []domain.CartItem{{
			ID:        1,
			CartID:    77,
			ProductID: product.ID,
			VariantID: variantID,
			Quantity:  quantity,
			Product:   product,
			Variant:   variant,
		}},
	}
}

func seedOrder(store *mocks.FakeOrderStore, status domain.OrderStatus, mods ...func(*domain.Order)) *domain.Order {
	o := &domain.Order{
		OrderNumber:  "ORD-TEST-" + string(status),
		UserID:       42,
		Status:       status,
		Currency:     "IDR",
		Subtotal:     decimal.NewFromInt(300000),
		Discount:     decimal.Zero,
		Tax:          decimal.NewFromInt(33000),
		ShippingCost: decimal.NewFromInt(18000),
		Total:        decimal.NewFromInt(351000),
		ShippingType: domain.ShippingDomestic,
		CountryCode:  "ID",
		CourierCode:  "jne",
		ServiceCode:  "reg",
		CreatedAt:    time.Now(),
		Items: []domain.OrderItem{{
			ProductID:   10,
			VariantID:   100,
			ProductName: "Batik Shirt",
			SKU:         "BTK-NVY-L",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(150000),
			Discount:    decimal.Zero,
			Subtotal:    decimal.NewFromInt(300000),
		}},
	}
	for _, mod := range mods {
		mod(o)
	}
	return store.Put(o)
}
