package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"commerce-core/internal/config"
	"commerce-core/internal/domain"
	"commerce-core/internal/infra"
	rabbit "commerce-core/internal/infra/rabbitmq"
	"commerce-core/internal/metrics"
	"commerce-core/internal/pricing"
	"commerce-core/internal/repository"
	"commerce-core/internal/shipping"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrCarrierOrderNotApplicable rejects a manual carrier-order retry on an
// order that is international, unpaid, or already settled.
var ErrCarrierOrderNotApplicable = errors.New("carrier order not applicable for this order")

// ShippingQuoter is the slice of the shipping resolver the order service needs.
type ShippingQuoter interface {
	Quote(ctx context.Context, dest shipping.Destination, weightGrams int64, preferredCarriers []string) (*shipping.Quote, error)
}

// InvoiceAssigner hands out invoice numbers; called at most once per order, on
// the first transition into PAID.
type InvoiceAssigner interface {
	AssignInvoiceNumber(ctx context.Context, orderNumber string) (string, error)
}

type uuidInvoiceAssigner struct{}

func (uuidInvoiceAssigner) AssignInvoiceNumber(_ context.Context, _ string) (string, error) {
	return "INV-" + strings.ToUpper(uuid.NewString()[:13]), nil
}

type OrderService struct {
	orders       repository.OrderRepository
	carts        repository.CartRepository
	quoter       ShippingQuoter
	carrier      infra.CarrierClientInterface
	publisher    rabbit.PublisherInterface
	invoices     InvoiceAssigner
	redisClient  *redis.Client
	orderMetrics *metrics.OrderMetrics
	cfg          config.Config
	now          func() time.Time
}

func NewOrderService(orders repository.OrderRepository, carts repository.CartRepository, quoter ShippingQuoter, carrier infra.CarrierClientInterface, pub rabbit.PublisherInterface, cfg config.Config) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		quoter:    quoter,
		carrier:   carrier,
		publisher: pub,
		invoices:  uuidInvoiceAssigner{},
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *OrderService) SetMetrics(m *metrics.OrderMetrics) {
	s.orderMetrics = m
}

func (s *OrderService) SetInvoiceAssigner(a InvoiceAssigner) {
	s.invoices = a
}

// CheckoutInput carries everything the checkout request supplies on top of the
// stored cart.
type CheckoutInput struct {
	RecipientName  string
	RecipientPhone string
	AddressLine    string
	City           string
	PostalCode     string
	CountryCode    string

	// Chosen domestic option; ignored for international destinations.
	CourierCode string
	ServiceCode string

	PaymentMethod   string
	PaymentProvider string
}

// CreateOrder turns the user's cart into a PENDING order. Validation and
// pricing happen up front; the order insert, item inserts, stock decrements
// and cart clear commit atomically in the repository.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint64, input CheckoutInput) (*domain.Order, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	now := s.now()
	var totalWeight int64
	lines := make([]pricing.LineInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		if !item.Product.Available() {
			return nil, domain.ErrProductUnavailable
		}
		if !item.Variant.Available() {
			return nil, domain.ErrProductUnavailable
		}
		if item.Variant.Stock < item.Quantity {
			return nil, &domain.InsufficientStockError{
				VariantID: item.VariantID,
				SKU:       item.Variant.SKU,
				Requested: item.Quantity,
				Available: item.Variant.Stock,
			}
		}

		promo := decimal.Zero
		if item.Product.Promotion.ActiveAt(now) {
			promo = item.Product.Promotion.DiscountFraction
		}
		lines = append(lines, pricing.LineInput{
			UnitPrice:     item.Variant.Price,
			Quantity:      item.Quantity,
			PromoFraction: promo,
		})
		totalWeight += item.Variant.WeightGrams * item.Quantity
	}

	quote, err := s.quoter.Quote(ctx, shipping.Destination{
		CountryCode: input.CountryCode,
		PostalCode:  input.PostalCode,
	}, totalWeight, preferredCarriers(input))
	if err != nil {
		return nil, err
	}

	shippingCost, chosen, zoneID, err := pickShipping(quote, input)
	if err != nil {
		return nil, err
	}

	taxRate := decimal.NewFromFloat(s.cfg.TaxRate)
	totals := pricing.ComputeTotals(lines, shippingCost, taxRate, s.cfg.Currency)

	order := &domain.Order{
		OrderNumber:  "ORD-" + strings.ToUpper(uuid.NewString()[:18]),
		UserID:       userID,
		Status:       domain.StatusPending,
		Currency:     s.cfg.Currency,
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discount,
		Tax:          totals.Tax,
		ShippingCost: totals.ShippingCost,
		Total:        totals.Total,

		ShippingType:   quote.Type,
		RecipientName:  input.RecipientName,
		RecipientPhone: input.RecipientPhone,
		AddressLine:    input.AddressLine,
		City:           input.City,
		PostalCode:     input.PostalCode,
		CountryCode:    strings.ToUpper(input.CountryCode),
		CourierCode:    chosen.CarrierCode,
		ServiceCode:    chosen.ServiceCode,
		ZoneID:         zoneID,

		PaymentMethod:   input.PaymentMethod,
		PaymentProvider: input.PaymentProvider,
	}

	for i, item := range cart.Items {
		line := totals.Lines[i]
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Product.Name,
			VariantName: item.Variant.Name,
			SKU:         item.Variant.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.Variant.Price,
			Discount:    line.Discount,
			Subtotal:    line.Net,
		})
	}

	if err := s.orders.CreateWithItems(ctx, order, cart.ID); err != nil {
		return nil, err
	}

	go s.publishStatusEvent(context.Background(), order, "order.created")

	return order, nil
}

func preferredCarriers(input CheckoutInput) []string {
	if input.CourierCode == "" {
		return nil
	}
	return []string{input.CourierCode}
}

// pickShipping selects the quoted cost matching the caller's choice. Domestic
// checkouts must name an option present in the ranked list (the cheapest one
// when nothing is named); international checkouts take the zone quote.
func pickShipping(quote *shipping.Quote, input CheckoutInput) (decimal.Decimal, domain.RateOption, *uint64, error) {
	if quote.Type == domain.ShippingInternational {
		zq := quote.International
		zoneID := zq.Zone.ID
		return zq.Cost, domain.RateOption{}, &zoneID, nil
	}

	if input.CourierCode == "" {
		opt := quote.Domestic[0]
		return opt.Cost, opt, nil, nil
	}
	for _, opt := range quote.Domestic {
		if opt.CarrierCode == input.CourierCode && (input.ServiceCode == "" || opt.ServiceCode == input.ServiceCode) {
			return opt.Cost, opt, nil, nil
		}
	}
	return decimal.Zero, domain.RateOption{}, nil, domain.ErrNoOptionsFound
}

// TransitionOptions carries per-transition extras: the explicit tracking number
// for international SHIPPED, and the payment snapshot for PAID.
type TransitionOptions struct {
	TrackingNumber  string
	PaymentMethod   string
	PaymentProvider string
	PaymentRef      string
}

// Transition is the single funnel for every status change. It runs the
// legality check, timestamp stamping, and stock compensation inside one
// transaction; best-effort side effects (events, carrier order creation) run
// after commit and never roll it back.
func (s *OrderService) Transition(ctx context.Context, orderID uint64, target domain.OrderStatus, opts TransitionOptions) (*domain.Order, error) {
	updated, err := s.orders.Transition(ctx, orderID, func(o *domain.Order) (bool, error) {
		if !o.Status.CanTransitionTo(target) {
			return false, &domain.IllegalTransitionError{From: o.Status, To: target}
		}
		prior := o.Status

		switch target {
		case domain.StatusPaid:
			if opts.PaymentMethod != "" {
				o.PaymentMethod = opts.PaymentMethod
			}
			if opts.PaymentProvider != "" {
				o.PaymentProvider = opts.PaymentProvider
			}
			if opts.PaymentRef != "" {
				o.PaymentRef = opts.PaymentRef
			}
			if o.InvoiceNumber == "" {
				inv, err := s.invoices.AssignInvoiceNumber(ctx, o.OrderNumber)
				if err != nil {
					// Invoice numbering is best effort; the payment still lands.
					log.Printf("order %s: invoice assignment failed: %v", o.OrderNumber, err)
				} else {
					o.InvoiceNumber = inv
				}
			}
		case domain.StatusShipped:
			if opts.TrackingNumber != "" {
				o.TrackingNumber = opts.TrackingNumber
			}
			if o.TrackingNumber == "" {
				return false, domain.ErrTrackingNumberRequired
			}
		}

		o.ApplyStatus(target, s.now())

		restoreStock := target == domain.StatusCancelled && prior.StockCommitted()
		return restoreStock, nil
	})
	if err != nil {
		s.countTransition(target, "rejected")
		return nil, err
	}
	s.countTransition(target, "applied")

	s.invalidateOrderCache(updated.OrderNumber)
	go s.publishStatusEvent(context.Background(), updated, "")

	if target == domain.StatusPaid && updated.ShippingType == domain.ShippingDomestic && updated.CarrierOrderID == "" {
		go s.createCarrierOrder(updated)
	}

	return updated, nil
}

// Cancel is the user/admin cancellation entry point.
func (s *OrderService) Cancel(ctx context.Context, orderID uint64) (*domain.Order, error) {
	return s.Transition(ctx, orderID, domain.StatusCancelled, TransitionOptions{})
}

// UpdateOrderDetails patches recipient and payment reference fields under the
// same row lock the state machine uses. Once the parcel is with the carrier
// the address is frozen.
func (s *OrderService) UpdateOrderDetails(ctx context.Context, orderID uint64, patch domain.OrderPatch) (*domain.Order, error) {
	updated, err := s.orders.Transition(ctx, orderID, func(o *domain.Order) (bool, error) {
		switch o.Status {
		case domain.StatusPending, domain.StatusPaid, domain.StatusProcessing:
		default:
			return false, domain.ErrOrderNotEditable
		}
		patch.Apply(o)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateOrderCache(updated.OrderNumber)
	return updated, nil
}

func (s *OrderService) shippingOrderRequest(order *domain.Order) infra.ShippingOrderRequest {
	req := infra.ShippingOrderRequest{
		Origin: infra.Contact{
			Name:       s.cfg.OriginContactName,
			Phone:      s.cfg.OriginContactPhone,
			PostalCode: s.cfg.OriginPostalCode,
		},
		Destination: infra.Contact{
			Name:       order.RecipientName,
			Phone:      order.RecipientPhone,
			Address:    order.AddressLine,
			PostalCode: order.PostalCode,
		},
		CourierCode: order.CourierCode,
		ServiceCode: order.ServiceCode,
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, infra.ParcelItem{
			Name:     item.ProductName,
			Value:    item.Subtotal,
			Quantity: item.Quantity,
		})
	}
	return req
}

// createCarrierOrder books the shipment with the domestic carrier after a
// payment lands. Failures are logged and left for the manual retry action; the
// order stays PAID either way.
func (s *OrderService) createCarrierOrder(order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CarrierTimeout)
	defer cancel()

	created, err := s.carrier.CreateShippingOrder(ctx, s.shippingOrderRequest(order))
	if err != nil {
		log.Printf("order %s: carrier order creation failed, pending manual retry: %v", order.OrderNumber, err)
		return
	}

	if err := s.orders.UpdateCarrierOrder(ctx, order.ID, created.OrderID, created.TrackingID); err != nil {
		log.Printf("order %s: failed to store carrier order %s: %v", order.OrderNumber, created.OrderID, err)
		return
	}
	s.invalidateOrderCache(order.OrderNumber)
	log.Printf("order %s: carrier order %s created, tracking %s", order.OrderNumber, created.OrderID, created.TrackingID)
}

// RetryCarrierOrder is the manual admin action for orders stuck past PAID
// without a carrier order. Unlike the after-payment attempt it is synchronous
// and surfaces the carrier error to the caller.
func (s *OrderService) RetryCarrierOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.ShippingType != domain.ShippingDomestic {
		return nil, ErrCarrierOrderNotApplicable
	}
	switch order.Status {
	case domain.StatusPaid, domain.StatusProcessing, domain.StatusShipped:
	default:
		return nil, ErrCarrierOrderNotApplicable
	}
	if order.CarrierOrderID != "" {
		return order, nil
	}

	created, err := s.carrier.CreateShippingOrder(ctx, s.shippingOrderRequest(order))
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateCarrierOrder(ctx, order.ID, created.OrderID, created.TrackingID); err != nil {
		return nil, err
	}
	s.invalidateOrderCache(order.OrderNumber)

	order.CarrierOrderID = created.OrderID
	order.TrackingNumber = created.TrackingID
	return order, nil
}

func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	cacheKey := orderCacheKey(number)
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var o domain.Order
			if err := json.Unmarshal([]byte(cached), &o); err == nil {
				return &o, nil
			}
		}
	}

	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(order); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, 30*time.Second)
		}
	}
	return order, nil
}

func orderCacheKey(number string) string {
	return fmt.Sprintf("order:number:%s", number)
}

func (s *OrderService) invalidateOrderCache(number string) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(context.Background(), orderCacheKey(number))
}

func (s *OrderService) publishStatusEvent(ctx context.Context, order *domain.Order, routingKey string) {
	evt := domain.OrderStatusEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		OccurredAt:  s.now().UTC(),
	}
	if routingKey == "" {
		routingKey = evt.RoutingKey()
	}
	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		log.Printf("order %s: failed to publish %s: %v", order.OrderNumber, routingKey, err)
	}
}

func (s *OrderService) countTransition(target domain.OrderStatus, outcome string) {
	if s.orderMetrics == nil {
		return
	}
	s.orderMetrics.Transitions.WithLabelValues(string(target), outcome).Inc()
}

// IsIllegalTransition reports whether err is a transition-table rejection.
func IsIllegalTransition(err error) bool {
	var ite *domain.IllegalTransitionError
	return errors.As(err, &ite)
}
