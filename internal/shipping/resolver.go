// Package shipping resolves shipping costs: live carrier-aggregator quotes for
// the domestic market, flat zone rates for everything else.
package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"commerce-core/internal/domain"
	"commerce-core/internal/infra"
	"commerce-core/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const zoneCacheTTL = 10 * time.Minute

type Resolver struct {
	zones           repository.ZoneRepository
	carrier         infra.CarrierClientInterface
	redisClient     *redis.Client
	originPostal    string
	domesticCountry string
}

func NewResolver(zones repository.ZoneRepository, carrier infra.CarrierClientInterface, originPostal, domesticCountry string) *Resolver {
	return &Resolver{
		zones:           zones,
		carrier:         carrier,
		originPostal:    originPostal,
		domesticCountry: domesticCountry,
	}
}

func (r *Resolver) SetRedisClient(client *redis.Client) {
	r.redisClient = client
}

// Destination is the part of a checkout input the resolver needs.
type Destination struct {
	CountryCode string
	PostalCode  string
}

// Quote dispatches on destination country: the configured domestic market goes
// to the carrier aggregator, everything else to the zone table.
type Quote struct {
	Type          domain.ShippingType
	Domestic      []domain.RateOption
	International *domain.ZoneQuote
}

func (r *Resolver) Quote(ctx context.Context, dest Destination, weightGrams int64, preferredCarriers []string) (*Quote, error) {
	if strings.EqualFold(dest.CountryCode, r.domesticCountry) {
		options, err := r.QuoteDomestic(ctx, dest.PostalCode, weightGrams, preferredCarriers)
		if err != nil {
			return nil, err
		}
		return &Quote{Type: domain.ShippingDomestic, Domestic: options}, nil
	}
	zq, err := r.QuoteInternational(ctx, dest.CountryCode, weightGrams)
	if err != nil {
		return nil, err
	}
	return &Quote{Type: domain.ShippingInternational, International: zq}, nil
}

// QuoteDomestic asks the carrier aggregator for live rates, ranked cheapest
// first.
func (r *Resolver) QuoteDomestic(ctx context.Context, destPostal string, weightGrams int64, preferredCarriers []string) ([]domain.RateOption, error) {
	items := []infra.ParcelItem{{
		Name:        "parcel",
		Quantity:    1,
		WeightGrams: weightGrams,
	}}

	rates, err := r.carrier.GetRates(ctx, r.originPostal, destPostal, items, preferredCarriers)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, domain.ErrNoOptionsFound
	}

	options := make([]domain.RateOption, 0, len(rates))
	for _, rate := range rates {
		options = append(options, domain.RateOption{
			CarrierCode:        rate.CourierCode,
			ServiceCode:        rate.ServiceCode,
			DisplayName:        strings.TrimSpace(rate.CourierName + " " + rate.ServiceName),
			Cost:               rate.Price,
			EtaDaysMin:         rate.EtaDaysMin,
			EtaDaysMax:         rate.EtaDaysMax,
			InsuranceAvailable: rate.AvailableInsurance,
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Cost.LessThan(options[j].Cost)
	})
	return options, nil
}

// QuoteInternational prices a parcel against the destination's zone. Weight
// always rounds up to the next whole kilogram so partial kilograms are never
// undercharged.
func (r *Resolver) QuoteInternational(ctx context.Context, countryCode string, weightGrams int64) (*domain.ZoneQuote, error) {
	zone, err := r.zoneByCountry(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, domain.ErrUnsupportedDestination
	}

	chargeableKg := (weightGrams + 999) / 1000
	cost := zone.BaseRate.Add(zone.PerKgRate.Mul(decimal.NewFromInt(chargeableKg)))

	return &domain.ZoneQuote{
		Zone:       zone,
		Cost:       cost,
		EtaDaysMin: zone.EtaDaysMin,
		EtaDaysMax: zone.EtaDaysMax,
	}, nil
}

// zoneByCountry is a read-through cache over the zone table. Cache failures
// fall through to the database.
func (r *Resolver) zoneByCountry(ctx context.Context, countryCode string) (*domain.ShippingZone, error) {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	cacheKey := fmt.Sprintf("zone:country:%s", cc)

	if r.redisClient != nil {
		cached, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var zone domain.ShippingZone
			if err := json.Unmarshal([]byte(cached), &zone); err == nil {
				return &zone, nil
			}
		}
	}

	zone, err := r.zones.FindByCountry(ctx, cc)
	if err != nil {
		return nil, err
	}

	if r.redisClient != nil && zone != nil {
		if data, err := json.Marshal(zone); err == nil {
			r.redisClient.Set(ctx, cacheKey, data, zoneCacheTTL)
		}
	}

	return zone, nil
}
