package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingZone is static reference data for international destinations: a flat
// base rate plus a per-kilogram rate shared by a set of countries.
type ShippingZone struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string          `json:"name" gorm:"size:128;not null"`
	CountryCodes string          `json:"countryCodes" gorm:"size:512;not null"` // comma-separated ISO codes
	BaseRate     decimal.Decimal `json:"baseRate" gorm:"type:decimal(18,2);not null"`
	PerKgRate    decimal.Decimal `json:"perKgRate" gorm:"type:decimal(18,2);not null"`
	EtaDaysMin   int             `json:"etaDaysMin" gorm:"not null"`
	EtaDaysMax   int             `json:"etaDaysMax" gorm:"not null"`
	Active       bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

func (z *ShippingZone) Covers(countryCode string) bool {
	for _, cc := range strings.Split(z.CountryCodes, ",") {
		if strings.EqualFold(strings.TrimSpace(cc), countryCode) {
			return true
		}
	}
	return false
}

// RateOption is one ranked domestic shipping choice from the carrier aggregator.
type RateOption struct {
	CarrierCode        string          `json:"carrierCode"`
	ServiceCode        string          `json:"serviceCode"`
	DisplayName        string          `json:"displayName"`
	Cost               decimal.Decimal `json:"cost"`
	EtaDaysMin         int             `json:"etaDaysMin"`
	EtaDaysMax         int             `json:"etaDaysMax"`
	InsuranceAvailable bool            `json:"insuranceAvailable"`
}

// ZoneQuote is a flat international quote resolved from a ShippingZone.
type ZoneQuote struct {
	Zone       *ShippingZone   `json:"zone"`
	Cost       decimal.Decimal `json:"cost"`
	EtaDaysMin int             `json:"etaDaysMin"`
	EtaDaysMax int             `json:"etaDaysMax"`
}
