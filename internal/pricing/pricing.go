// Package pricing computes checkout totals. Everything here is pure: the same
// inputs always produce the same totals, so stored orders can be re-verified
// by recomputation.
package pricing

import (
	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no fractional minor unit; amounts round to whole
// units instead of two decimal places.
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// Exponent returns the rounding granularity for a currency code.
func Exponent(currency string) int32 {
	if zeroDecimalCurrencies[currency] {
		return 0
	}
	return 2
}

type LineInput struct {
	UnitPrice     decimal.Decimal
	Quantity      int64
	PromoFraction decimal.Decimal // 0 when no active promotion
}

type Line struct {
	Gross    decimal.Decimal // unit price x quantity
	Discount decimal.Decimal
	Net      decimal.Decimal // gross - discount
}

type Totals struct {
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	Lines        []Line
}

// ComputeTotals prices a set of cart lines. Discounts round per line, not once
// at the end, so multi-item orders cannot drift by a cent; every intermediate
// is rounded to the currency's granularity before summation.
func ComputeTotals(lines []LineInput, shippingCost decimal.Decimal, taxRate decimal.Decimal, currency string) Totals {
	exp := Exponent(currency)

	subtotal := decimal.Zero
	discount := decimal.Zero
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		qty := decimal.NewFromInt(l.Quantity)
		gross := l.UnitPrice.Mul(qty).Round(exp)
		lineDiscount := l.PromoFraction.Mul(l.UnitPrice).Mul(qty).Round(exp)
		out = append(out, Line{
			Gross:    gross,
			Discount: lineDiscount,
			Net:      gross.Sub(lineDiscount),
		})
		subtotal = subtotal.Add(gross)
		discount = discount.Add(lineDiscount)
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate).Round(exp)
	shipping := shippingCost.Round(exp)

	return Totals{
		Subtotal:     subtotal,
		Discount:     discount,
		Tax:          tax,
		ShippingCost: shipping,
		Total:        taxable.Add(tax).Add(shipping),
		Lines:        out,
	}
}

// Verify recomputes the total identity from stored order fields.
func Verify(subtotal, discount, tax, shippingCost, total decimal.Decimal) bool {
	return subtotal.Sub(discount).Add(tax).Add(shippingCost).Equal(total)
}
