package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []LineInput
		shippingCost decimal.Decimal
		taxRate      decimal.Decimal
		currency     string
		wantSubtotal decimal.Decimal
		wantDiscount decimal.Decimal
		wantTax      decimal.Decimal
		wantTotal    decimal.Decimal
	}{
		{
			name: "single line no promotion",
			lines: []LineInput{
				{UnitPrice: d("150000"), Quantity: 2},
			},
			shippingCost: d("20000"),
			taxRate:      d("0.11"),
			currency:     "IDR",
			wantSubtotal: d("300000"),
			wantDiscount: d("0"),
			wantTax:      d("33000"),
			wantTotal:    d("353000"),
		},
		{
			name: "promotion discount per line",
			lines: []LineInput{
				{UnitPrice: d("100000"), Quantity: 1, PromoFraction: d("0.1")},
				{UnitPrice: d("50000"), Quantity: 3},
			},
			shippingCost: d("15000"),
			taxRate:      d("0.1"),
			currency:     "IDR",
			wantSubtotal: d("250000"),
			wantDiscount: d("10000"),
			wantTax:      d("24000"),
			wantTotal:    d("279000"),
		},
		{
			name: "two decimal currency rounds per line",
			lines: []LineInput{
				{UnitPrice: d("9.99"), Quantity: 3, PromoFraction: d("0.15")},
				{UnitPrice: d("4.33"), Quantity: 1, PromoFraction: d("0.15")},
			},
			shippingCost: d("5.00"),
			taxRate:      d("0.07"),
			currency:     "USD",
			// line 1: gross 29.97, discount round(4.4955)=4.50
			// line 2: gross 4.33, discount round(0.6495)=0.65
			wantSubtotal: d("34.30"),
			wantDiscount: d("5.15"),
			wantTax:      d("2.04"),
			wantTotal:    d("36.19"),
		},
		{
			name: "zero decimal currency rounds to whole units",
			lines: []LineInput{
				{UnitPrice: d("1001"), Quantity: 1, PromoFraction: d("0.333")},
			},
			shippingCost: d("0"),
			taxRate:      d("0"),
			currency:     "JPY",
			wantSubtotal: d("1001"),
			wantDiscount: d("333"),
			wantTax:      d("0"),
			wantTotal:    d("668"),
		},
		{
			name:         "empty cart prices to shipping only",
			lines:        nil,
			shippingCost: d("10000"),
			taxRate:      d("0.11"),
			currency:     "IDR",
			wantSubtotal: d("0"),
			wantDiscount: d("0"),
			wantTax:      d("0"),
			wantTotal:    d("10000"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.lines, tt.shippingCost, tt.taxRate, tt.currency)

			assert.True(t, tt.wantSubtotal.Equal(got.Subtotal), "subtotal: want %s got %s", tt.wantSubtotal, got.Subtotal)
			assert.True(t, tt.wantDiscount.Equal(got.Discount), "discount: want %s got %s", tt.wantDiscount, got.Discount)
			assert.True(t, tt.wantTax.Equal(got.Tax), "tax: want %s got %s", tt.wantTax, got.Tax)
			assert.True(t, tt.wantTotal.Equal(got.Total), "total: want %s got %s", tt.wantTotal, got.Total)

			assert.True(t, Verify(got.Subtotal, got.Discount, got.Tax, got.ShippingCost, got.Total),
				"total identity must hold")
			assert.Len(t, got.Lines, len(tt.lines))
		})
	}
}

func TestComputeTotals_NoCentDriftAcrossManyLines(t *testing.T) {
	// 10 identical lines whose unrounded discount carries a half cent each.
	lines := make([]LineInput, 10)
	for i := range lines {
		lines[i] = LineInput{UnitPrice: d("0.99"), Quantity: 1, PromoFraction: d("0.106")}
	}

	got := ComputeTotals(lines, d("0"), d("0"), "USD")

	// Per-line: round(0.10494) = 0.10; summed = 1.00, never round(1.0494)=1.05.
	assert.True(t, d("1.00").Equal(got.Discount), "discount: got %s", got.Discount)
	for _, line := range got.Lines {
		assert.True(t, d("0.10").Equal(line.Discount))
	}
}

func TestExponent(t *testing.T) {
	assert.Equal(t, int32(0), Exponent("IDR"))
	assert.Equal(t, int32(0), Exponent("JPY"))
	assert.Equal(t, int32(2), Exponent("USD"))
	assert.Equal(t, int32(2), Exponent("EUR"))
}
