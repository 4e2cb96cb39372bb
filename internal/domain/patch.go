package domain

// OrderPatch is a partial update of the order's mutable attributes. Only
// non-nil fields are applied; everything the state machine owns (status,
// lifecycle timestamps, money) is deliberately absent.
type OrderPatch struct {
	RecipientName  *string `json:"recipientName,omitempty"`
	RecipientPhone *string `json:"recipientPhone,omitempty"`
	AddressLine    *string `json:"addressLine,omitempty"`
	City           *string `json:"city,omitempty"`
	PostalCode     *string `json:"postalCode,omitempty"`
	TrackingNumber *string `json:"trackingNumber,omitempty"`
	PaymentMethod  *string `json:"paymentMethod,omitempty"`
	PaymentRef     *string `json:"paymentRef,omitempty"`
}

func (p OrderPatch) Apply(o *Order) {
	if p.RecipientName != nil {
		o.RecipientName = *p.RecipientName
	}
	if p.RecipientPhone != nil {
		o.RecipientPhone = *p.RecipientPhone
	}
	if p.AddressLine != nil {
		o.AddressLine = *p.AddressLine
	}
	if p.City != nil {
		o.City = *p.City
	}
	if p.PostalCode != nil {
		o.PostalCode = *p.PostalCode
	}
	if p.TrackingNumber != nil {
		o.TrackingNumber = *p.TrackingNumber
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentRef != nil {
		o.PaymentRef = *p.PaymentRef
	}
}
