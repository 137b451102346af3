package domain

import "github.com/shopspring/decimal"

// DefaultDeliveryFee is charged once per delivery order.
const DefaultDeliveryFee = 5.00

type Pricing struct {
	DeliveryFee float64
}

func NewPricing(deliveryFee float64) Pricing {
	if deliveryFee < 0 {
		deliveryFee = 0
	}
	return Pricing{DeliveryFee: deliveryFee}
}

func (p Pricing) Subtotal(items []CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price))
	}
	return sum.Round(2).InexactFloat64()
}

func (p Pricing) Fee(t OrderType) float64 {
	if t == OrderTypeDelivery {
		return p.DeliveryFee
	}
	return 0
}

func (p Pricing) Total(items []CartItem, t OrderType) float64 {
	sum := decimal.NewFromFloat(p.Subtotal(items))
	return sum.Add(decimal.NewFromFloat(p.Fee(t))).Round(2).InexactFloat64()
}

// EstimatedWait is the customer-facing preparation window in minutes.
func EstimatedWait(t OrderType) string {
	if t == OrderTypeDelivery {
		return "30-45"
	}
	return "10-15"
}
