package pricing

import (
	"food-ordering/coupon"
	"food-ordering/models"
	"food-ordering/money"
)

var (
	BaseDeliveryFee   = money.New(15, 0)
	FreeOverThreshold = money.New(150, 0)
)

// DeliveryFee depends on the subtotal only. The free threshold is inclusive.
func DeliveryFee(subtotal money.Money) money.Money {
	if !subtotal.IsPositive() {
		return money.Zero
	}
	if subtotal.Cmp(FreeOverThreshold) >= 0 {
		return money.Zero
	}
	return BaseDeliveryFee
}

// Quote is a priced cart.
type Quote struct {
	SubTotal    money.Money `json:"subTotal"`
	DeliveryFee money.Money `json:"deliveryFee"`
	Discount    money.Money `json:"discount"`
	GrandTotal  money.Money `json:"grandTotal"`
	CouponCode  string      `json:"couponCode,omitempty"`
}

// NewQuote prices subtotal with an optional coupon.
// GrandTotal = max(0, SubTotal + DeliveryFee - Discount).
func NewQuote(subtotal money.Money, c *models.AppliedCoupon) Quote {
	sub := subtotal.Round()
	q := Quote{
		SubTotal:    sub,
		DeliveryFee: DeliveryFee(sub),
		Discount:    coupon.Discount(c, sub),
	}
	q.GrandTotal = money.Max(money.Zero, q.SubTotal.Add(q.DeliveryFee).Sub(q.Discount)).Round()
	if c != nil {
		q.CouponCode = c.Code
	}
	return q
}

// Price quotes a whole cart.
func Price(cart models.Cart, c *models.AppliedCoupon) Quote {
	return NewQuote(cart.Subtotal(), c)
}
