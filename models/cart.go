package models

import (
	"sort"

	"github.com/shopspring/decimal"

	"food-ordering/money"
)

// CartLine keeps the price seen when the product was first added.
type CartLine struct {
	ProductID      string      `json:"productId"`
	Name           string      `json:"name"`
	Price          money.Money `json:"price"`
	Quantity       int         `json:"quantity"`
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
}

// Cart maps product id to its line. One cart document per user.
type Cart map[string]CartLine

// Lines returns the lines ordered by name, then product id.
func (c Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c))
	for _, l := range c {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].ProductID < lines[j].ProductID
	})
	return lines
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

// Subtotal is Σ price*quantity, rounded to cents only at the end.
func (c Cart) Subtotal() money.Money {
	sum := money.Zero
	for _, l := range c {
		sum = sum.Add(l.Price.Mul(l.Quantity))
	}
	return sum.Round()
}

type CouponKind string

const (
	CouponPercent CouponKind = "percent"
	CouponFixed   CouponKind = "fixed"
)

// AppliedCoupon is the per-user coupon document.
type AppliedCoupon struct {
	Code  string          `json:"code"`
	Kind  CouponKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}
