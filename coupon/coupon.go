package coupon

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"food-ordering/models"
	"food-ordering/money"
)

// Rule is how a coupon code reduces a subtotal.
type Rule struct {
	Kind  models.CouponKind
	Value decimal.Decimal
}

var table = map[string]Rule{
	"SAVE10": {Kind: models.CouponPercent, Value: decimal.NewFromInt(10)},
	"LESS20": {Kind: models.CouponFixed, Value: decimal.NewFromInt(20)},
}

// Normalize trims and upper-cases a user supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve looks the code up case-insensitively. Unknown codes return
// models.ErrInvalidCoupon.
func Resolve(code string) (models.AppliedCoupon, error) {
	c := Normalize(code)
	rule, ok := table[c]
	if !ok {
		return models.AppliedCoupon{}, models.ErrInvalidCoupon
	}
	return models.AppliedCoupon{Code: c, Kind: rule.Kind, Value: rule.Value}, nil
}

// Codes returns the known codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(table))
	for c := range table {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Discount returns the reduction for subtotal, never more than subtotal.
// A nil coupon yields zero.
func Discount(c *models.AppliedCoupon, subtotal money.Money) money.Money {
	if c == nil || !subtotal.IsPositive() {
		return money.Zero
	}
	var computed money.Money
	switch c.Kind {
	case models.CouponPercent:
		computed = subtotal.Percent(c.Value)
	case models.CouponFixed:
		computed = money.FromDecimal(c.Value)
	default:
		return money.Zero
	}
	if computed.IsNegative() {
		return money.Zero
	}
	return money.Min(computed, subtotal).Round()
}
