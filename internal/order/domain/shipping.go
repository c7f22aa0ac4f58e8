package domain

import "github.com/shopspring/decimal"

// ShippingRate is the flat rate applied to every order total.
var ShippingRate = decimal.RequireFromString("0.02")

// ShippingCost computes the shipping charge for an order total: total times
// the flat rate, rounded to 2 fractional digits half-away-from-zero.
func ShippingCost(totalAmount decimal.Decimal) decimal.Decimal {
	return totalAmount.Mul(ShippingRate).Round(2)
}
