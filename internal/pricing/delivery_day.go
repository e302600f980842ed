// Package pricing holds the storefront's pure price rules: the delivery-day
// multiplier applied to catalogue prices and the delivery fee layered on at checkout.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/pkg/types"
)

var dayMultipliers = map[time.Weekday]decimal.Decimal{
	time.Thursday: decimal.NewFromInt(1),
	time.Friday:   decimal.RequireFromString("1.1"),
	time.Saturday: decimal.RequireFromString("1.2"),
}

// IsDeliveryDay reports whether orders can be delivered on date (Thu, Fri, Sat).
func IsDeliveryDay(date types.Date) bool {
	_, ok := dayMultipliers[date.Weekday()]
	return ok
}

// Multiplier returns the price multiplier for date; non-delivery days get 1.
func Multiplier(date types.Date) decimal.Decimal {
	if m, ok := dayMultipliers[date.Weekday()]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// PriceForDate returns the effective unit price of base when delivered on date.
// A nil date or a day outside Thu/Fri/Sat leaves base unchanged.
func PriceForDate(base decimal.Decimal, date *types.Date) decimal.Decimal {
	if date == nil {
		return base
	}
	m, ok := dayMultipliers[date.Weekday()]
	if !ok {
		return base
	}
	return base.Mul(m)
}

// UpcomingDeliveryDays lists the next n delivery days after from's calendar day.
func UpcomingDeliveryDays(from time.Time, n int) []types.Date {
	if n <= 0 {
		return nil
	}
	days := make([]types.Date, 0, n)
	for d := types.DateOf(from).AddDays(1); len(days) < n; d = d.AddDays(1) {
		if IsDeliveryDay(d) {
			days = append(days, d)
		}
	}
	return days
}
