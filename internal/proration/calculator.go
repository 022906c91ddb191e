// Package proration computes the refund credit for a subscription canceled
// mid-period. The billing period is a flat 30 days regardless of calendar
// month length or billing interval; elapsed full periods beyond the first
// 30 days are not credited.
package proration

import (
	"math"
	"time"
)

// PeriodDays is the fixed proration window.
const PeriodDays = 30

// Compute returns the prorated refund in cents for a subscription priced at
// priceCents that started at startAt and is canceled at cancelAt. Elapsed
// days are whole days (fractions truncate). Once 30 or more days have
// elapsed the refund is zero. Rounding is half-up on cents.
func Compute(priceCents int64, startAt, cancelAt time.Time) int64 {
	daysElapsed := int64(cancelAt.Sub(startAt) / (24 * time.Hour))
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	daysRemaining := PeriodDays - daysElapsed
	if daysRemaining <= 0 {
		return 0
	}

	amount := float64(daysRemaining) / PeriodDays * float64(priceCents)
	return int64(math.Floor(amount + 0.5))
}
