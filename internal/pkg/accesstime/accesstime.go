// Package accesstime computes per-user access windows from successful
// payments. All functions take explicit instants so tests stay deterministic.
package accesstime

import (
	"math"
	"time"

	"github.com/DanielKrohn/InkPress/app/models"
)

// Extension is the outcome of applying a paid period to an access window.
type Extension struct {
	NewEndDate    time.Time
	NewTier       string
	ShouldUpgrade bool
	DaysAdded     int
}

// CalculateFromPayment extends a user's access window after a successful
// payment. An expired window restarts from the payment date so overdue users
// get the full period they paid for instead of losing the lapsed days; an
// active window is extended additively on top of its current end.
func CalculateFromPayment(currentEnd *time.Time, planDays int, paymentAt time.Time) Extension {
	ext := Extension{
		NewTier:   models.TierPremium,
		DaysAdded: planDays,
	}

	switch {
	case currentEnd == nil:
		ext.NewEndDate = paymentAt.AddDate(0, 0, planDays)
		ext.ShouldUpgrade = true
	case currentEnd.Before(paymentAt):
		ext.NewEndDate = paymentAt.AddDate(0, 0, planDays)
		ext.ShouldUpgrade = true
	default:
		ext.NewEndDate = currentEnd.AddDate(0, 0, planDays)
	}
	return ext
}

// DetermineTier derives the access tier from the window alone: premium iff
// the end date exists and is strictly in the future. Recomputed on every
// check, never cached as ground truth.
func DetermineTier(endDate *time.Time, now time.Time) string {
	if endDate != nil && endDate.After(now) {
		return models.TierPremium
	}
	return models.TierFree
}

// RemainingDays reports whole days left in the window, rounding up. Negative
// values are meaningful (how long ago access expired) and are not clamped.
// ok is false when the user has no end date at all.
func RemainingDays(endDate *time.Time, now time.Time) (days int, ok bool) {
	if endDate == nil {
		return 0, false
	}
	hours := endDate.Sub(now).Hours()
	return int(math.Ceil(hours / 24)), true
}
