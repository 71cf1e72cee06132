package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/DanielKrohn/InkPress/app/models"
)

// ResolvePromotionalPricing resolves the chargeable amount for a plan at the
// given instant. Promotions expire in real time, so callers must pass an
// explicit evaluation time (tests inject fixed instants).
//
// Resolution order: inactive or expired promo -> original amount; explicit
// final price -> used directly; legacy absolute discount -> subtracted with a
// minimum-charge floor; anything else -> original amount with a warning.
func ResolvePromotionalPricing(plan *models.BillingPlan, now time.Time) PromoResult {
	original := plan.Amount
	none := PromoResult{FinalAmount: original}

	promo := plan.Promo()
	if promo == nil || !promo.IsActive {
		return none
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(now) {
		return none
	}

	name := strings.TrimSpace(promo.CustomName)

	if promo.FinalPrice > 0 {
		discount := original - promo.FinalPrice
		return PromoResult{
			FinalAmount:        promo.FinalPrice,
			HasPromotion:       true,
			PromotionName:      name,
			DiscountAmount:     discount,
			DiscountPercentage: discountPercentage(discount, original),
		}
	}

	if promo.PromotionValue > 0 {
		final := original - promo.PromotionValue
		if final < models.MinChargeAmount {
			final = models.MinChargeAmount
		}
		discount := original - final
		return PromoResult{
			FinalAmount:        final,
			HasPromotion:       true,
			PromotionName:      name,
			DiscountAmount:     discount,
			DiscountPercentage: discountPercentage(discount, original),
		}
	}

	none.Warnings = append(none.Warnings, fmt.Sprintf("plan %d has an active promotion without a usable price, ignoring it", plan.ID))
	return none
}

// ResolvePlanPricingAndFlow composes flow analysis, promotional pricing and,
// for subscription flow, interval normalization into one derived view.
func ResolvePlanPricingAndFlow(plan *models.BillingPlan, now time.Time) Resolution {
	flow, warnings := AnalyzeFlow(plan)
	promo := ResolvePromotionalPricing(plan, now)
	warnings = append(warnings, promo.Warnings...)

	res := Resolution{
		FlowType:           flow,
		OriginalAmount:     plan.Amount,
		FinalAmount:        promo.FinalAmount,
		HasPromotion:       promo.HasPromotion,
		PromotionName:      promo.PromotionName,
		DiscountAmount:     promo.DiscountAmount,
		DiscountPercentage: promo.DiscountPercentage,
	}

	if flow == FlowSubscription {
		raw := ""
		if plan.BillingInterval != nil {
			raw = *plan.BillingInterval
		}
		interval, count, intervalWarnings := MapBillingInterval(raw)
		res.Interval = interval
		res.IntervalCount = count
		warnings = append(warnings, intervalWarnings...)
	}

	res.Description = describe(plan, res)
	res.Warnings = warnings

	for _, w := range warnings {
		log.Warnf("[Payment] plan %d: %s", plan.ID, w)
	}
	return res
}

func describe(plan *models.BillingPlan, res Resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s flow, %d minor units", plan.Name, res.FlowType, res.FinalAmount)
	if res.FlowType == FlowSubscription {
		fmt.Fprintf(&b, " per %s", res.Interval)
	}
	if res.HasPromotion {
		label := res.PromotionName
		if label == "" {
			label = "promotion"
		}
		fmt.Fprintf(&b, " (%s, %d%% off", label, res.DiscountPercentage)
		if promo := plan.Promo(); promo != nil && promo.ExpiresAt != nil {
			fmt.Fprintf(&b, ", ends %s", promo.ExpiresAt.Format("2006-01-02"))
		}
		b.WriteString(")")
	}
	return b.String()
}

// discountPercentage rounds discount/original to a whole percentage. Decimal
// math avoids float drift on large catalog amounts.
func discountPercentage(discount, original int64) int64 {
	if original <= 0 {
		return 0
	}
	return decimal.NewFromInt(discount).
		Div(decimal.NewFromInt(original)).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
