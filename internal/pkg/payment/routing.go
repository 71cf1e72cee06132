package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DanielKrohn/InkPress/app/models"
)

// AnalyzeRouting aggregates a plan catalog for admin reporting: how plans
// split across flows, how many promotions are live or expired, and what the
// catalog charges on average per flow.
func AnalyzeRouting(plans []models.BillingPlan, now time.Time) RoutingAnalysis {
	analysis := RoutingAnalysis{
		TotalPlans:           len(plans),
		IntervalDistribution: make(map[string]int),
		AverageFinalAmount:   make(map[FlowType]decimal.Decimal),
	}

	totals := make(map[FlowType]decimal.Decimal)
	counts := make(map[FlowType]int64)

	for i := range plans {
		plan := &plans[i]
		res := ResolvePlanPricingAndFlow(plan, now)

		switch res.FlowType {
		case FlowSubscription:
			analysis.SubscriptionPlans++
			analysis.IntervalDistribution[res.Interval]++
		case FlowOneTime:
			analysis.OneTimePlans++
		}

		if promo := plan.Promo(); promo != nil && promo.IsActive {
			if promo.ExpiresAt != nil && promo.ExpiresAt.Before(now) {
				analysis.ExpiredPromotions++
			} else {
				analysis.ActivePromotions++
			}
		}

		totals[res.FlowType] = totals[res.FlowType].Add(decimal.NewFromInt(res.FinalAmount))
		counts[res.FlowType]++
	}

	for flow, total := range totals {
		analysis.AverageFinalAmount[flow] = total.Div(decimal.NewFromInt(counts[flow])).Round(2)
	}
	return analysis
}
