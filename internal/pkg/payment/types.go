package payment

import "github.com/shopspring/decimal"

// FlowType says whether a plan is charged once or on a recurring cadence.
type FlowType string

const (
	FlowSubscription FlowType = "subscription"
	FlowOneTime      FlowType = "one-time"
)

// PromoResult is the outcome of resolving a plan's promotional pricing at a
// given instant. FinalAmount always carries a chargeable value; when no valid
// promotion applies it equals the plan's original amount.
type PromoResult struct {
	FinalAmount        int64    `json:"final_amount"`
	HasPromotion       bool     `json:"has_promotion"`
	PromotionName      string   `json:"promotion_name,omitempty"`
	DiscountAmount     int64    `json:"discount_amount,omitempty"`
	DiscountPercentage int64    `json:"discount_percentage,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// Resolution is the full derived view of a plan: flow type, pricing and, for
// subscription flow, the normalized billing interval. Computed fresh on every
// call and never persisted.
type Resolution struct {
	FlowType           FlowType `json:"flow_type"`
	OriginalAmount     int64    `json:"original_amount"`
	FinalAmount        int64    `json:"final_amount"`
	HasPromotion       bool     `json:"has_promotion"`
	PromotionName      string   `json:"promotion_name,omitempty"`
	DiscountAmount     int64    `json:"discount_amount,omitempty"`
	DiscountPercentage int64    `json:"discount_percentage,omitempty"`
	Interval           string   `json:"interval,omitempty"`
	IntervalCount      int      `json:"interval_count,omitempty"`
	Description        string   `json:"description"`
	Warnings           []string `json:"warnings,omitempty"`
}

// RoutingAnalysis aggregates a plan catalog for reporting. Nothing in the
// payment core branches on its output.
type RoutingAnalysis struct {
	TotalPlans           int                          `json:"total_plans"`
	SubscriptionPlans    int                          `json:"subscription_plans"`
	OneTimePlans         int                          `json:"one_time_plans"`
	ActivePromotions     int                          `json:"active_promotions"`
	ExpiredPromotions    int                          `json:"expired_promotions"`
	IntervalDistribution map[string]int               `json:"interval_distribution"`
	AverageFinalAmount   map[FlowType]decimal.Decimal `json:"average_final_amount"`
}
