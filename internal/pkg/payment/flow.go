package payment

import (
	"fmt"
	"strings"

	"github.com/DanielKrohn/InkPress/app/models"
)

// AnalyzeFlow decides how a plan should be charged. It is total: malformed
// plans route as one-time instead of failing, with the inconsistency reported
// in the returned warnings.
func AnalyzeFlow(plan *models.BillingPlan) (FlowType, []string) {
	var warnings []string

	planType := strings.ToLower(strings.TrimSpace(plan.PlanType))
	hasInterval := plan.BillingInterval != nil && strings.TrimSpace(*plan.BillingInterval) != ""

	switch {
	case planType == models.PlanTypeSubscription && hasInterval:
		return FlowSubscription, warnings
	case planType == models.PlanTypeOneTime:
		return FlowOneTime, warnings
	case !hasInterval:
		// Declared subscription (or unknown) without an interval cannot recur.
		warnings = append(warnings, fmt.Sprintf("plan %d declares type %q but has no billing interval, falling back to one-time", plan.ID, plan.PlanType))
		return FlowOneTime, warnings
	default:
		return FlowSubscription, warnings
	}
}

// MapBillingInterval normalizes a raw interval string to a supported interval
// and count. Unrecognized values map to a monthly cadence so that downstream
// scheduling always has something to work with.
func MapBillingInterval(raw string) (string, int, []string) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.BillingIntervalDay:
		return models.BillingIntervalDay, 1, nil
	case models.BillingIntervalWeek:
		return models.BillingIntervalWeek, 1, nil
	case models.BillingIntervalMonth:
		return models.BillingIntervalMonth, 1, nil
	case models.BillingIntervalYear:
		return models.BillingIntervalYear, 1, nil
	default:
		warning := fmt.Sprintf("unrecognized billing interval %q, defaulting to month", raw)
		return models.BillingIntervalMonth, 1, []string{warning}
	}
}
