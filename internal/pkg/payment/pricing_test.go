package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/DanielKrohn/InkPress/app/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func planWithPromo(t *testing.T, amount int64, promo *models.PromotionalConfig) *models.BillingPlan {
	t.Helper()
	interval := models.BillingIntervalMonth
	plan := &models.BillingPlan{
		ID:              7,
		Name:            "Creator",
		PlanType:        models.PlanTypeSubscription,
		Amount:          amount,
		BillingInterval: &interval,
	}
	if err := plan.SetPromo(promo); err != nil {
		t.Fatalf("SetPromo: %v", err)
	}
	return plan
}

func TestResolvePromotionalPricingNoPromo(t *testing.T) {
	plan := planWithPromo(t, 9999, nil)
	res := ResolvePromotionalPricing(plan, testNow)
	if res.HasPromotion || res.FinalAmount != 9999 {
		t.Fatalf("expected original amount without promotion, got %+v", res)
	}
}

func TestResolvePromotionalPricingInactive(t *testing.T) {
	plan := planWithPromo(t, 9999, &models.PromotionalConfig{IsActive: false, FinalPrice: 100})
	res := ResolvePromotionalPricing(plan, testNow)
	if res.HasPromotion || res.FinalAmount != 9999 {
		t.Fatalf("inactive promotion must not apply, got %+v", res)
	}
}

func TestResolvePromotionalPricingExpired(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	plan := planWithPromo(t, 9999, &models.PromotionalConfig{IsActive: true, FinalPrice: 7999, ExpiresAt: &expired})
	res := ResolvePromotionalPricing(plan, testNow)
	if res.HasPromotion || res.FinalAmount != 9999 {
		t.Fatalf("expired promotion must not apply, got %+v", res)
	}
}

func TestResolvePromotionalPricingFinalPrice(t *testing.T) {
	ends := testNow.AddDate(0, 1, 0)
	plan := planWithPromo(t, 9999, &models.PromotionalConfig{
		IsActive:   true,
		FinalPrice: 7999,
		CustomName: "Summer Launch",
		ExpiresAt:  &ends,
	})

	res := ResolvePromotionalPricing(plan, testNow)
	if !res.HasPromotion {
		t.Fatal("expected promotion to apply")
	}
	if res.FinalAmount != 7999 {
		t.Fatalf("FinalAmount = %d, want 7999", res.FinalAmount)
	}
	if res.DiscountAmount != 2000 {
		t.Fatalf("DiscountAmount = %d, want 2000", res.DiscountAmount)
	}
	if res.DiscountPercentage != 20 {
		t.Fatalf("DiscountPercentage = %d, want 20", res.DiscountPercentage)
	}
	if res.PromotionName != "Summer Launch" {
		t.Fatalf("PromotionName = %q", res.PromotionName)
	}
}

func TestResolvePromotionalPricingLegacyDiscount(t *testing.T) {
	plan := planWithPromo(t, 9999, &models.PromotionalConfig{IsActive: true, PromotionValue: 3000})
	res := ResolvePromotionalPricing(plan, testNow)
	if res.FinalAmount != 6999 {
		t.Fatalf("FinalAmount = %d, want 6999", res.FinalAmount)
	}
	if res.DiscountPercentage != 30 {
		t.Fatalf("DiscountPercentage = %d, want 30", res.DiscountPercentage)
	}
}

func TestResolvePromotionalPricingMinChargeFloor(t *testing.T) {
	plan := planWithPromo(t, 100, &models.PromotionalConfig{IsActive: true, PromotionValue: 99999})
	res := ResolvePromotionalPricing(plan, testNow)
	if res.FinalAmount != models.MinChargeAmount {
		t.Fatalf("FinalAmount = %d, want floor %d", res.FinalAmount, models.MinChargeAmount)
	}
	if res.DiscountAmount != 100-models.MinChargeAmount {
		t.Fatalf("DiscountAmount = %d", res.DiscountAmount)
	}
}

func TestResolvePromotionalPricingUnusablePromo(t *testing.T) {
	plan := planWithPromo(t, 9999, &models.PromotionalConfig{IsActive: true})
	res := ResolvePromotionalPricing(plan, testNow)
	if res.HasPromotion || res.FinalAmount != 9999 {
		t.Fatalf("unusable promotion must not apply, got %+v", res)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestResolvePlanPricingAndFlow(t *testing.T) {
	ends := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	plan := planWithPromo(t, 9999, &models.PromotionalConfig{
		IsActive:   true,
		FinalPrice: 7999,
		CustomName: "Summer Launch",
		ExpiresAt:  &ends,
	})

	res := ResolvePlanPricingAndFlow(plan, testNow)
	if res.FlowType != FlowSubscription {
		t.Fatalf("FlowType = %q, want subscription", res.FlowType)
	}
	if res.Interval != models.BillingIntervalMonth || res.IntervalCount != 1 {
		t.Fatalf("interval = (%q, %d)", res.Interval, res.IntervalCount)
	}
	if res.OriginalAmount != 9999 || res.FinalAmount != 7999 {
		t.Fatalf("amounts = (%d, %d)", res.OriginalAmount, res.FinalAmount)
	}
	if !strings.Contains(res.Description, "Summer Launch") {
		t.Fatalf("description missing promotion name: %q", res.Description)
	}
	if !strings.Contains(res.Description, "2025-07-01") {
		t.Fatalf("description missing promotion end date: %q", res.Description)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestResolvePlanPricingAndFlowOneTimeSkipsInterval(t *testing.T) {
	plan := &models.BillingPlan{ID: 3, Name: "Lifetime", PlanType: models.PlanTypeOneTime, Amount: 49900}
	res := ResolvePlanPricingAndFlow(plan, testNow)
	if res.FlowType != FlowOneTime {
		t.Fatalf("FlowType = %q", res.FlowType)
	}
	if res.Interval != "" || res.IntervalCount != 0 {
		t.Fatalf("one-time flow must not carry an interval, got (%q, %d)", res.Interval, res.IntervalCount)
	}
}
