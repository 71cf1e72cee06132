package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DanielKrohn/InkPress/app/models"
)

func TestAnalyzeRouting(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	month := models.BillingIntervalMonth
	year := models.BillingIntervalYear
	pastExpiry := now.Add(-24 * time.Hour)

	sub1 := models.BillingPlan{ID: 1, Name: "Basic", PlanType: models.PlanTypeSubscription, Amount: 1000, BillingInterval: &month}
	sub2 := models.BillingPlan{ID: 2, Name: "Pro Yearly", PlanType: models.PlanTypeSubscription, Amount: 3000, BillingInterval: &year}
	if err := sub2.SetPromo(&models.PromotionalConfig{IsActive: true, FinalPrice: 2000}); err != nil {
		t.Fatal(err)
	}
	oneTime := models.BillingPlan{ID: 3, Name: "Lifetime", PlanType: models.PlanTypeOneTime, Amount: 49900}
	if err := oneTime.SetPromo(&models.PromotionalConfig{IsActive: true, FinalPrice: 39900, ExpiresAt: &pastExpiry}); err != nil {
		t.Fatal(err)
	}

	analysis := AnalyzeRouting([]models.BillingPlan{sub1, sub2, oneTime}, now)

	if analysis.TotalPlans != 3 {
		t.Fatalf("TotalPlans = %d", analysis.TotalPlans)
	}
	if analysis.SubscriptionPlans != 2 || analysis.OneTimePlans != 1 {
		t.Fatalf("flow split = (%d, %d)", analysis.SubscriptionPlans, analysis.OneTimePlans)
	}
	if analysis.IntervalDistribution["month"] != 1 || analysis.IntervalDistribution["year"] != 1 {
		t.Fatalf("interval distribution = %v", analysis.IntervalDistribution)
	}
	if analysis.ActivePromotions != 1 || analysis.ExpiredPromotions != 1 {
		t.Fatalf("promotions = (%d active, %d expired)", analysis.ActivePromotions, analysis.ExpiredPromotions)
	}

	// sub1 at 1000 plus sub2 discounted to 2000 averages to 1500.
	wantSubAvg := decimal.NewFromInt(1500)
	if !analysis.AverageFinalAmount[FlowSubscription].Equal(wantSubAvg) {
		t.Fatalf("subscription average = %s, want %s", analysis.AverageFinalAmount[FlowSubscription], wantSubAvg)
	}
	// The one-time promo expired, so the full price counts.
	wantOneAvg := decimal.NewFromInt(49900)
	if !analysis.AverageFinalAmount[FlowOneTime].Equal(wantOneAvg) {
		t.Fatalf("one-time average = %s, want %s", analysis.AverageFinalAmount[FlowOneTime], wantOneAvg)
	}
}

func TestAnalyzeRoutingEmptyCatalog(t *testing.T) {
	analysis := AnalyzeRouting(nil, time.Now())
	if analysis.TotalPlans != 0 || len(analysis.AverageFinalAmount) != 0 {
		t.Fatalf("empty catalog produced %+v", analysis)
	}
}
