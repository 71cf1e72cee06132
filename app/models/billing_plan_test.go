package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingPlanValidate(t *testing.T) {
	interval := BillingIntervalMonth
	plan := &BillingPlan{
		Name:            "Creator",
		PlanType:        PlanTypeSubscription,
		Amount:          4999,
		BillingInterval: &interval,
	}
	require.NoError(t, plan.Validate())

	plan.PlanType = "lease"
	assert.Error(t, plan.Validate())

	plan.PlanType = PlanTypeOneTime
	plan.Name = "ab"
	assert.Error(t, plan.Validate())

	plan.Name = "Lifetime"
	bad := "fortnight"
	plan.BillingInterval = &bad
	assert.Error(t, plan.Validate())

	plan.BillingInterval = nil
	assert.NoError(t, plan.Validate())
}

func TestBillingPlanPromoRoundTrip(t *testing.T) {
	expires := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	plan := &BillingPlan{}
	require.NoError(t, plan.SetPromo(&PromotionalConfig{
		IsActive:   true,
		FinalPrice: 7999,
		CustomName: "Summer Launch",
		ExpiresAt:  &expires,
	}))

	promo := plan.Promo()
	require.NotNil(t, promo)
	assert.True(t, promo.IsActive)
	assert.Equal(t, int64(7999), promo.FinalPrice)
	assert.Equal(t, "Summer Launch", promo.CustomName)
	require.NotNil(t, promo.ExpiresAt)
	assert.True(t, promo.ExpiresAt.Equal(expires))
}

func TestBillingPlanPromoMissingOrBroken(t *testing.T) {
	plan := &BillingPlan{}
	assert.Nil(t, plan.Promo())

	plan.PromoJSON = "   "
	assert.Nil(t, plan.Promo())

	plan.PromoJSON = "{not json"
	assert.Nil(t, plan.Promo())

	require.NoError(t, plan.SetPromo(nil))
	assert.Equal(t, "", plan.PromoJSON)
}
