package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/cache"
	"github.com/DanielKrohn/InkPress/internal/pkg/payment"
)

const plansReportCacheKey = "billing:plans:report"
const plansReportCacheTTL = 60 * time.Second

// HandleListPlans returns the active plan catalog with resolved pricing.
func HandleListPlans(c *fiber.Ctx) error {
	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	plans, err := svc.ListPlans(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "plan_lookup_failed"})
	}

	now := time.Now()
	type planView struct {
		models.BillingPlan
		Pricing payment.Resolution `json:"pricing"`
	}
	views := make([]planView, 0, len(plans))
	for i := range plans {
		views = append(views, planView{
			BillingPlan: plans[i],
			Pricing:     payment.ResolvePlanPricingAndFlow(&plans[i], now),
		})
	}
	return c.JSON(fiber.Map{"plans": views})
}

// HandleGetPlanPricing resolves flow and pricing for one plan.
func HandleGetPlanPricing(c *fiber.Ctx) error {
	planID, err := c.ParamsInt("id")
	if err != nil || planID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan_id"})
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := svc.ResolvePlan(ctx, uint(planID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "plan_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "plan_lookup_failed"})
	}
	return c.JSON(res)
}

// HandleCreatePlan stores a new billing plan (admin only, enforced in router).
func HandleCreatePlan(c *fiber.Ctx) error {
	var in struct {
		Name            string                    `json:"name"`
		PlanType        string                    `json:"plan_type"`
		Amount          int64                     `json:"amount"`
		BillingInterval *string                   `json:"billing_interval"`
		Promo           *models.PromotionalConfig `json:"promo"`
		Metadata        string                    `json:"metadata"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	plan := models.BillingPlan{
		Name:            in.Name,
		PlanType:        in.PlanType,
		Amount:          in.Amount,
		BillingInterval: in.BillingInterval,
		Metadata:        in.Metadata,
		IsActive:        true,
	}
	if err := plan.SetPromo(in.Promo); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_promo"})
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := svc.CreatePlan(ctx, &plan); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	// A new plan changes the cached report.
	_ = cache.Delete(plansReportCacheKey)

	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandlePlansReport aggregates the catalog (flow split, promotions, interval
// distribution, average charge per flow). The report is cached briefly since
// it walks every active plan.
func HandlePlansReport(c *fiber.Ctx) error {
	if cached, err := cache.Get(plansReportCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	} else if err != nil && !cache.IsMiss(err) {
		log.Warnf("[Billing] plans report cache read failed: %v", err)
	}

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, err := svc.PlansReport(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_failed"})
	}

	if raw, err := json.Marshal(report); err == nil {
		if err := cache.Set(plansReportCacheKey, string(raw), plansReportCacheTTL); err != nil {
			log.Warnf("[Billing] plans report cache write failed: %v", err)
		}
	}
	return c.JSON(report)
}
