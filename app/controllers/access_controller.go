package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/accesstime"
	"github.com/DanielKrohn/InkPress/internal/pkg/database"
	"github.com/DanielKrohn/InkPress/internal/pkg/entitlements"
)

// HandleGetUserAccess reports a user's current access window. The tier is
// recomputed from the end date on every call; the stored column is only a
// convenience copy.
func HandleGetUserAccess(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_user_id"})
	}

	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user_lookup_failed"})
	}

	now := time.Now()
	tier := accesstime.DetermineTier(user.SubscriptionEndsAt, now)
	resp := fiber.Map{
		"user_id":             user.ID,
		"tier":                tier,
		"subscription_status": user.SubscriptionStatus,
		"entitlements":        entitlements.Effective(&user, tier),
	}
	if days, ok := accesstime.RemainingDays(user.SubscriptionEndsAt, now); ok {
		resp["remaining_days"] = days
		resp["subscription_ends_at"] = user.SubscriptionEndsAt
	}
	return c.JSON(resp)
}
