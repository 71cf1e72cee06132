package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/database"
	"github.com/DanielKrohn/InkPress/internal/pkg/mail"
)

// processAccessRevocationJob downgrades a user whose paid access window has
// run out. If the user resubscribed in the meantime the job completes as a
// no-op and the access window stays untouched.
func (q *Queue) processAccessRevocationJob(ctx context.Context, job *Job) error {
	payload, err := AccessRevocationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid access revocation payload: %w", err)
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, payload.UserID).Error; err != nil {
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}

	now := time.Now()
	if user.SubscriptionEndsAt != nil && user.SubscriptionEndsAt.After(now) {
		log.Infof("[JobQueue] User %d access window extended until %s, skipping revocation", user.ID, user.SubscriptionEndsAt.Format(time.RFC3339))
		return nil
	}

	updates := map[string]interface{}{
		"subscription_tier":   models.TierFree,
		"subscription_status": models.SubscriptionStatusExpired,
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to revoke access for user %d: %w", user.ID, err)
	}

	log.Infof("[JobQueue] Revoked paid access for user %d (tier=%s -> %s)", user.ID, user.SubscriptionTier, models.TierFree)
	return nil
}

// processWinbackEmailJob sends a winback email to a user who canceled. Users
// who have an active subscription again are skipped.
func (q *Queue) processWinbackEmailJob(ctx context.Context, job *Job) error {
	payload, err := WinbackEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid winback payload: %w", err)
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, payload.UserID).Error; err != nil {
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}

	if user.SubscriptionStatus == models.SubscriptionStatusActive {
		log.Infof("[JobQueue] User %d is active again, skipping winback email", user.ID)
		return nil
	}

	subject := "We miss you"
	body := fmt.Sprintf("<h1>Hello %s,</h1><p>Your subscription ended a while ago. Come back and pick up where you left off - your content is still waiting for you.</p>", user.Name)
	if err := mail.SendMail(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send winback email to user %d: %w", user.ID, err)
	}

	log.Infof("[JobQueue] Sent winback email to user %d", user.ID)
	return nil
}
