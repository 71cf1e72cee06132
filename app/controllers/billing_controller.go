package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/billing"
	"github.com/DanielKrohn/InkPress/internal/pkg/database"
	"github.com/DanielKrohn/InkPress/internal/pkg/env"
	"github.com/DanielKrohn/InkPress/internal/pkg/jobqueue"
	"github.com/DanielKrohn/InkPress/internal/pkg/mail"
	"github.com/DanielKrohn/InkPress/internal/pkg/metrics/counter"
)

func billingService() *billing.Service {
	return billing.NewServiceFromDB(database.GetDB(), mail.NewNotifier()).
		WithScheduler(jobqueue.GetManager())
}

// HandlePaymentWebhook receives provider lifecycle notifications. Deliveries
// are recorded idempotently before any processing, so replays and concurrent
// duplicates are acknowledged without touching account state again.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	eventType := strings.TrimSpace(c.Get("X-Webhook-Event"))
	eventID := firstHeaderValue(c, "X-Webhook-Delivery", "X-Webhook-Event-ID")
	signature := strings.TrimSpace(c.Get("X-Hub-Signature"))
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")

	svc := billingService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Counters are observability only, errors must not fail the delivery.
	_ = counter.AddWebhookOutcome(counter.OutcomeReceived)
	_ = counter.AddEventType(eventType)

	signatureValid := billing.VerifyWebhookSignature(rawBody, signature, secret)
	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderPagarme,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		_ = counter.AddWebhookOutcome(counter.OutcomeDuplicate)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = counter.AddWebhookOutcome(counter.OutcomeInvalidSignature)
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	evt, err := billing.ParseWebhookEvent(eventType, rawBody)
	if err != nil {
		_ = counter.AddWebhookOutcome(counter.OutcomeParseError)
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	req, err := svc.HandleProviderEvent(ctx, evt, string(rawBody))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("no local account for webhook user"))
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
		}
		_ = counter.AddWebhookOutcome(counter.OutcomeFailed)
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
	}

	_ = counter.AddWebhookOutcome(counter.OutcomeProcessed)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":         true,
		"event_type": req.EventType,
		"handled":    req.Account != nil,
	})
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
