package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/DanielKrohn/InkPress/internal/pkg/metrics/counter"
	"github.com/DanielKrohn/InkPress/internal/pkg/statistics"
)

// HandleBillingStats returns cached account aggregates plus the live webhook
// delivery counters.
func HandleBillingStats(c *fiber.Ctx) error {
	data := statistics.GetStatistics()

	outcomes, err := counter.WebhookOutcomes()
	if err != nil {
		log.Errorf("[Stats] reading webhook outcome counters failed: %v", err)
		outcomes = map[string]int64{}
	}
	eventTypes, err := counter.EventTypes()
	if err != nil {
		log.Errorf("[Stats] reading event type counters failed: %v", err)
		eventTypes = map[string]int64{}
	}

	return c.JSON(fiber.Map{
		"accounts":         data,
		"webhook_outcomes": outcomes,
		"event_types":      eventTypes,
	})
}
