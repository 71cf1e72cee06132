package counter

import (
	"context"
	"strconv"

	"github.com/DanielKrohn/InkPress/internal/pkg/cache"
)

const (
	webhookOutcomesKey = "billing:counters:webhook_outcomes"
	eventTypesKey      = "billing:counters:event_types"
)

// Webhook delivery outcomes tracked per request.
const (
	OutcomeReceived         = "received"
	OutcomeDuplicate        = "duplicate"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeParseError       = "parse_error"
	OutcomeProcessed        = "processed"
	OutcomeFailed           = "failed"
)

// AddWebhookOutcome increments the counter for a delivery outcome in Redis
func AddWebhookOutcome(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookOutcomesKey, outcome, 1).Err()
}

// AddEventType increments the counter for a provider event type in Redis
func AddEventType(eventType string) error {
	if eventType == "" {
		return nil
	}
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, eventTypesKey, eventType, 1).Err()
}

// WebhookOutcomes returns the accumulated outcome counters
func WebhookOutcomes() (map[string]int64, error) {
	return readHash(webhookOutcomesKey)
}

// EventTypes returns the accumulated per-event-type counters
func EventTypes() (map[string]int64, error) {
	return readHash(eventTypesKey)
}

func readHash(key string) (map[string]int64, error) {
	ctx := context.Background()
	raw, err := cache.GetClient().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for field, val := range raw {
		n, perr := strconv.ParseInt(val, 10, 64)
		if perr != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
