package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DanielKrohn/InkPress/internal/pkg/lifecycle"
)

// parse helpers for the provider's webhook JSON. Payloads are accessed
// defensively: missing fields degrade to zero values, only a missing user
// reference is a hard error because the event cannot be attributed.

type providerCustomer struct {
	Code string `json:"code"`
}

type providerPlan struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Interval string            `json:"interval"`
	Metadata map[string]string `json:"metadata"`
}

type providerSubscriptionRef struct {
	ID            string            `json:"id"`
	NextBillingAt *time.Time        `json:"next_billing_at"`
	Customer      *providerCustomer `json:"customer"`
}

type providerEventEnvelope struct {
	ID            string                   `json:"id"`
	Plan          *providerPlan            `json:"plan"`
	Amount        int64                    `json:"amount"`
	PaymentMethod string                   `json:"payment_method"`
	NextBillingAt *time.Time               `json:"next_billing_at"`
	CanceledAt    *time.Time               `json:"canceled_at"`
	CreatedAt     *time.Time               `json:"created_at"`
	Customer      *providerCustomer        `json:"customer"`
	Subscription  *providerSubscriptionRef `json:"subscription"`
	Metadata      map[string]string        `json:"metadata"`
	LastTransaction *struct {
		AcquirerMessage string `json:"acquirer_message"`
	} `json:"last_transaction"`
}

// ParseWebhookEvent maps a provider webhook delivery to a typed lifecycle
// event. Event types without dedicated handling still parse successfully and
// carry an UnhandledPayload so they can be recorded and acknowledged.
func ParseWebhookEvent(eventType string, body []byte) (lifecycle.Event, error) {
	et := lifecycle.EventType(strings.ToLower(strings.TrimSpace(eventType)))
	if !isKnownEventType(et) {
		return lifecycle.Event{}, fmt.Errorf("unknown event type %q", eventType)
	}

	var env providerEventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return lifecycle.Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}

	userID, err := env.userID()
	if err != nil {
		return lifecycle.Event{}, err
	}

	evt := lifecycle.Event{
		Type:   et,
		UserID: userID,
	}
	if env.CreatedAt != nil {
		evt.OccurredAt = *env.CreatedAt
	}

	switch et {
	case lifecycle.EventCreated:
		p := lifecycle.CreatedPayload{
			SubscriptionID: env.ID,
			NextBillingAt:  env.NextBillingAt,
		}
		if env.Plan != nil {
			p.PlanRef = env.Plan.ID
			p.PlanAmount = env.Plan.Amount
			p.BillingInterval = env.Plan.Interval
			p.PlanTierTag = env.Plan.Metadata["tier"]
		}
		evt.Payload = p
	case lifecycle.EventCharged:
		p := lifecycle.ChargedPayload{
			SubscriptionID: env.subscriptionID(),
			Amount:         env.Amount,
			PaymentMethod:  env.PaymentMethod,
			NextBillingAt:  env.NextBillingAt,
		}
		if p.NextBillingAt == nil && env.Subscription != nil {
			p.NextBillingAt = env.Subscription.NextBillingAt
		}
		evt.Payload = p
	case lifecycle.EventChargeFailed:
		p := lifecycle.ChargeFailedPayload{
			SubscriptionID: env.subscriptionID(),
			Amount:         env.Amount,
			FailureCount:   env.failureCount(),
		}
		if env.LastTransaction != nil {
			p.Reason = env.LastTransaction.AcquirerMessage
		}
		evt.Payload = p
	case lifecycle.EventCanceled:
		evt.Payload = lifecycle.CanceledPayload{
			SubscriptionID: env.ID,
			CanceledAt:     env.CanceledAt,
		}
	case lifecycle.EventReactivated:
		evt.Payload = lifecycle.ReactivatedPayload{SubscriptionID: env.ID}
	default:
		evt.Payload = lifecycle.UnhandledPayload{Type: et, Raw: body}
	}
	return evt, nil
}

func (e *providerEventEnvelope) userID() (uint, error) {
	code := ""
	if e.Customer != nil {
		code = strings.TrimSpace(e.Customer.Code)
	}
	if code == "" && e.Subscription != nil && e.Subscription.Customer != nil {
		code = strings.TrimSpace(e.Subscription.Customer.Code)
	}
	if code == "" {
		return 0, errors.New("webhook payload carries no customer code")
	}
	id, err := strconv.ParseUint(code, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid customer code %q", code)
	}
	return uint(id), nil
}

func (e *providerEventEnvelope) subscriptionID() string {
	if e.Subscription != nil && e.Subscription.ID != "" {
		return e.Subscription.ID
	}
	return e.ID
}

func (e *providerEventEnvelope) failureCount() int {
	raw, ok := e.Metadata["failure_count"]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func isKnownEventType(et lifecycle.EventType) bool {
	for _, known := range lifecycle.KnownEventTypes {
		if et == known {
			return true
		}
	}
	return false
}
