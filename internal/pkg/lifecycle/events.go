package lifecycle

import "time"

// EventType enumerates the provider's subscription lifecycle notifications.
type EventType string

const (
	EventCreated       EventType = "subscription.created"
	EventCanceled      EventType = "subscription.canceled"
	EventChargeCreated EventType = "subscription.charge_created"
	EventCharged       EventType = "subscription.charged"
	EventChargeFailed  EventType = "subscription.charge_failed"
	EventTrialEnded    EventType = "subscription.trial_ended"
	EventReactivated   EventType = "subscription.reactivated"
	EventSuspended     EventType = "subscription.suspended"
	EventUpdated       EventType = "subscription.updated"
	EventExpired       EventType = "subscription.expired"
)

// KnownEventTypes lists every event type the processor accepts, handled or not.
var KnownEventTypes = []EventType{
	EventCreated,
	EventCanceled,
	EventChargeCreated,
	EventCharged,
	EventChargeFailed,
	EventTrialEnded,
	EventReactivated,
	EventSuspended,
	EventUpdated,
	EventExpired,
}

// Payload is the closed set of per-event payload shapes. Each event type
// carries exactly one payload variant; webhook parsing builds these from the
// provider's JSON so the processor never touches untyped data.
type Payload interface {
	eventType() EventType
}

// CreatedPayload accompanies subscription.created.
type CreatedPayload struct {
	SubscriptionID  string
	PlanRef         string
	PlanAmount      int64
	PlanTierTag     string
	BillingInterval string
	NextBillingAt   *time.Time
}

// ChargedPayload accompanies subscription.charged.
type ChargedPayload struct {
	SubscriptionID string
	Amount         int64
	PaymentMethod  string
	NextBillingAt  *time.Time
}

// ChargeFailedPayload accompanies subscription.charge_failed. FailureCount is
// the running count the provider reports, zero when it reports none.
type ChargeFailedPayload struct {
	SubscriptionID string
	Amount         int64
	Reason         string
	FailureCount   int
}

// CanceledPayload accompanies subscription.canceled.
type CanceledPayload struct {
	SubscriptionID string
	CanceledAt     *time.Time
}

// ReactivatedPayload accompanies subscription.reactivated.
type ReactivatedPayload struct {
	SubscriptionID string
}

// UnhandledPayload covers the event types the processor deliberately maps to
// a base no-op update: charge_created, trial_ended, suspended, updated and
// expired. The raw payload is kept for the audit record only.
type UnhandledPayload struct {
	Type EventType
	Raw  []byte
}

func (CreatedPayload) eventType() EventType      { return EventCreated }
func (ChargedPayload) eventType() EventType      { return EventCharged }
func (ChargeFailedPayload) eventType() EventType { return EventChargeFailed }
func (CanceledPayload) eventType() EventType     { return EventCanceled }
func (ReactivatedPayload) eventType() EventType  { return EventReactivated }
func (p UnhandledPayload) eventType() EventType  { return p.Type }

// Event is one inbound lifecycle notification, already resolved to a local
// user. Events are ephemeral: processed once, synchronously, never retried by
// this package.
type Event struct {
	Type       EventType
	UserID     uint
	OccurredAt time.Time
	Payload    Payload
}

// SubscriptionID extracts the provider subscription id from the payload,
// empty when the variant carries none.
func (e Event) SubscriptionID() string {
	switch p := e.Payload.(type) {
	case CreatedPayload:
		return p.SubscriptionID
	case ChargedPayload:
		return p.SubscriptionID
	case ChargeFailedPayload:
		return p.SubscriptionID
	case CanceledPayload:
		return p.SubscriptionID
	case ReactivatedPayload:
		return p.SubscriptionID
	default:
		return ""
	}
}
