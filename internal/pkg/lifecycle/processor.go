package lifecycle

import (
	"fmt"
	"time"

	"github.com/DanielKrohn/InkPress/app/models"
)

// BusinessFlag asks an external collaborator to act (send an email, toggle
// features). The processor only emits flags; it never performs the action.
type BusinessFlag string

const (
	FlagSendWelcomeEmail         BusinessFlag = "send-welcome-email"
	FlagActivateFeatures         BusinessFlag = "activate-features"
	FlagSendPaymentConfirmation  BusinessFlag = "send-payment-confirmation"
	FlagResetFailureCount        BusinessFlag = "reset-failure-count"
	FlagExtendAccess             BusinessFlag = "extend-access"
	FlagSendPaymentFailedEmail   BusinessFlag = "send-payment-failed-email"
	FlagSuspendAccess            BusinessFlag = "suspend-access"
	FlagSendCancellationEmail    BusinessFlag = "send-cancellation-email"
	FlagScheduleAccessRevocation BusinessFlag = "schedule-access-revocation"
	FlagTriggerWinback           BusinessFlag = "trigger-winback"
	FlagSendReactivationEmail    BusinessFlag = "send-reactivation-email"
	FlagRestoreFeatures          BusinessFlag = "restore-features"
)

// failureSuspendThreshold is the failed-charge count at which an account
// moves from past_due to suspended.
const failureSuspendThreshold = 3

// PriorAccountState carries the durable account state a processing decision
// depends on. The caller loads it atomically before invoking Process; the
// processor itself never reads storage.
type PriorAccountState struct {
	Known              bool
	FailedPaymentCount int
	SubscriptionTier   string
	SubscriptionEndsAt *time.Time
	LastChargedAt      *time.Time
}

// AccountUpdate lists user-account columns to change. Nil pointer fields and
// empty strings mean "leave untouched".
type AccountUpdate struct {
	SubscriptionStatus string
	SubscriptionTier   string
	FailedPaymentCount *int
	LastChargedAt      *time.Time
}

// SubscriptionUpdate is the snapshot to upsert into the subscription record.
type SubscriptionUpdate struct {
	Status        string
	Tier          string
	NextBillingAt *time.Time
	CanceledAt    *time.Time
}

// UpdateRequest is the complete effect of one lifecycle event: account column
// updates, a subscription snapshot, and flags for external collaborators.
// Unhandled event types produce only the base fields with Account and
// Subscription nil.
type UpdateRequest struct {
	UserID       uint
	EventType    EventType
	OccurredAt   time.Time
	Account      *AccountUpdate
	Subscription *SubscriptionUpdate
	Flags        []BusinessFlag
	ChurnRisk    ChurnRisk
	Warnings     []string
}

// HasFlag reports whether the request carries the given business flag.
func (r *UpdateRequest) HasFlag(flag BusinessFlag) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Process maps one lifecycle event to its effects. It is pure: prior account
// state arrives as a value, the evaluation instant is explicit, and the
// result is returned instead of applied. The mapping is total; event types
// without dedicated handling fall through to a base no-op update.
func Process(evt Event, prior PriorAccountState, now time.Time) UpdateRequest {
	req := UpdateRequest{
		UserID:     evt.UserID,
		EventType:  evt.Type,
		OccurredAt: now,
	}
	if !evt.OccurredAt.IsZero() {
		req.OccurredAt = evt.OccurredAt
	}

	switch p := evt.Payload.(type) {
	case CreatedPayload:
		processCreated(&req, p)
	case ChargedPayload:
		processCharged(&req, p)
	case ChargeFailedPayload:
		processChargeFailed(&req, p, prior, now)
	case CanceledPayload:
		processCanceled(&req, p)
	case ReactivatedPayload:
		processReactivated(&req)
	case UnhandledPayload:
		// Recorded and acknowledged, no account mutation.
	default:
		req.Warnings = append(req.Warnings, fmt.Sprintf("event type %q carries no payload mapping, treating as no-op", evt.Type))
	}
	return req
}

func processCreated(req *UpdateRequest, p CreatedPayload) {
	tier := DeriveTier(p.PlanTierTag, p.PlanAmount)
	req.Account = &AccountUpdate{
		SubscriptionStatus: models.SubscriptionStatusActive,
		SubscriptionTier:   tier,
	}
	req.Subscription = &SubscriptionUpdate{
		Status:        models.SubscriptionStatusActive,
		Tier:          tier,
		NextBillingAt: p.NextBillingAt,
	}
	req.Flags = []BusinessFlag{FlagSendWelcomeEmail, FlagActivateFeatures}
}

func processCharged(req *UpdateRequest, p ChargedPayload) {
	zero := 0
	req.Account = &AccountUpdate{
		SubscriptionStatus: models.SubscriptionStatusActive,
		FailedPaymentCount: &zero,
		LastChargedAt:      &req.OccurredAt,
	}
	req.Subscription = &SubscriptionUpdate{
		Status:        models.SubscriptionStatusActive,
		NextBillingAt: p.NextBillingAt,
	}
	req.Flags = []BusinessFlag{FlagSendPaymentConfirmation, FlagResetFailureCount, FlagExtendAccess}
}

func processChargeFailed(req *UpdateRequest, p ChargeFailedPayload, prior PriorAccountState, now time.Time) {
	// Prior durable state wins over whatever count the provider echoes back;
	// with neither, assume this is the first failure.
	count := 1
	switch {
	case prior.Known:
		count = prior.FailedPaymentCount + 1
	case p.FailureCount > 0:
		count = p.FailureCount + 1
	}

	status := models.SubscriptionStatusPastDue
	if count >= failureSuspendThreshold {
		status = models.SubscriptionStatusSuspended
	}

	req.Account = &AccountUpdate{
		SubscriptionStatus: status,
		FailedPaymentCount: &count,
	}
	req.Subscription = &SubscriptionUpdate{Status: status}
	req.Flags = []BusinessFlag{FlagSendPaymentFailedEmail}
	if status == models.SubscriptionStatusSuspended {
		req.Flags = append(req.Flags, FlagSuspendAccess)
	}
	req.ChurnRisk = AssessChurnRisk(count, prior.LastChargedAt, now)
}

func processCanceled(req *UpdateRequest, p CanceledPayload) {
	canceledAt := req.OccurredAt
	if p.CanceledAt != nil {
		canceledAt = *p.CanceledAt
	}
	req.Account = &AccountUpdate{SubscriptionStatus: models.SubscriptionStatusCanceled}
	req.Subscription = &SubscriptionUpdate{
		Status:     models.SubscriptionStatusCanceled,
		CanceledAt: &canceledAt,
	}
	req.Flags = []BusinessFlag{FlagSendCancellationEmail, FlagScheduleAccessRevocation, FlagTriggerWinback}
}

func processReactivated(req *UpdateRequest) {
	zero := 0
	req.Account = &AccountUpdate{
		SubscriptionStatus: models.SubscriptionStatusActive,
		FailedPaymentCount: &zero,
	}
	req.Subscription = &SubscriptionUpdate{Status: models.SubscriptionStatusActive}
	req.Flags = []BusinessFlag{FlagSendReactivationEmail, FlagRestoreFeatures}
}
