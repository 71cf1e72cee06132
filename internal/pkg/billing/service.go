package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/accesstime"
	"github.com/DanielKrohn/InkPress/internal/pkg/lifecycle"
	"github.com/DanielKrohn/InkPress/internal/pkg/payment"
)

// Notifier acts on the business flags a processed event produced. Dispatch is
// best-effort: failures are logged by the caller, never retried.
type Notifier interface {
	Dispatch(ctx context.Context, user *models.User, req lifecycle.UpdateRequest) error
}

// Scheduler enqueues deferred follow-up work for processed events.
type Scheduler interface {
	ScheduleAccessRevocation(userID uint, notBefore time.Time) error
	ScheduleWinbackEmail(userID uint, delay time.Duration) error
}

// Service orchestrates webhook processing: it loads prior account state, runs
// the pure lifecycle/payment cores, and persists whatever they return.
type Service struct {
	repo      Repository
	notifier  Notifier
	scheduler Scheduler
	now       func() time.Time
}

// winbackDelay is how long after a cancellation the winback email goes out.
const winbackDelay = 7 * 24 * time.Hour

// NewService creates a billing service from an injected repository and
// notifier. A nil notifier disables business-flag dispatch.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, notifier Notifier) *Service {
	return NewService(NewRepository(db), notifier)
}

// WithScheduler attaches a job scheduler for deferred flags. A nil scheduler
// means scheduling flags are logged and dropped.
func (s *Service) WithScheduler(scheduler Scheduler) *Service {
	s.scheduler = scheduler
	return s
}

// HandleProviderEvent applies one parsed lifecycle event: account column
// updates, subscription snapshot upsert, access-window extension and flag
// dispatch. The returned UpdateRequest is what the pure core decided, useful
// for response bodies and tests.
func (s *Service) HandleProviderEvent(ctx context.Context, evt lifecycle.Event, rawPayload string) (lifecycle.UpdateRequest, error) {
	user, err := s.repo.GetUserByID(evt.UserID)
	if err != nil {
		return lifecycle.UpdateRequest{}, err
	}

	prior := lifecycle.PriorAccountState{
		Known:              true,
		FailedPaymentCount: user.FailedPaymentCount,
		SubscriptionTier:   user.SubscriptionTier,
		SubscriptionEndsAt: user.SubscriptionEndsAt,
		LastChargedAt:      user.LastChargedAt,
	}

	req := lifecycle.Process(evt, prior, s.now())
	for _, w := range req.Warnings {
		log.Warnf("[Billing] user %d event %s: %s", evt.UserID, evt.Type, w)
	}

	existing, err := s.existingSubscription(evt)
	if err != nil {
		return req, err
	}

	if err := s.applyAccountUpdate(user, &req, existing); err != nil {
		return req, err
	}
	if err := s.applySubscriptionUpdate(evt, &req, existing, rawPayload); err != nil {
		return req, err
	}

	if s.notifier != nil && len(req.Flags) > 0 {
		if err := s.notifier.Dispatch(ctx, user, req); err != nil {
			log.Errorf("[Billing] notification dispatch for user %d failed: %v", user.ID, err)
		}
	}
	s.scheduleFollowUps(user, req)
	return req, nil
}

// scheduleFollowUps turns deferred business flags into queued jobs. Failures
// are logged, not returned: the account update already happened.
func (s *Service) scheduleFollowUps(user *models.User, req lifecycle.UpdateRequest) {
	if s.scheduler == nil {
		if req.HasFlag(lifecycle.FlagScheduleAccessRevocation) || req.HasFlag(lifecycle.FlagTriggerWinback) {
			log.Warnf("[Billing] no scheduler configured, dropping deferred flags for user %d", user.ID)
		}
		return
	}

	if req.HasFlag(lifecycle.FlagScheduleAccessRevocation) {
		notBefore := s.now()
		if user.SubscriptionEndsAt != nil && user.SubscriptionEndsAt.After(notBefore) {
			notBefore = *user.SubscriptionEndsAt
		}
		if err := s.scheduler.ScheduleAccessRevocation(user.ID, notBefore); err != nil {
			log.Errorf("[Billing] failed to schedule access revocation for user %d: %v", user.ID, err)
		}
	}
	if req.HasFlag(lifecycle.FlagTriggerWinback) {
		if err := s.scheduler.ScheduleWinbackEmail(user.ID, winbackDelay); err != nil {
			log.Errorf("[Billing] failed to schedule winback email for user %d: %v", user.ID, err)
		}
	}
}

func (s *Service) existingSubscription(evt lifecycle.Event) (*models.Subscription, error) {
	subID := evt.SubscriptionID()
	if subID == "" {
		return nil, nil
	}
	sub, err := s.repo.GetSubscriptionByProviderID(models.BillingProviderPagarme, subID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) applyAccountUpdate(user *models.User, req *lifecycle.UpdateRequest, existing *models.Subscription) error {
	if req.Account == nil {
		return nil
	}

	updates := map[string]interface{}{}
	if req.Account.SubscriptionStatus != "" {
		updates["subscription_status"] = req.Account.SubscriptionStatus
	}
	if req.Account.SubscriptionTier != "" {
		updates["subscription_tier"] = req.Account.SubscriptionTier
	}
	if req.Account.FailedPaymentCount != nil {
		updates["failed_payment_count"] = *req.Account.FailedPaymentCount
	}
	if req.Account.LastChargedAt != nil {
		updates["last_charged_at"] = req.Account.LastChargedAt
	}

	if req.HasFlag(lifecycle.FlagExtendAccess) {
		days := intervalDays(subscriptionInterval(existing))
		ext := accesstime.CalculateFromPayment(user.SubscriptionEndsAt, days, req.OccurredAt)
		updates["subscription_ends_at"] = ext.NewEndDate
		updates["subscription_tier"] = ext.NewTier
	}

	return s.repo.UpdateUserColumns(user.ID, updates)
}

func (s *Service) applySubscriptionUpdate(evt lifecycle.Event, req *lifecycle.UpdateRequest, existing *models.Subscription, rawPayload string) error {
	if req.Subscription == nil {
		return nil
	}
	subID := evt.SubscriptionID()
	if subID == "" {
		log.Warnf("[Billing] event %s for user %d carries no subscription id, skipping snapshot", evt.Type, evt.UserID)
		return nil
	}

	sub := models.Subscription{
		UserID:                 evt.UserID,
		Provider:               models.BillingProviderPagarme,
		ProviderSubscriptionID: subID,
		Status:                 req.Subscription.Status,
		Tier:                   req.Subscription.Tier,
		NextBillingAt:          req.Subscription.NextBillingAt,
		CanceledAt:             req.Subscription.CanceledAt,
		RawPayloadJSON:         rawPayload,
	}

	// Events other than subscription.created do not repeat plan details;
	// carry them over from the stored snapshot instead of blanking them.
	if created, ok := evt.Payload.(lifecycle.CreatedPayload); ok {
		sub.PlanRef = created.PlanRef
		sub.BillingInterval, _, _ = payment.MapBillingInterval(created.BillingInterval)
	} else if existing != nil {
		sub.PlanRef = existing.PlanRef
		sub.BillingInterval = existing.BillingInterval
		if sub.Tier == "" {
			sub.Tier = existing.Tier
		}
		if sub.NextBillingAt == nil {
			sub.NextBillingAt = existing.NextBillingAt
		}
	}
	if sub.Tier == "" {
		sub.Tier = models.TierFree
	}
	if sub.BillingInterval == "" {
		sub.BillingInterval = models.BillingIntervalMonth
	}

	return s.repo.UpsertSubscription(&sub)
}

// ResolvePlan returns the derived pricing/flow view for a single plan.
func (s *Service) ResolvePlan(ctx context.Context, planID uint) (payment.Resolution, error) {
	_ = ctx
	plan, err := s.repo.GetPlanByID(planID)
	if err != nil {
		return payment.Resolution{}, err
	}
	return payment.ResolvePlanPricingAndFlow(plan, s.now()), nil
}

// ListPlans returns the active plan catalog.
func (s *Service) ListPlans(ctx context.Context) ([]models.BillingPlan, error) {
	_ = ctx
	return s.repo.ListActivePlans()
}

// CreatePlan validates and stores a new billing plan.
func (s *Service) CreatePlan(ctx context.Context, plan *models.BillingPlan) error {
	_ = ctx
	if err := plan.Validate(); err != nil {
		return err
	}
	return s.repo.CreatePlan(plan)
}

// PlansReport aggregates the active catalog for admin reporting.
func (s *Service) PlansReport(ctx context.Context) (payment.RoutingAnalysis, error) {
	_ = ctx
	plans, err := s.repo.ListActivePlans()
	if err != nil {
		return payment.RoutingAnalysis{}, err
	}
	return payment.AnalyzeRouting(plans, s.now()), nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

func subscriptionInterval(sub *models.Subscription) string {
	if sub == nil {
		return models.BillingIntervalMonth
	}
	return sub.BillingInterval
}

// intervalDays converts a normalized billing interval into the access days
// one paid cycle grants.
func intervalDays(interval string) int {
	switch interval {
	case models.BillingIntervalDay:
		return 1
	case models.BillingIntervalWeek:
		return 7
	case models.BillingIntervalYear:
		return 365
	default:
		return 30
	}
}
