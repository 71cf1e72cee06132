package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/lifecycle"
)

var svcNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	user          *models.User
	subscriptions map[string]*models.Subscription
	plans         []models.BillingPlan
	userUpdates   map[string]interface{}
	upserted      *models.Subscription
	webhookEvents map[string]*models.BillingWebhookEvent
}

func newFakeRepo(user *models.User) *fakeRepo {
	return &fakeRepo{
		user:          user,
		subscriptions: map[string]*models.Subscription{},
		webhookEvents: map[string]*models.BillingWebhookEvent{},
	}
}

func (r *fakeRepo) GetUserByID(userID uint) (*models.User, error) {
	if r.user == nil || r.user.ID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *fakeRepo) UpdateUserColumns(userID uint, updates map[string]interface{}) error {
	r.userUpdates = updates
	return nil
}

func (r *fakeRepo) UpsertSubscription(sub *models.Subscription) error {
	r.upserted = sub
	r.subscriptions[sub.ProviderSubscriptionID] = sub
	return nil
}

func (r *fakeRepo) GetSubscriptionByProviderID(provider, providerSubscriptionID string) (*models.Subscription, error) {
	sub, ok := r.subscriptions[providerSubscriptionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (r *fakeRepo) GetPlanByID(planID uint) (*models.BillingPlan, error) {
	for i := range r.plans {
		if r.plans[i].ID == planID {
			return &r.plans[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListActivePlans() ([]models.BillingPlan, error) {
	return r.plans, nil
}

func (r *fakeRepo) CreatePlan(plan *models.BillingPlan) error {
	r.plans = append(r.plans, *plan)
	return nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := r.webhookEvents[key]; ok {
		return false, existing, nil
	}
	event.ID = uint(len(r.webhookEvents) + 1)
	r.webhookEvents[key] = event
	return true, event, nil
}

func (r *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	return nil
}

type fakeScheduler struct {
	revocations []time.Time
	winbacks    []time.Duration
}

func (s *fakeScheduler) ScheduleAccessRevocation(userID uint, notBefore time.Time) error {
	s.revocations = append(s.revocations, notBefore)
	return nil
}

func (s *fakeScheduler) ScheduleWinbackEmail(userID uint, delay time.Duration) error {
	s.winbacks = append(s.winbacks, delay)
	return nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return svcNow }
	return svc
}

func TestHandleProviderEventCreated(t *testing.T) {
	repo := newFakeRepo(&models.User{ID: 42, SubscriptionTier: models.TierFree})
	svc := newTestService(repo)

	next := svcNow.AddDate(0, 1, 0)
	evt := lifecycle.Event{
		Type:       lifecycle.EventCreated,
		UserID:     42,
		OccurredAt: svcNow,
		Payload: lifecycle.CreatedPayload{
			SubscriptionID:  "sub_abc",
			PlanRef:         "plan_9",
			PlanAmount:      4999,
			BillingInterval: "month",
			NextBillingAt:   &next,
		},
	}

	req, err := svc.HandleProviderEvent(context.Background(), evt, `{"raw":true}`)
	if err != nil {
		t.Fatal(err)
	}
	if !req.HasFlag(lifecycle.FlagSendWelcomeEmail) {
		t.Fatalf("flags = %v", req.Flags)
	}
	if repo.userUpdates["subscription_status"] != models.SubscriptionStatusActive {
		t.Fatalf("user updates = %v", repo.userUpdates)
	}
	if repo.upserted == nil {
		t.Fatal("subscription snapshot not upserted")
	}
	if repo.upserted.PlanRef != "plan_9" || repo.upserted.BillingInterval != models.BillingIntervalMonth {
		t.Fatalf("upserted = %+v", repo.upserted)
	}
	if repo.upserted.RawPayloadJSON != `{"raw":true}` {
		t.Fatalf("raw payload = %q", repo.upserted.RawPayloadJSON)
	}
}

func TestHandleProviderEventChargedExtendsAccess(t *testing.T) {
	currentEnd := svcNow.AddDate(0, 0, 5)
	repo := newFakeRepo(&models.User{
		ID:                 42,
		SubscriptionTier:   models.TierPremium,
		SubscriptionEndsAt: &currentEnd,
		FailedPaymentCount: 1,
	})
	repo.subscriptions["sub_abc"] = &models.Subscription{
		UserID:                 42,
		Provider:               models.BillingProviderPagarme,
		ProviderSubscriptionID: "sub_abc",
		PlanRef:                "plan_9",
		Tier:                   models.TierPremium,
		BillingInterval:        models.BillingIntervalMonth,
		Status:                 models.SubscriptionStatusPastDue,
	}
	svc := newTestService(repo)

	evt := lifecycle.Event{
		Type:       lifecycle.EventCharged,
		UserID:     42,
		OccurredAt: svcNow,
		Payload:    lifecycle.ChargedPayload{SubscriptionID: "sub_abc", Amount: 4999},
	}

	if _, err := svc.HandleProviderEvent(context.Background(), evt, "{}"); err != nil {
		t.Fatal(err)
	}

	// Active window extends additively by the stored monthly interval.
	wantEnd := currentEnd.AddDate(0, 0, 30)
	gotEnd, ok := repo.userUpdates["subscription_ends_at"].(time.Time)
	if !ok || !gotEnd.Equal(wantEnd) {
		t.Fatalf("subscription_ends_at = %v, want %v", repo.userUpdates["subscription_ends_at"], wantEnd)
	}
	if count, ok := repo.userUpdates["failed_payment_count"].(int); !ok || count != 0 {
		t.Fatalf("failed_payment_count = %v", repo.userUpdates["failed_payment_count"])
	}
	// Plan details carry over from the stored snapshot.
	if repo.upserted.PlanRef != "plan_9" || repo.upserted.Tier != models.TierPremium {
		t.Fatalf("upserted carryover = %+v", repo.upserted)
	}
	if repo.upserted.Status != models.SubscriptionStatusActive {
		t.Fatalf("upserted status = %q", repo.upserted.Status)
	}
}

func TestHandleProviderEventThirdFailureSuspends(t *testing.T) {
	repo := newFakeRepo(&models.User{ID: 42, FailedPaymentCount: 2})
	svc := newTestService(repo)

	evt := lifecycle.Event{
		Type:       lifecycle.EventChargeFailed,
		UserID:     42,
		OccurredAt: svcNow,
		Payload:    lifecycle.ChargeFailedPayload{SubscriptionID: "sub_abc", Reason: "card declined"},
	}

	req, err := svc.HandleProviderEvent(context.Background(), evt, "{}")
	if err != nil {
		t.Fatal(err)
	}
	if repo.userUpdates["subscription_status"] != models.SubscriptionStatusSuspended {
		t.Fatalf("status = %v", repo.userUpdates["subscription_status"])
	}
	if !req.HasFlag(lifecycle.FlagSuspendAccess) {
		t.Fatalf("flags = %v", req.Flags)
	}
	if req.ChurnRisk != lifecycle.ChurnRiskCritical {
		t.Fatalf("churn risk = %q", req.ChurnRisk)
	}
}

func TestHandleProviderEventCanceledSchedulesFollowUps(t *testing.T) {
	ends := svcNow.AddDate(0, 0, 14)
	repo := newFakeRepo(&models.User{ID: 42, SubscriptionEndsAt: &ends})
	sched := &fakeScheduler{}
	svc := newTestService(repo).WithScheduler(sched)

	evt := lifecycle.Event{
		Type:       lifecycle.EventCanceled,
		UserID:     42,
		OccurredAt: svcNow,
		Payload:    lifecycle.CanceledPayload{SubscriptionID: "sub_abc"},
	}

	if _, err := svc.HandleProviderEvent(context.Background(), evt, "{}"); err != nil {
		t.Fatal(err)
	}
	if len(sched.revocations) != 1 || !sched.revocations[0].Equal(ends) {
		t.Fatalf("revocations = %v, want one at window end %v", sched.revocations, ends)
	}
	if len(sched.winbacks) != 1 {
		t.Fatalf("winbacks = %v", sched.winbacks)
	}
}

func TestHandleProviderEventUnknownUser(t *testing.T) {
	svc := newTestService(newFakeRepo(nil))
	evt := lifecycle.Event{Type: lifecycle.EventCharged, UserID: 7, Payload: lifecycle.ChargedPayload{SubscriptionID: "sub_x"}}
	if _, err := svc.HandleProviderEvent(context.Background(), evt, "{}"); err != gorm.ErrRecordNotFound {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestRecordWebhookEvent(t *testing.T) {
	repo := newFakeRepo(nil)
	svc := newTestService(repo)
	ctx := context.Background()

	created, stored, err := svc.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        "Pagarme",
		ProviderEventID: "evt_1",
		EventType:       "subscription.charged",
		PayloadJSON:     "{}",
		SignatureValid:  true,
	})
	if err != nil || !created {
		t.Fatalf("first delivery: created=%v err=%v", created, err)
	}
	if stored.Provider != "pagarme" {
		t.Fatalf("provider not normalized: %q", stored.Provider)
	}

	created, _, err = svc.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        "pagarme",
		ProviderEventID: "evt_1",
		PayloadJSON:     "{}",
	})
	if err != nil || created {
		t.Fatalf("replay must dedupe: created=%v err=%v", created, err)
	}
}

func TestRecordWebhookEventHashFallback(t *testing.T) {
	repo := newFakeRepo(nil)
	svc := newTestService(repo)

	_, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    "pagarme",
		PayloadJSON: `{"id":"sub_123"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stored.ProviderEventID, "hash:") {
		t.Fatalf("event id = %q, want hash fallback", stored.ProviderEventID)
	}

	// The same body replayed without an id maps to the same hash.
	created, _, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    "pagarme",
		PayloadJSON: `{"id":"sub_123"}`,
	})
	if err != nil || created {
		t.Fatalf("hash replay must dedupe: created=%v err=%v", created, err)
	}
}

func TestIntervalDays(t *testing.T) {
	tests := []struct {
		interval string
		want     int
	}{
		{models.BillingIntervalDay, 1},
		{models.BillingIntervalWeek, 7},
		{models.BillingIntervalMonth, 30},
		{models.BillingIntervalYear, 365},
		{"", 30},
	}
	for _, tt := range tests {
		if got := intervalDays(tt.interval); got != tt.want {
			t.Fatalf("intervalDays(%q) = %d, want %d", tt.interval, got, tt.want)
		}
	}
}
