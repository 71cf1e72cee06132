package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusSuspended = "suspended"
	SubscriptionStatusCanceled  = "canceled"
	SubscriptionStatusExpired   = "expired"
)

const (
	TierFree       = "free"
	TierBasic      = "basic"
	TierPremium    = "premium"
	TierEnterprise = "enterprise"
)

// Subscription mirrors the payment provider's subscription state for a user.
// One row per provider subscription; webhook processing upserts it.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"not null;index" json:"user_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_provider_subid,unique,priority:2" json:"provider_subscription_id"`
	PlanRef                string     `gorm:"type:varchar(191);not null;default:''" json:"plan_ref"`
	Tier                   string     `gorm:"type:varchar(50);not null;default:'free';index" json:"tier"`
	BillingInterval        string     `gorm:"type:varchar(16);not null;default:'month'" json:"billing_interval"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	NextBillingAt          *time.Time `gorm:"type:timestamp;default:null" json:"next_billing_at,omitempty"`
	CanceledAt             *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	RawPayloadJSON         string     `gorm:"type:longtext" json:"raw_payload_json"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
