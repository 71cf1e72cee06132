package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PlanTypeSubscription = "subscription"
	PlanTypeOneTime      = "one-time"
)

const (
	BillingIntervalDay   = "day"
	BillingIntervalWeek  = "week"
	BillingIntervalMonth = "month"
	BillingIntervalYear  = "year"
)

// MinChargeAmount is the smallest amount (in minor currency units) we are
// willing to charge. Promotional discounts never push a price below this.
const MinChargeAmount int64 = 50

// PromotionalConfig is stored as a serialized JSON column on BillingPlan.
// FinalPrice takes precedence over the legacy absolute PromotionValue.
type PromotionalConfig struct {
	IsActive       bool       `json:"is_active"`
	FinalPrice     int64      `json:"final_price,omitempty"`
	PromotionValue int64      `json:"promotion_value,omitempty"`
	CustomName     string     `json:"custom_name,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// BillingPlan is a sellable plan. Plans are created and edited through the
// admin API; the payment core only ever reads them.
type BillingPlan struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=3,max=150"`
	PlanType        string         `gorm:"type:varchar(20);not null;default:'subscription';index" json:"plan_type" validate:"oneof=subscription one-time"`
	Amount          int64          `gorm:"not null" json:"amount" validate:"gte=0"`
	BillingInterval *string        `gorm:"type:varchar(16);default:null" json:"billing_interval,omitempty" validate:"omitempty,oneof=day week month year"`
	PromoJSON       string         `gorm:"type:text;column:promo_json" json:"-"`
	Metadata        string         `gorm:"type:text" json:"metadata,omitempty"`
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *BillingPlan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// Promo deserializes the promotional config column. A missing or unparseable
// column is treated as "no promotion configured".
func (p *BillingPlan) Promo() *PromotionalConfig {
	raw := strings.TrimSpace(p.PromoJSON)
	if raw == "" {
		return nil
	}
	var cfg PromotionalConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil
	}
	return &cfg
}

func (p *BillingPlan) SetPromo(cfg *PromotionalConfig) error {
	if cfg == nil {
		p.PromoJSON = ""
		return nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	p.PromoJSON = string(raw)
	return nil
}
