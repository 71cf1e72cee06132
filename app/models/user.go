package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ROLE_USER       = "user"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email  string `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Role   string `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status string `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`

	// Access window. The tier column is a convenience copy; access checks
	// recompute it from SubscriptionEndsAt and never trust the stored value.
	SubscriptionEndsAt *time.Time `gorm:"type:timestamp;default:null" json:"subscription_ends_at,omitempty"`
	SubscriptionTier   string     `gorm:"type:varchar(50);not null;default:'free';index" json:"subscription_tier"`
	SubscriptionStatus string     `gorm:"type:varchar(32);not null;default:''" json:"subscription_status"`
	FailedPaymentCount int        `gorm:"not null;default:0" json:"failed_payment_count"`
	LastChargedAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_charged_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}
