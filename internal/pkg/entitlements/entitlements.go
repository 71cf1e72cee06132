package entitlements

import (
	"strings"

	"github.com/DanielKrohn/InkPress/app/models"
)

// Allowances are the feature limits a subscription tier grants.
type Allowances struct {
	MaxPublishedPosts int  `json:"max_published_posts"` // -1 means unlimited
	MaxStorageMB      int  `json:"max_storage_mb"`
	CustomDomain      bool `json:"custom_domain"`
	APIAccess         bool `json:"api_access"`
	PrioritySupport   bool `json:"priority_support"`
}

// ForTier returns the allowances for a subscription tier. Unknown tiers get
// the free allowances.
func ForTier(tier string) Allowances {
	switch strings.ToLower(tier) {
	case models.TierEnterprise:
		return Allowances{MaxPublishedPosts: -1, MaxStorageMB: 102400, CustomDomain: true, APIAccess: true, PrioritySupport: true}
	case models.TierPremium:
		return Allowances{MaxPublishedPosts: -1, MaxStorageMB: 10240, CustomDomain: true, APIAccess: true}
	case models.TierBasic:
		return Allowances{MaxPublishedPosts: 100, MaxStorageMB: 1024, CustomDomain: true}
	default:
		return Allowances{MaxPublishedPosts: 10, MaxStorageMB: 100}
	}
}

// Effective combines the user's stored tier with their live access window:
// an expired window always falls back to the free allowances, no matter what
// tier column is still on the row. While the window is active the stored tier
// wins, so basic and enterprise accounts keep their own limits.
func Effective(user *models.User, windowTier string) Allowances {
	if user == nil || strings.EqualFold(windowTier, models.TierFree) {
		return ForTier(models.TierFree)
	}
	if user.SubscriptionTier != "" && !strings.EqualFold(user.SubscriptionTier, models.TierFree) {
		return ForTier(user.SubscriptionTier)
	}
	return ForTier(windowTier)
}
