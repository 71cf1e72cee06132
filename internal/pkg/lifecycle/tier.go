package lifecycle

import (
	"strings"

	"github.com/DanielKrohn/InkPress/app/models"
)

// Amount thresholds (minor currency units) for deriving a tier when the plan
// carries no explicit tier tag.
const (
	tierFreeMaxAmount    = 999
	tierBasicMaxAmount   = 2999
	tierPremiumMaxAmount = 9999
)

// DeriveTier resolves the access tier for a new subscription. An explicit
// tier tag in the plan metadata wins; otherwise the plan amount decides.
func DeriveTier(tierTag string, amount int64) string {
	switch strings.ToLower(strings.TrimSpace(tierTag)) {
	case models.TierFree:
		return models.TierFree
	case models.TierBasic:
		return models.TierBasic
	case models.TierPremium:
		return models.TierPremium
	case models.TierEnterprise:
		return models.TierEnterprise
	}

	switch {
	case amount <= tierFreeMaxAmount:
		return models.TierFree
	case amount <= tierBasicMaxAmount:
		return models.TierBasic
	case amount <= tierPremiumMaxAmount:
		return models.TierPremium
	default:
		return models.TierEnterprise
	}
}
