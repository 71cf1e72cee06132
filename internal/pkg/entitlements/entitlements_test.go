package entitlements

import (
	"testing"

	"github.com/DanielKrohn/InkPress/app/models"
)

func TestForTier(t *testing.T) {
	free := ForTier("free")
	if free.MaxPublishedPosts != 10 || free.CustomDomain || free.APIAccess {
		t.Fatalf("free allowances = %+v", free)
	}

	basic := ForTier("basic")
	if basic.MaxPublishedPosts != 100 || !basic.CustomDomain || basic.APIAccess {
		t.Fatalf("basic allowances = %+v", basic)
	}

	premium := ForTier("Premium")
	if premium.MaxPublishedPosts != -1 || !premium.APIAccess {
		t.Fatalf("premium allowances = %+v", premium)
	}

	enterprise := ForTier("enterprise")
	if !enterprise.PrioritySupport {
		t.Fatalf("enterprise allowances = %+v", enterprise)
	}

	if got := ForTier("platinum"); got != free {
		t.Fatalf("unknown tier must map to free, got %+v", got)
	}
}

func TestEffective(t *testing.T) {
	user := &models.User{SubscriptionTier: models.TierEnterprise}

	// Active window: the stored tier decides.
	got := Effective(user, models.TierPremium)
	if !got.PrioritySupport {
		t.Fatalf("active enterprise user got %+v", got)
	}

	// Expired window: free wins regardless of the stored tier.
	got = Effective(user, models.TierFree)
	if got.CustomDomain || got.APIAccess {
		t.Fatalf("expired user got %+v", got)
	}

	if got := Effective(nil, models.TierPremium); got.APIAccess {
		t.Fatalf("nil user got %+v", got)
	}
}
