package lifecycle

import "time"

// ChurnRisk is a qualitative estimate of how likely a subscriber is to cancel.
type ChurnRisk string

const (
	ChurnRiskLow      ChurnRisk = "low"
	ChurnRiskMedium   ChurnRisk = "medium"
	ChurnRiskHigh     ChurnRisk = "high"
	ChurnRiskCritical ChurnRisk = "critical"
)

// AssessChurnRisk grades a subscriber by payment failures and recency of the
// last successful charge. Subscribers at the suspension threshold are always
// critical; a single failure is medium unless the account has not charged
// successfully for over 90 days, which bumps it to high.
func AssessChurnRisk(failureCount int, lastChargedAt *time.Time, now time.Time) ChurnRisk {
	staleCharge := lastChargedAt == nil || now.Sub(*lastChargedAt) > 90*24*time.Hour

	switch {
	case failureCount >= failureSuspendThreshold:
		return ChurnRiskCritical
	case failureCount == 2:
		return ChurnRiskHigh
	case failureCount == 1 && staleCharge:
		return ChurnRiskHigh
	case failureCount == 1:
		return ChurnRiskMedium
	default:
		return ChurnRiskLow
	}
}
