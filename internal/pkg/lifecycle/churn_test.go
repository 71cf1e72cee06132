package lifecycle

import (
	"testing"
	"time"
)

func TestAssessChurnRisk(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	recent := now.Add(-10 * 24 * time.Hour)
	stale := now.Add(-120 * 24 * time.Hour)

	tests := []struct {
		name          string
		failureCount  int
		lastChargedAt *time.Time
		want          ChurnRisk
	}{
		{"no failures", 0, &recent, ChurnRiskLow},
		{"one failure recent charge", 1, &recent, ChurnRiskMedium},
		{"one failure stale charge", 1, &stale, ChurnRiskHigh},
		{"one failure never charged", 1, nil, ChurnRiskHigh},
		{"two failures", 2, &recent, ChurnRiskHigh},
		{"at suspension threshold", 3, &recent, ChurnRiskCritical},
		{"beyond threshold", 5, nil, ChurnRiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssessChurnRisk(tt.failureCount, tt.lastChargedAt, now); got != tt.want {
				t.Fatalf("AssessChurnRisk(%d) = %q, want %q", tt.failureCount, got, tt.want)
			}
		})
	}
}
