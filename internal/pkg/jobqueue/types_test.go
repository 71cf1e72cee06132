package jobqueue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Access Revocation", JobTypeAccessRevocation, "access_revocation"},
		{"Winback Email", JobTypeWinbackEmail, "winback_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{
		ID:         "job-1",
		Type:       JobTypeAccessRevocation,
		Status:     JobStatusPending,
		MaxRetries: 3,
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("redis unavailable")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "redis unavailable", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestJobIsRetryableExhausted(t *testing.T) {
	job := &Job{Status: JobStatusFailed, RetryCount: 3, MaxRetries: 3}
	assert.False(t, job.IsRetryable())

	job.Status = JobStatusPending
	job.RetryCount = 0
	assert.False(t, job.IsRetryable(), "only failed jobs retry")
}

func TestJobIsDue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	job := &Job{}
	assert.True(t, job.IsDue(now), "no NotBefore means immediately due")

	future := now.Add(time.Hour)
	job.NotBefore = &future
	assert.False(t, job.IsDue(now))
	assert.True(t, job.IsDue(future))
	assert.True(t, job.IsDue(future.Add(time.Minute)))
}

func TestAccessRevocationPayloadRoundTrip(t *testing.T) {
	payload := AccessRevocationJobPayload{UserID: 42}

	got, err := AccessRevocationJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.UserID)

	// Redis round trips maps through JSON, numbers come back as float64.
	raw, err := json.Marshal(payload.ToMap())
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err = AccessRevocationJobPayloadFromMap(decoded)
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.UserID)
}

func TestWinbackEmailPayloadRoundTrip(t *testing.T) {
	payload := WinbackEmailJobPayload{UserID: 7}
	got, err := WinbackEmailJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.UserID)
}
