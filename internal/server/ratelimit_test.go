package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsWithinLimits(t *testing.T) {
	rl := NewRateLimiter(10, 100, 1000, 1<<20)

	for i := 0; i < 5; i++ {
		require.NoError(t, rl.Allow("client-a", 100), "request %d", i)
	}
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	rl := NewRateLimiter(2, 0, 0, 0)

	require.NoError(t, rl.Allow("client-a", 0))
	require.NoError(t, rl.Allow("client-a", 0))

	err := rl.Allow("client-a", 0)
	require.Error(t, err)

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "minute", rlErr.Type)
	assert.Equal(t, 2, rlErr.Limit)
	assert.Positive(t, rlErr.RetryAfter)
}

func TestRateLimiter_HourLimit(t *testing.T) {
	rl := NewRateLimiter(0, 1, 0, 0)

	require.NoError(t, rl.Allow("client-a", 0))

	err := rl.Allow("client-a", 0)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "hour", rlErr.Type)
}

func TestRateLimiter_DailyRequestQuota(t *testing.T) {
	rl := NewRateLimiter(0, 0, 2, 0)

	require.NoError(t, rl.Allow("client-a", 0))
	require.NoError(t, rl.Allow("client-a", 0))

	err := rl.Allow("client-a", 0)
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "requests", quotaErr.Type)
	assert.Equal(t, int64(2), quotaErr.Limit)
	assert.Equal(t, int64(2), quotaErr.Used)
}

func TestRateLimiter_DailyDataQuota(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0, 1000)

	require.NoError(t, rl.Allow("client-a", 600))

	err := rl.Allow("client-a", 600)
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "data", quotaErr.Type)
	assert.Equal(t, int64(600), quotaErr.Used)
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 0, 0, 0)

	require.NoError(t, rl.Allow("client-a", 0))
	require.Error(t, rl.Allow("client-a", 0))

	assert.NoError(t, rl.Allow("client-b", 0))
}

func TestRateLimiter_ZeroLimitsDisableChecks(t *testing.T) {
	rl := NewRateLimiter(0, 0, 0, 0)

	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Allow("client-a", 1<<20))
	}
}

func TestRateLimitErrors_AreDistinct(t *testing.T) {
	var rlErr *RateLimitError
	var quotaErr *QuotaExceededError

	err := error(&RateLimitError{Type: "minute", Limit: 1})
	assert.True(t, errors.As(err, &rlErr))
	assert.False(t, errors.As(err, &quotaErr))
	assert.Contains(t, err.Error(), "rate limit exceeded")

	err = error(&QuotaExceededError{Type: "data", Limit: 10, Used: 11})
	assert.True(t, errors.As(err, &quotaErr))
	assert.Contains(t, err.Error(), "quota exceeded")
}
