package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/whisperwall/whisperwall-backend/internal/config"
)

func testPolicy() config.AbusePolicy {
	return config.AbusePolicy{
		RateLimitMax:       3,
		RateLimitWindow:    time.Hour,
		SuspicionHighCount: 5,
		SuspicionWindow:    time.Hour,
		BurstCount:         3,
		BurstWindow:        10 * time.Minute,
		MediumMinCount:     3,
		MaxContentLength:   500,
	}
}

// history builds n timestamps each `apart` before the previous, starting at
// now-apart.
func history(now time.Time, n int, apart time.Duration) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, now.Add(-time.Duration(i)*apart))
	}
	return out
}

func TestClassifyQuietSender(t *testing.T) {
	now := time.Now()

	v := Classify(nil, now, testPolicy())
	assert.False(t, v.IsSuspicious)
	assert.Equal(t, SeverityLow, v.Severity)
	assert.False(t, v.SuggestBlock)

	v = Classify(history(now, 2, 20*time.Minute), now, testPolicy())
	assert.False(t, v.IsSuspicious)
	assert.Equal(t, SeverityLow, v.Severity)
}

func TestClassifySixInAnHourIsHigh(t *testing.T) {
	now := time.Now()
	v := Classify(history(now, 6, 9*time.Minute), now, testPolicy())

	assert.True(t, v.IsSuspicious)
	assert.Equal(t, SeverityHigh, v.Severity)
	assert.True(t, v.SuggestBlock)
	assert.Equal(t, "multiple messages in short time period", v.Reason)
}

func TestClassifyBurstIsHigh(t *testing.T) {
	now := time.Now()
	// 4 messages inside 10 minutes but only 4 in the hour: burst rule fires.
	v := Classify(history(now, 4, 2*time.Minute), now, testPolicy())

	assert.True(t, v.IsSuspicious)
	assert.Equal(t, SeverityHigh, v.Severity)
	assert.True(t, v.SuggestBlock)
	assert.Equal(t, "rapid message flooding detected", v.Reason)
}

func TestClassifyFourSpreadOverHourIsMedium(t *testing.T) {
	now := time.Now()
	// 4 in the hour, none inside the 10-minute burst window.
	v := Classify(history(now, 4, 12*time.Minute), now, testPolicy())

	assert.True(t, v.IsSuspicious)
	assert.Equal(t, SeverityMedium, v.Severity)
	assert.False(t, v.SuggestBlock)
	assert.Equal(t, "high message frequency", v.Reason)
}

func TestClassifyHourlyRuleWinsOverBurst(t *testing.T) {
	now := time.Now()
	// 6 rapid messages trip both rules; the hourly rule is evaluated first.
	v := Classify(history(now, 6, time.Minute), now, testPolicy())

	assert.Equal(t, SeverityHigh, v.Severity)
	assert.Equal(t, "multiple messages in short time period", v.Reason)
}

func TestClassifyIgnoresMessagesOutsideWindow(t *testing.T) {
	now := time.Now()
	old := history(now.Add(-2*time.Hour), 10, time.Minute)

	v := Classify(old, now, testPolicy())
	assert.False(t, v.IsSuspicious)
	assert.Equal(t, SeverityLow, v.Severity)
}

func TestClassifyExactlyThreeIsMedium(t *testing.T) {
	now := time.Now()
	v := Classify(history(now, 3, 15*time.Minute), now, testPolicy())

	assert.Equal(t, SeverityMedium, v.Severity)
	assert.False(t, v.SuggestBlock)
}
