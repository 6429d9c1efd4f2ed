package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunStats_Record(t *testing.T) {
	stats := NewRunStats(time.Now())
	stats.Attempted = 5

	stats.Record(OutcomeSubmitted)
	stats.Record(OutcomeAlreadyApplied)
	stats.Record(OutcomeFailed)
	stats.Record(OutcomeAbandoned)

	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.Outcomes[OutcomeAbandoned])
	assert.InDelta(t, 40.0, stats.SuccessRate(), 0.001)
}

func TestRunStats_SuccessRateWithoutAttempts(t *testing.T) {
	stats := NewRunStats(time.Now())
	assert.Equal(t, 0.0, stats.SuccessRate())
}

func TestRunStats_Elapsed(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	stats := NewRunStats(start)

	assert.Equal(t, 90*time.Second, stats.Elapsed(start.Add(90*time.Second+300*time.Millisecond)))
	assert.Contains(t, stats.String(), "0 attempted")
}

func TestOutcome_Succeeded(t *testing.T) {
	assert.True(t, OutcomeSubmitted.Succeeded())
	assert.True(t, OutcomeAlreadyApplied.Succeeded())
	assert.False(t, OutcomeFailed.Succeeded())
	assert.False(t, OutcomeAbandoned.Succeeded())
}
