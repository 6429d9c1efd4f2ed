package models

import (
	"fmt"
	"time"
)

// Outcome is the result of one job application attempt.
type Outcome string

const (
	OutcomeSubmitted      Outcome = "submitted"
	OutcomeAlreadyApplied Outcome = "already-applied"
	OutcomeFailed         Outcome = "failed"
	// OutcomeAbandoned means the step budget ran out without a terminal page.
	OutcomeAbandoned Outcome = "abandoned"
)

// Succeeded reports whether the outcome counts as a successful application.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSubmitted || o == OutcomeAlreadyApplied
}

// RunStats aggregates outcomes for one run of the bot.
type RunStats struct {
	Attempted      int       `json:"applications_attempted"`
	Successful     int       `json:"applications_successful"`
	Failed         int       `json:"applications_failed"`
	PagesProcessed int       `json:"pages_processed"`
	StartTime      time.Time `json:"start_time"`

	Outcomes map[Outcome]int `json:"outcomes"`
}

func NewRunStats(start time.Time) *RunStats {
	return &RunStats{
		StartTime: start,
		Outcomes:  make(map[Outcome]int),
	}
}

// Record counts a finished workflow. Attempts are counted separately since
// jobs without an apply button are attempted but have no outcome.
func (s *RunStats) Record(o Outcome) {
	s.Outcomes[o]++
	if o.Succeeded() {
		s.Successful++
	} else {
		s.Failed++
	}
}

// SuccessRate is the percentage of attempts that succeeded.
func (s *RunStats) SuccessRate() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Attempted) * 100
}

func (s *RunStats) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartTime).Round(time.Second)
}

func (s *RunStats) String() string {
	return fmt.Sprintf("%d attempted, %d successful, %d failed, %d pages",
		s.Attempted, s.Successful, s.Failed, s.PagesProcessed)
}
