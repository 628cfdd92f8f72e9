// Package poll decides when a periodically sampled sensor is due.
//
// A Schedule only compares absolute elapsed time against its period, so tick
// jitter never accumulates: a late tick fires late once and the next period
// is measured from that fire.
package poll

import "time"

// Schedule is the cadence and last execution time of one periodic task.
type Schedule struct {
	Period   time.Duration
	LastFire time.Time
}

// New returns a schedule whose first fire is one period after start.
func New(period time.Duration, start time.Time) *Schedule {
	return &Schedule{
		Period:   period,
		LastFire: start,
	}
}

// ShouldFire reports whether now - LastFire >= Period.
func (s *Schedule) ShouldFire(now time.Time) bool {
	return now.Sub(s.LastFire) >= s.Period
}

// MarkFired records now as the last fire time.
func (s *Schedule) MarkFired(now time.Time) {
	s.LastFire = now
}

// Poll fires at most once: when the schedule is due it is marked fired at now
// and true is returned.
func (s *Schedule) Poll(now time.Time) bool {
	if !s.ShouldFire(now) {
		return false
	}
	s.MarkFired(now)
	return true
}
