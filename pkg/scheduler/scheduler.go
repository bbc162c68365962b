// Package scheduler gates how often the emotion classifier runs.
package scheduler

import "time"

// DefaultInterval is the time between detection attempts.
const DefaultInterval = 10 * time.Second

// ShouldDetect reports whether a detection is due. A zero last time means
// no detection has happened yet.
func ShouldDetect(now, last time.Time, interval time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= interval
}

// TimeRemaining returns how long until the next detection is due, for display.
func TimeRemaining(now, last time.Time, interval time.Duration) time.Duration {
	if last.IsZero() {
		return interval
	}
	return max(0, interval-now.Sub(last))
}

// Scheduler holds the last detection time for a fixed interval.
// It is owned by a single goroutine and is not safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	last     time.Time
}

// New creates a scheduler. Non-positive intervals fall back to DefaultInterval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// ShouldDetect reports whether a detection is due at now.
func (s *Scheduler) ShouldDetect(now time.Time) bool {
	return ShouldDetect(now, s.last, s.interval)
}

// TimeRemaining returns the countdown to the next detection at now.
func (s *Scheduler) TimeRemaining(now time.Time) time.Duration {
	return TimeRemaining(now, s.last, s.interval)
}

// MarkDetected records a detection attempt at now. Call it after every
// attempt, including ones that found no face, so an empty frame still
// consumes the interval.
func (s *Scheduler) MarkDetected(now time.Time) {
	s.last = now
}

// Last returns the time of the last attempt, or the zero time.
func (s *Scheduler) Last() time.Time {
	return s.last
}

// Interval returns the configured interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}
