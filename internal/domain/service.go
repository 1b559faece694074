package domain

import "time"

// DurationType is a service's policy for computing a booking's end time
type DurationType string

const (
	DurationFixed    DurationType = "fixed"
	DurationFlexible DurationType = "flexible"
	DurationFullDay  DurationType = "full-day"
)

// IsValid returns true for a known duration type
func (d DurationType) IsValid() bool {
	return d == DurationFixed || d == DurationFlexible || d == DurationFullDay
}

// Service is a bookable offering
type Service struct {
	ID               string
	Name             string
	Duration         int // minutes
	DurationType     DurationType
	BufferTimeBefore int // minutes
	BufferTimeAfter  int // minutes
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveDurationType returns DurationType, falling back to fixed
func (s *Service) EffectiveDurationType() DurationType {
	if !s.DurationType.IsValid() {
		return DurationFixed
	}
	return s.DurationType
}

// EffectiveDuration returns Duration, falling back to the default service duration
func (s *Service) EffectiveDuration() int {
	if s.Duration < 1 {
		return DefaultServiceDurationMinutes
	}
	return s.Duration
}
