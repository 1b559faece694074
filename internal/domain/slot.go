package domain

import "time"

// AvailableSlot represents a time slot available for booking
type AvailableSlot struct {
	Start          time.Time
	End            time.Time
	AvailableSpots int // units or guest places left
	TotalSpots     int
}

// DurationMinutes returns the slot length in minutes
func (s *AvailableSlot) DurationMinutes() int {
	return minutesBetween(s.Start, s.End)
}

// IsPartiallyAvailable returns true if the slot has some but not all spots available
func (s *AvailableSlot) IsPartiallyAvailable() bool {
	return s.AvailableSpots > 0 && s.AvailableSpots < s.TotalSpots
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *AvailableSlot) OccupancyRate() float64 {
	if s.TotalSpots == 0 {
		return 0
	}
	occupied := s.TotalSpots - s.AvailableSpots
	return float64(occupied) / float64(s.TotalSpots) * 100
}
