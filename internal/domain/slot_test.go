package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSlot(t *testing.T) {
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		slot      AvailableSlot
		minutes   int
		partial   bool
		occupancy float64
	}{
		{
			name:      "free",
			slot:      AvailableSlot{Start: start, End: start.Add(time.Hour), AvailableSpots: 4, TotalSpots: 4},
			minutes:   60,
			occupancy: 0,
		},
		{
			name:      "partially booked",
			slot:      AvailableSlot{Start: start, End: start.Add(90 * time.Minute), AvailableSpots: 1, TotalSpots: 4},
			minutes:   90,
			partial:   true,
			occupancy: 75,
		},
		{
			name:    "no capacity",
			slot:    AvailableSlot{Start: start, End: start.Add(30 * time.Minute)},
			minutes: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.minutes, tt.slot.DurationMinutes())
			assert.Equal(t, tt.partial, tt.slot.IsPartiallyAvailable())
			assert.InDelta(t, tt.occupancy, tt.slot.OccupancyRate(), 0.001)
		})
	}
}
