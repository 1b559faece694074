package domain

import "time"

// CapacityMode defines how occupancy of a resource is counted
type CapacityMode string

const (
	// CapacityPerReservation - every blocking reservation takes one unit
	CapacityPerReservation CapacityMode = "per-reservation"
	// CapacityPerGuest - every blocking reservation takes guestCount units of a shared pool
	CapacityPerGuest CapacityMode = "per-guest"
)

// IsValid returns true for a known capacity mode
func (m CapacityMode) IsValid() bool {
	return m == CapacityPerReservation || m == CapacityPerGuest
}

// Resource is a bookable entity: a stylist, a room, a piece of equipment
type Resource struct {
	ID           string
	Name         string
	Quantity     int
	CapacityMode CapacityMode
	Timezone     string // stored only, schedules use the engine's reference location
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EffectiveQuantity returns Quantity, falling back to 1 when unset
func (r *Resource) EffectiveQuantity() int {
	if r.Quantity < 1 {
		return DefaultQuantity
	}
	return r.Quantity
}

// EffectiveCapacityMode returns CapacityMode, falling back to per-reservation
func (r *Resource) EffectiveCapacityMode() CapacityMode {
	if !r.CapacityMode.IsValid() {
		return CapacityPerReservation
	}
	return r.CapacityMode
}

// SupportsParallelBookings returns true if more than one unit can be booked at once
func (r *Resource) SupportsParallelBookings() bool {
	return r.EffectiveQuantity() > 1
}
