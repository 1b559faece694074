package domain

import "time"

// Rejection reasons of the capacity check
const (
	ReasonGuestCapacityExceeded = "guest capacity exceeded"
	ReasonAllUnitsBooked        = "all units booked for this time"
)

// AvailabilityRequest is one candidate item to admit against a resource
type AvailabilityRequest struct {
	ResourceID           string
	StartTime            time.Time
	EndTime              time.Time
	GuestCount           int
	BufferBefore         int // minutes
	BufferAfter          int // minutes
	BlockingStatuses     []string
	ExcludeReservationID string
	// Pending holds items of the same booking admitted earlier in the request.
	// They are not stored yet but hold capacity like stored items.
	Pending []ReservationItem
}

// OverlapFilter selects reservation items that hold capacity inside a window:
// same resource, blocking status, StartTime < EffectiveEnd, EndTime > EffectiveStart.
type OverlapFilter struct {
	ResourceID           string
	Statuses             []string
	EffectiveStart       time.Time
	EffectiveEnd         time.Time
	ExcludeReservationID string
}

// NewOverlapFilter builds the overlap predicate for req using its buffered window
func NewOverlapFilter(req AvailabilityRequest) OverlapFilter {
	effStart, effEnd := BufferedWindow(req.StartTime, req.EndTime, req.BufferBefore, req.BufferAfter)
	return OverlapFilter{
		ResourceID:           req.ResourceID,
		Statuses:             req.BlockingStatuses,
		EffectiveStart:       effStart,
		EffectiveEnd:         effEnd,
		ExcludeReservationID: req.ExcludeReservationID,
	}
}

// Matches evaluates the filter against a single stored item
func (f OverlapFilter) Matches(reservationID, status string, item ReservationItem) bool {
	if f.ExcludeReservationID != "" && reservationID == f.ExcludeReservationID {
		return false
	}
	if !contains(f.Statuses, status) {
		return false
	}
	return f.Covers(item)
}

// Covers reports whether item sits on the filtered resource inside the window,
// ignoring status and exclusion
func (f OverlapFilter) Covers(item ReservationItem) bool {
	return item.ResourceID == f.ResourceID &&
		item.StartTime.Before(f.EffectiveEnd) && item.EndTime.After(f.EffectiveStart)
}

// PendingOccupancy is the capacity held by req.Pending items inside the filter window:
// their guests in per-guest mode, their number otherwise
func PendingOccupancy(f OverlapFilter, mode CapacityMode, pending []ReservationItem) int {
	occupied := 0
	for _, item := range pending {
		if !f.Covers(item) {
			continue
		}
		if mode == CapacityPerGuest {
			occupied += max(item.GuestCount, DefaultGuestCount)
		} else {
			occupied++
		}
	}
	return occupied
}

// AvailabilityResult is the admission decision for one item.
// CurrentCount holds the overlapping reservation count in per-reservation
// mode and the summed guests in per-guest mode.
type AvailabilityResult struct {
	Available     bool
	Mode          CapacityMode
	CurrentCount  int
	TotalCapacity int
	Reason        string
}

// DecideCapacity admits or rejects a candidate given the current occupancy.
// occupied is a count of overlapping reservations or a sum of their guests,
// depending on the resource's capacity mode.
func DecideCapacity(resource *Resource, occupied, guestCount int) AvailabilityResult {
	mode := resource.EffectiveCapacityMode()
	quantity := resource.EffectiveQuantity()

	result := AvailabilityResult{
		Mode:          mode,
		CurrentCount:  occupied,
		TotalCapacity: quantity,
	}

	if mode == CapacityPerGuest {
		if guestCount < 1 {
			guestCount = DefaultGuestCount
		}
		result.Available = occupied+guestCount <= quantity
		if !result.Available {
			result.Reason = ReasonGuestCapacityExceeded
		}
		return result
	}

	result.Available = occupied+1 <= quantity
	if !result.Available {
		result.Reason = ReasonAllUnitsBooked
	}
	return result
}
