package domain

import "time"

// Reservation represents a booking of one or more resources
type Reservation struct {
	ID         string
	ResourceID string
	ServiceID  string
	CustomerID string
	StartTime  time.Time
	EndTime    time.Time
	Status     string
	GuestCount int

	CancellationReason *string
	IdempotencyKey     *string
	Notes              *string

	// Items is set only for composite bookings. A single-resource booking
	// is described by the top-level fields alone.
	Items []ReservationItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsComposite returns true if the reservation carries an explicit item list
func (r *Reservation) IsComposite() bool {
	return len(r.Items) > 0
}

// IsCancelled returns true if the reservation is in the given cancelled status
func (r *Reservation) IsCancelled(cancelledStatus string) bool {
	return r.Status == cancelledStatus
}

// Raw converts a stored reservation back into request form, so a partial
// update can be merged over it and normalized again.
func (r *Reservation) Raw() RawReservation {
	raw := RawReservation{
		Resource:   Ref(r.ResourceID),
		Service:    Ref(r.ServiceID),
		Customer:   Ref(r.CustomerID),
		Status:     r.Status,
		GuestCount: intPtr(r.GuestCount),
	}
	if !r.StartTime.IsZero() {
		start := r.StartTime
		raw.StartTime = &start
	}
	if !r.EndTime.IsZero() {
		end := r.EndTime
		raw.EndTime = &end
	}
	if r.IdempotencyKey != nil {
		raw.IdempotencyKey = *r.IdempotencyKey
	}
	if r.CancellationReason != nil {
		raw.CancellationReason = *r.CancellationReason
	}
	if r.Notes != nil {
		raw.Notes = *r.Notes
	}
	for _, it := range r.Items {
		item := RawItem{
			Resource:   Ref(it.ResourceID),
			Service:    Ref(it.ServiceID),
			GuestCount: intPtr(it.GuestCount),
		}
		start := it.StartTime
		item.StartTime = &start
		if it.HasEndTime() {
			end := it.EndTime
			item.EndTime = &end
		}
		raw.Items = append(raw.Items, item)
	}
	return raw
}

// ReservationFilter фильтр для выборки бронирований
type ReservationFilter struct {
	ResourceID *string    // Фильтр по ресурсу (опционально)
	CustomerID *string    // Фильтр по клиенту (опционально)
	From       *time.Time // Начало периода (опционально)
	To         *time.Time // Конец периода (опционально)
	Statuses   []string   // Фильтр по статусам (опционально, пусто - все)
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
