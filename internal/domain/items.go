package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Ref is a reference to another record. In JSON it accepts either a bare id
// ("abc", 42) or a populated object carrying one ({"id": "abc", ...}).
type Ref string

func (r Ref) String() string {
	return string(r)
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	case '{':
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		return r.UnmarshalJSON(obj.ID)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("reference must be an id or an object with id: %w", err)
		}
		*r = Ref(n.String())
		return nil
	}
}

// RawItem is one entry of a booking request's items list, before normalization
type RawItem struct {
	Resource   Ref        `json:"resource"`
	Service    Ref        `json:"service,omitempty"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	GuestCount *int       `json:"guestCount,omitempty"`
}

// RawReservation is a booking request as received from the host
type RawReservation struct {
	Resource           Ref        `json:"resource"`
	Service            Ref        `json:"service"`
	Customer           Ref        `json:"customer"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	GuestCount         *int       `json:"guestCount,omitempty"`
	Status             string     `json:"status,omitempty"`
	IdempotencyKey     string     `json:"idempotencyKey,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Items              []RawItem  `json:"items,omitempty"`
}

// ReservationItem is one normalized resource/time assignment of a booking.
// A zero EndTime means the end is not known yet.
type ReservationItem struct {
	ResourceID string
	ServiceID  string
	StartTime  time.Time
	EndTime    time.Time
	GuestCount int
}

// HasEndTime reports whether the item carries an end time
func (i ReservationItem) HasEndTime() bool {
	return !i.EndTime.IsZero()
}

// ResolveReservationItems flattens a booking request into a uniform item list.
//
// With items present, each entry inherits missing end time, guest count and
// service from the top level; entries without a resource or start time are
// dropped. Without items, the top-level fields form a single item, or the
// result is empty when resource or start time is missing.
func ResolveReservationItems(raw RawReservation) []ReservationItem {
	if len(raw.Items) > 0 {
		items := make([]ReservationItem, 0, len(raw.Items))
		for _, it := range raw.Items {
			item := ReservationItem{
				ResourceID: firstRef(it.Resource, raw.Resource),
				ServiceID:  firstRef(it.Service, raw.Service),
				GuestCount: firstInt(it.GuestCount, raw.GuestCount, DefaultGuestCount),
			}
			if start := firstTime(it.StartTime, raw.StartTime); start != nil {
				item.StartTime = *start
			}
			if end := firstTime(it.EndTime, raw.EndTime); end != nil {
				item.EndTime = *end
			}
			if item.ResourceID == "" || item.StartTime.IsZero() {
				continue
			}
			items = append(items, item)
		}
		return items
	}

	if raw.Resource == "" || raw.StartTime == nil || raw.StartTime.IsZero() {
		return []ReservationItem{}
	}

	item := ReservationItem{
		ResourceID: string(raw.Resource),
		ServiceID:  string(raw.Service),
		StartTime:  *raw.StartTime,
		GuestCount: firstInt(raw.GuestCount, nil, DefaultGuestCount),
	}
	if raw.EndTime != nil {
		item.EndTime = *raw.EndTime
	}
	return []ReservationItem{item}
}

func firstRef(refs ...Ref) string {
	for _, r := range refs {
		if r != "" {
			return string(r)
		}
	}
	return ""
}

func firstTime(times ...*time.Time) *time.Time {
	for _, t := range times {
		if t != nil && !t.IsZero() {
			return t
		}
	}
	return nil
}

func firstInt(a, b *int, def int) int {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return def
}
