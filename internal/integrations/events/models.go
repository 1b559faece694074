package events

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

// Типы событий, они же суффиксы subject
const (
	TypeCreated       = "created"
	TypeStatusChanged = "status_changed"
	TypeConfirmed     = "confirmed"
	TypeCancelled     = "cancelled"
)

// Event сообщение о событии жизненного цикла бронирования
type Event struct {
	Type               string    `json:"type"`
	ReservationID      string    `json:"reservationId"`
	Resource           string    `json:"resource"`
	Service            string    `json:"service,omitempty"`
	Customer           string    `json:"customer,omitempty"`
	Status             string    `json:"status"`
	PreviousStatus     string    `json:"previousStatus,omitempty"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	GuestCount         int       `json:"guestCount"`
	ResourceIDs        []string  `json:"resourceIds"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
	OccurredAt         time.Time `json:"occurredAt"`
}

func newEvent(eventType string, res *domain.Reservation, occurredAt time.Time) Event {
	e := Event{
		Type:          eventType,
		ReservationID: res.ID,
		Resource:      res.ResourceID,
		Service:       res.ServiceID,
		Customer:      res.CustomerID,
		Status:        res.Status,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		GuestCount:    res.GuestCount,
		ResourceIDs:   []string{res.ResourceID},
		OccurredAt:    occurredAt,
	}
	if res.IsComposite() {
		e.ResourceIDs = e.ResourceIDs[:0]
		seen := make(map[string]bool)
		for _, it := range res.Items {
			if !seen[it.ResourceID] {
				seen[it.ResourceID] = true
				e.ResourceIDs = append(e.ResourceIDs, it.ResourceID)
			}
		}
	}
	e.CancellationReason = ptr.Value(res.CancellationReason, "")
	return e
}
