package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date     string         `json:"date"`
	Resource string         `json:"resource"`
	Service  string         `json:"service"`
	Slots    []SlotResponse `json:"slots"`
}

// SlotResponse HTTP модель слота
type SlotResponse struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
	AvailableSpots  int       `json:"availableSpots"`
	TotalSpots      int       `json:"totalSpots"`
	OccupancyRate   float64   `json:"occupancyRate"`
}

// ToUseCaseRequest формирует запрос к use case, дата разбирается в часовом поясе расписаний
func ToUseCaseRequest(resourceID, serviceID, dateStr string, guestCount int, loc *time.Location) (*getAvailableSlots.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, dateStr, loc)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		ResourceID: resourceID,
		ServiceID:  serviceID,
		Date:       date,
		GuestCount: guestCount,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	out := &SlotsResponse{
		Date:     resp.Date.Format(domain.DateFormat),
		Resource: resp.ResourceID,
		Service:  resp.ServiceID,
		Slots:    make([]SlotResponse, 0, len(resp.Slots)),
	}
	for i := range resp.Slots {
		slot := &resp.Slots[i]
		out.Slots = append(out.Slots, SlotResponse{
			Start:           slot.Start,
			End:             slot.End,
			DurationMinutes: slot.DurationMinutes(),
			AvailableSpots:  slot.AvailableSpots,
			TotalSpots:      slot.TotalSpots,
			OccupancyRate:   slot.OccupancyRate(),
		})
	}
	return out
}
