package check_availability

import (
	"time"

	checkAvailability "github.com/m04kA/SMC-ReservationService/internal/usecase/check_availability"
)

// AvailabilityResponse HTTP response model
// currentCount - число бронирований или сумма гостей, в зависимости от mode
type AvailabilityResponse struct {
	Resource      string    `json:"resource"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Available     bool      `json:"available"`
	Mode          string    `json:"mode"`
	CurrentCount  int       `json:"currentCount"`
	TotalCapacity int       `json:"totalCapacity"`
	Reason        string    `json:"reason,omitempty"`
}

// ToUseCaseRequest формирует запрос к use case из query параметров
func ToUseCaseRequest(resourceID, serviceID, startStr, endStr string, guestCount int) (*checkAvailability.Request, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil, err
	}

	req := &checkAvailability.Request{
		ResourceID: resourceID,
		ServiceID:  serviceID,
		StartTime:  start,
		GuestCount: guestCount,
	}

	if endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return nil, err
		}
		req.EndTime = &end
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		Resource:      resp.ResourceID,
		Start:         resp.StartTime,
		End:           resp.EndTime,
		Available:     resp.Available,
		Mode:          string(resp.Mode),
		CurrentCount:  resp.CurrentCount,
		TotalCapacity: resp.TotalCapacity,
		Reason:        resp.Reason,
	}
}
