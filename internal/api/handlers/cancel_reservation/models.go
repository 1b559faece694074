package cancel_reservation

import (
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest(reservationID string, actor models.Actor) *models.CancelRequest {
	return &models.CancelRequest{
		Actor:              actor,
		ID:                 reservationID,
		CancellationReason: ptr.Value(r.CancellationReason, ""),
	}
}
