package create_reservation

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// CreateReservationRequest HTTP request model
// Ссылки resource, service, customer принимают id или объект с полем id
type CreateReservationRequest struct {
	domain.RawReservation
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateReservationRequest) ToServiceRequest(actor models.Actor, skipValidation bool) *models.CreateRequest {
	return &models.CreateRequest{
		Actor:          actor,
		Raw:            r.RawReservation,
		SkipValidation: skipValidation,
	}
}
