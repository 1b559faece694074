package update_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSkipParam   = "некорректное значение skipValidation"
	msgInvalidInput       = "некорректные данные бронирования"
	msgNotFound           = "бронирование не найдено"
	msgResourceNotFound   = "ресурс не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgForbidden          = "обход проверок доступен только администратору"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}
// Тело - частичное обновление: статус, время, позиции, заметки
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID := mux.Vars(r)["reservationId"]

	var patch models.Patch
	if err := handlers.DecodeJSON(r, &patch); err != nil {
		h.logger.Warn("PATCH /reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	skip, err := handlers.QueryBool(r, "skipValidation")
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id} - Invalid skipValidation: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSkipParam)
		return
	}

	actor := middleware.ActorFromContext(r.Context())

	result, err := h.service.Update(r.Context(), &models.UpdateRequest{
		Actor:          actor,
		ID:             reservationID,
		Patch:          patch,
		SkipValidation: skip,
	})
	if err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			h.logger.Warn("PATCH /reservations/{id} - Rejected: reservation_id=%s, path=%s, reason=%s",
				reservationID, vErr.Path, vErr.Message)
			handlers.RespondValidation(w, vErr)
			return
		}

		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /reservations/{id} - Reservation not found: reservation_id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PATCH /reservations/{id} - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, reservations.ErrResourceNotFound):
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, reservations.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /reservations/{id} - Skip validation denied: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PATCH /reservations/{id} - Failed to update reservation: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /reservations/{id} - Reservation updated successfully: reservation_id=%s, status=%s",
		reservationID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
