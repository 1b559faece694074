package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSkipParam   = "некорректное значение skipValidation"
	msgInvalidInput       = "некорректные данные бронирования"
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

// Handle POST /api/v1/reservations
// Query params: skipValidation (опционально, только для привилегированных)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	skip, err := handlers.QueryBool(r, "skipValidation")
	if err != nil {
		h.logger.Warn("POST /reservations - Invalid skipValidation: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSkipParam)
		return
	}

	actor := middleware.ActorFromContext(r.Context())

	result, err := h.service.Create(r.Context(), req.ToServiceRequest(actor, skip))
	if err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			h.logger.Warn("POST /reservations - Rejected: resource=%s, path=%s, reason=%s",
				req.Resource, vErr.Path, vErr.Message)
			handlers.RespondValidation(w, vErr)
			return
		}

		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, reservations.ErrResourceNotFound):
			h.logger.Warn("POST /reservations - Resource not found: %v", err)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, reservations.ErrServiceNotFound):
			h.logger.Warn("POST /reservations - Service not found: %v", err)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("POST /reservations - Skip validation denied: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: resource=%s, error=%v", req.Resource, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%s, status=%s",
		result.ID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
