package check_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-ReservationService/internal/usecase/check_availability"
)

const (
	msgMissingStart      = "время начала обязательно"
	msgInvalidTime       = "некорректный формат времени, ожидается RFC3339"
	msgInvalidGuestCount = "некорректное количество гостей"
	msgInvalidInput      = "некорректные параметры запроса"
	msgResourceNotFound  = "ресурс не найден"
	msgServiceNotFound   = "услуга не найдена"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/availability
// Query params: start (required, RFC3339), end, service, guestCount (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID := mux.Vars(r)["resourceId"]
	query := r.URL.Query()

	startStr := query.Get("start")
	if startStr == "" {
		h.logger.Warn("GET /resources/{id}/availability - Missing start")
		handlers.RespondBadRequest(w, msgMissingStart)
		return
	}

	guestCount, err := handlers.QueryInt(r, "guestCount")
	if err != nil {
		h.logger.Warn("GET /resources/{id}/availability - Invalid guest count: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGuestCount)
		return
	}

	useCaseReq, err := ToUseCaseRequest(resourceID, query.Get("service"), startStr, query.Get("end"), guestCount)
	if err != nil {
		h.logger.Warn("GET /resources/{id}/availability - Invalid time format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("GET /resources/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, checkAvailability.ErrResourceNotFound):
			h.logger.Warn("GET /resources/{id}/availability - Resource not found: resource_id=%s", resourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, checkAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /resources/{id}/availability - Service not found: %v", err)
			handlers.RespondNotFound(w, msgServiceNotFound)

		default:
			h.logger.Error("GET /resources/{id}/availability - Failed to check availability: resource_id=%s, error=%v",
				resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
