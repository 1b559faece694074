package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrEmptyBody возвращается DecodeJSON для запроса без тела
var ErrEmptyBody = errors.New("empty request body")

// ErrorResponse тело ответа с ошибкой
// Path заполняется для ошибок валидации и указывает на поле запроса
type ErrorResponse struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// DecodeJSON декодирует тело запроса в v
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondValidation отправляет отказ конвейера бронирования
// Нехватка вместимости и повтор ключа идемпотентности - 409, остальное - 422
func RespondValidation(w http.ResponseWriter, vErr *domain.ValidationError) {
	RespondJSON(w, ValidationStatus(vErr), ErrorResponse{Message: vErr.Message, Path: vErr.Path})
}

// ValidationStatus HTTP код для вида ошибки валидации
func ValidationStatus(vErr *domain.ValidationError) int {
	switch {
	case errors.Is(vErr, domain.ErrCapacityExceeded), errors.Is(vErr, domain.ErrDuplicateIdempotencyKey):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
