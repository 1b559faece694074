package storage

import "errors"

// Ошибки, общие для всех реализаций хранилища (postgres и memory)
var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("storage: reservation not found")

	// ErrResourceNotFound возвращается, когда ресурс не найден
	ErrResourceNotFound = errors.New("storage: resource not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("storage: service not found")

	// ErrDuplicateIdempotencyKey возвращается при нарушении уникальности idempotency_key
	ErrDuplicateIdempotencyKey = errors.New("storage: duplicate idempotency key")
)
