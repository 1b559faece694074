package reservation

import (
	"errors"

	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = storage.ErrReservationNotFound

	// ErrDuplicateIdempotencyKey возвращается при повторном использовании idempotency_key
	ErrDuplicateIdempotencyKey = storage.ErrDuplicateIdempotencyKey

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")

	// ErrLock возвращается, когда не удалось взять блокировку ресурса
	ErrLock = errors.New("reservation.repository: failed to lock resource")
)
