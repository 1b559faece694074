package catalog

import (
	"errors"

	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
)

var (
	// ErrResourceNotFound возвращается, когда ресурс не найден
	ErrResourceNotFound = storage.ErrResourceNotFound

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = storage.ErrServiceNotFound

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("catalog.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("catalog.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("catalog.repository: failed to scan row")

	// ErrDecodeSlots возвращается, когда JSONB со слотами расписания не разбирается
	ErrDecodeSlots = errors.New("catalog.repository: failed to decode schedule slots")
)
