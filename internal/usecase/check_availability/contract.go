package check_availability

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// CatalogRepository источник услуг
type CatalogRepository interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
}

// AvailabilityChecker проверка вместимости ресурса
type AvailabilityChecker interface {
	Check(ctx context.Context, req domain.AvailabilityRequest) (*domain.AvailabilityResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
