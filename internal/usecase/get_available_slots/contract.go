package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// CatalogRepository источник ресурсов, услуг и расписаний
type CatalogRepository interface {
	GetResource(ctx context.Context, id string) (*domain.Resource, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListActiveSchedules(ctx context.Context, resourceID string) ([]*domain.Schedule, error)
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
