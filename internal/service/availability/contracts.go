package availability

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ResourceRepository источник ресурсов
type ResourceRepository interface {
	GetResource(ctx context.Context, id string) (*domain.Resource, error)
}

// OccupancyRepository выборки занятости по фильтру пересечения
type OccupancyRepository interface {
	CountOverlapping(ctx context.Context, filter domain.OverlapFilter) (int, error)
	ListOverlappingGuestCounts(ctx context.Context, filter domain.OverlapFilter) ([]int, error)
}

// MetricsRecorder учёт решений о допуске
type MetricsRecorder interface {
	ObserveAdmission(mode string, admitted bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
