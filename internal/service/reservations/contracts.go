package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation, items []domain.ReservationItem) error
	Update(ctx context.Context, res *domain.Reservation, items []domain.ReservationItem) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
}

// AvailabilityChecker проверка вместимости ресурса
type AvailabilityChecker interface {
	Check(ctx context.Context, req domain.AvailabilityRequest) (*domain.AvailabilityResult, error)
}

// ResourceLocker блокировки ресурсов на время транзакции
type ResourceLocker interface {
	LockResources(ctx context.Context, resourceIDs []string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder учёт отказов конвейера бронирования
type MetricsRecorder interface {
	ObserveLifecycleRejection(operation, stage string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
