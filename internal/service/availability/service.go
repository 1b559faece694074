package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
)

// Service проверка вместимости ресурса и конфликтов по времени
type Service struct {
	resources ResourceRepository
	occupancy OccupancyRepository
	metrics   MetricsRecorder
	logger    Logger
}

// NewService создает новый экземпляр сервиса доступности
// metrics может быть nil
func NewService(
	resources ResourceRepository,
	occupancy OccupancyRepository,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		resources: resources,
		occupancy: occupancy,
		metrics:   metrics,
		logger:    logger,
	}
}

// Check решает, можно ли допустить позицию бронирования на ресурс
//
// Окно кандидата расширяется буферами услуги. Пересекающиеся блокирующие
// бронирования считаются по режиму ресурса: per-guest суммирует гостей,
// per-reservation считает сами бронирования.
//
// Проверка только читает данные. Чтобы результат оставался верным до записи,
// вызывающий должен держать блокировку ресурса в той же транзакции.
func (s *Service) Check(ctx context.Context, req domain.AvailabilityRequest) (*domain.AvailabilityResult, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow,
			req.EndTime.Format("2006-01-02 15:04"), req.StartTime.Format("2006-01-02 15:04"))
	}

	resource, err := s.resources.GetResource(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, storage.ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, req.ResourceID)
		}
		s.logger.Error("Check: failed to get resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: Check - get resource: %v", ErrInternal, err)
	}

	filter := domain.NewOverlapFilter(req)

	var occupied int
	if resource.EffectiveCapacityMode() == domain.CapacityPerGuest {
		guests, err := s.occupancy.ListOverlappingGuestCounts(ctx, filter)
		if err != nil {
			s.logger.Error("Check: failed to list guest counts for resource=%s: %v", req.ResourceID, err)
			return nil, fmt.Errorf("%w: Check - list guest counts: %v", ErrInternal, err)
		}
		for _, g := range guests {
			if g < 1 {
				g = domain.DefaultGuestCount
			}
			occupied += g
		}
	} else {
		occupied, err = s.occupancy.CountOverlapping(ctx, filter)
		if err != nil {
			s.logger.Error("Check: failed to count overlapping for resource=%s: %v", req.ResourceID, err)
			return nil, fmt.Errorf("%w: Check - count overlapping: %v", ErrInternal, err)
		}
	}

	// Позиции этого же бронирования, допущенные раньше, ещё не записаны
	occupied += domain.PendingOccupancy(filter, resource.EffectiveCapacityMode(), req.Pending)

	result := domain.DecideCapacity(resource, occupied, req.GuestCount)

	if s.metrics != nil {
		s.metrics.ObserveAdmission(string(result.Mode), result.Available)
	}
	if !result.Available {
		s.logger.Info("Check: resource=%s window=[%s, %s) rejected: %s (current=%d, capacity=%d)",
			req.ResourceID, filter.EffectiveStart.Format("15:04"), filter.EffectiveEnd.Format("15:04"),
			result.Reason, result.CurrentCount, result.TotalCapacity)
	}

	return &result, nil
}
