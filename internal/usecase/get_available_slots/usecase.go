package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
)

// UseCase use case для получения доступных слотов для бронирования
// Результат - снимок на момент запроса, слоты не резервируются
type UseCase struct {
	catalog          CatalogRepository
	availability     AvailabilityChecker
	blockingStatuses []string
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalog CatalogRepository,
	availability AvailabilityChecker,
	machine *domain.StatusMachine,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:          catalog,
		availability:     availability,
		blockingStatuses: machine.SortedBlockingStatuses(),
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: resource=%s, service=%s, date=%s, guests=%d",
		req.ResourceID, req.ServiceID, req.Date.Format(domain.DateFormat), req.GuestCount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	guestCount := req.GuestCount
	if guestCount == 0 {
		guestCount = domain.DefaultGuestCount
	}

	response := &Response{
		Date:       req.Date,
		ResourceID: req.ResourceID,
		ServiceID:  req.ServiceID,
		Slots:      []domain.AvailableSlot{},
	}

	// 2. Получаем ресурс
	resource, err := uc.catalog.GetResource(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, storage.ErrResourceNotFound) {
			uc.logger.Warn("GetAvailableSlots: resource id=%s not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get resource id=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	// Неактивный ресурс не бронируется - пустой список, не ошибка
	if !resource.Active {
		uc.logger.Info("GetAvailableSlots: resource id=%s is inactive", req.ResourceID)
		return response, nil
	}

	// 3. Получаем услугу
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Разворачиваем расписания ресурса в диапазоны на дату
	schedules, err := uc.catalog.ListActiveSchedules(ctx, req.ResourceID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list schedules for resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to list schedules: %v", ErrInternal, err)
	}

	ranges := domain.ResolveSchedules(schedules, req.Date)
	if len(ranges) == 0 {
		uc.logger.Info("GetAvailableSlots: no schedule ranges for resource=%s on %s",
			req.ResourceID, req.Date.Format(domain.DateFormat))
		return response, nil
	}

	// 5. Перебираем кандидатов и проверяем каждого так же, как реальное бронирование
	plan := planFor(service)

	for _, r := range ranges {
		for _, candidate := range plan.candidates(r) {
			result, err := uc.availability.Check(ctx, domain.AvailabilityRequest{
				ResourceID:       resource.ID,
				StartTime:        candidate.Start,
				EndTime:          candidate.End,
				GuestCount:       guestCount,
				BufferBefore:     service.BufferTimeBefore,
				BufferAfter:      service.BufferTimeAfter,
				BlockingStatuses: uc.blockingStatuses,
			})
			if err != nil {
				uc.logger.Error("GetAvailableSlots: availability check failed for resource=%s at %s: %v",
					req.ResourceID, candidate.Start.Format(domain.TimeFormat), err)
				return nil, fmt.Errorf("%w: availability check: %v", ErrInternal, err)
			}
			if !result.Available {
				continue
			}

			available := result.TotalCapacity - result.CurrentCount
			if available < 0 {
				available = 0
			}
			response.Slots = append(response.Slots, domain.AvailableSlot{
				Start:          candidate.Start,
				End:            candidate.End,
				AvailableSpots: available,
				TotalSpots:     result.TotalCapacity,
			})
		}
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for resource=%s, service=%s, date=%s",
		len(response.Slots), req.ResourceID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return response, nil
}
