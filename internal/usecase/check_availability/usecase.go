package check_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
)

// UseCase use case проверки доступности ресурса на интервал
// Только чтение: ответ верен на момент запроса и ничего не резервирует
type UseCase struct {
	catalog          CatalogRepository
	availability     AvailabilityChecker
	blockingStatuses []string
	defaultBuffer    int
	location         *time.Location
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalog CatalogRepository,
	availability AvailabilityChecker,
	machine *domain.StatusMachine,
	defaultBuffer int,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:          catalog,
		availability:     availability,
		blockingStatuses: machine.SortedBlockingStatuses(),
		defaultBuffer:    defaultBuffer,
		location:         location,
		logger:           logger,
	}
}

// Execute выполняет use case проверки доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: resource=%s, service=%s, start=%s",
		req.ResourceID, req.ServiceID, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CheckAvailability: validation failed: %v", err)
		return nil, err
	}

	start := req.StartTime
	if uc.location != nil {
		start = start.In(uc.location)
	}

	// 2. Длительность и буферы из услуги, без услуги - интервал задан явно
	params := domain.EndTimeParams{
		DurationType: domain.DurationFlexible,
		StartTime:    start,
		EndTime:      req.EndTime,
	}
	bufferBefore, bufferAfter := uc.defaultBuffer, uc.defaultBuffer

	if req.ServiceID != "" {
		service, err := uc.catalog.GetService(ctx, req.ServiceID)
		if err != nil {
			if errors.Is(err, storage.ErrServiceNotFound) {
				uc.logger.Warn("CheckAvailability: service id=%s not found", req.ServiceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("CheckAvailability: failed to get service id=%s: %v", req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		params.DurationType = service.EffectiveDurationType()
		params.ServiceDuration = service.EffectiveDuration()
		bufferBefore, bufferAfter = service.BufferTimeBefore, service.BufferTimeAfter
	}

	window, err := domain.ComputeEndTime(params)
	if err != nil {
		uc.logger.Warn("CheckAvailability: end time not resolved: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Проверяем вместимость тем же правилом, что и при бронировании
	result, err := uc.availability.Check(ctx, domain.AvailabilityRequest{
		ResourceID:       req.ResourceID,
		StartTime:        start,
		EndTime:          window.EndTime,
		GuestCount:       req.GuestCount,
		BufferBefore:     bufferBefore,
		BufferAfter:      bufferAfter,
		BlockingStatuses: uc.blockingStatuses,
	})
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrResourceNotFound):
			uc.logger.Warn("CheckAvailability: resource id=%s not found", req.ResourceID)
			return nil, ErrResourceNotFound
		case errors.Is(err, availability.ErrInvalidWindow):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		default:
			uc.logger.Error("CheckAvailability: availability check failed for resource=%s: %v", req.ResourceID, err)
			return nil, fmt.Errorf("%w: availability check: %v", ErrInternal, err)
		}
	}

	return &Response{
		ResourceID:    req.ResourceID,
		StartTime:     start,
		EndTime:       window.EndTime,
		Available:     result.Available,
		Mode:          result.Mode,
		CurrentCount:  result.CurrentCount,
		TotalCapacity: result.TotalCapacity,
		Reason:        result.Reason,
	}, nil
}
