package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// Options параметры жизненного цикла бронирования
type Options struct {
	Machine                 *domain.StatusMachine
	CancelledStatus         string
	ConfirmedStatus         string
	CancellationNoticeHours float64
	DefaultBufferMinutes    int
	// Location часовой пояс, в котором считаются даты (full-day)
	Location *time.Location
}

// Service оркестратор жизненного цикла бронирования
//
// Каждое создание и обновление проходит фиксированный конвейер:
// идемпотентность, длительность, конфликты, статус, срок отмены.
// Первый отказ прерывает операцию, запись не выполняется.
type Service struct {
	reservations ReservationRepository
	catalog      CatalogRepository
	availability AvailabilityChecker
	locker       ResourceLocker
	txManager    TransactionManager
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger

	opts             Options
	blockingStatuses []string
	hooks            []Hook
}

// NewService создает новый экземпляр сервиса бронирований
// metrics может быть nil
func NewService(
	reservations ReservationRepository,
	catalog CatalogRepository,
	availability AvailabilityChecker,
	locker ResourceLocker,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
	opts Options,
) *Service {
	if opts.Machine == nil {
		opts.Machine = domain.DefaultStatusMachine()
	}
	return &Service{
		reservations:     reservations,
		catalog:          catalog,
		availability:     availability,
		locker:           locker,
		txManager:        txManager,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		opts:             opts,
		blockingStatuses: opts.Machine.SortedBlockingStatuses(),
	}
}

// Create создает бронирование
func (s *Service) Create(ctx context.Context, req *models.CreateRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Create: resource=%s, service=%s, customer=%s, items=%d, actor=%s",
		req.Raw.Resource, req.Raw.Service, req.Raw.Customer, len(req.Raw.Items), req.Actor.UserID)

	// 1. Обход конвейера разрешён только привилегированным
	skip, err := s.allowSkip("Create", req.SkipValidation, req.Actor)
	if err != nil {
		return nil, err
	}

	raw := req.Raw
	if raw.Status == "" {
		raw.Status = s.opts.Machine.DefaultStatus
	}
	if err := checkGuestCounts(raw); err != nil {
		s.logger.Warn("Create: %v", err)
		return nil, err
	}

	items := domain.ResolveReservationItems(raw)
	if len(items) == 0 {
		s.logger.Warn("Create: no bookable items in request")
		return nil, fmt.Errorf("%w: resource and startTime are required", ErrInvalidInput)
	}

	// 2. Проверки и запись в сериализуемой транзакции под блокировкой ресурсов
	var created *domain.Reservation
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.locker.LockResources(txCtx, lockIDs(items)); err != nil {
			return fmt.Errorf("%w: Create - lock resources: %v", ErrInternal, err)
		}

		cache := serviceCache{}
		if skip {
			items = s.fillEndTimes(txCtx, cache, items)
		} else {
			validated, err := s.validateCreate(txCtx, cache, raw, items, req.Actor)
			if err != nil {
				return err
			}
			items = validated
		}

		res := s.buildReservation(raw, items)
		if err := s.reservations.Create(txCtx, res, items); err != nil {
			if errors.Is(err, storage.ErrDuplicateIdempotencyKey) {
				return s.reject(opCreate, stageIdempotency, duplicateError())
			}
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, s.finish("Create", err)
	}

	s.logger.Info("Create: reservation id=%s created with status=%s", created.ID, created.Status)

	// 3. Подписчики вызываются после фиксации
	s.afterCreate(ctx, created)

	return models.FromDomainReservation(created), nil
}

// validateCreate этапы 2-5 для создания
func (s *Service) validateCreate(
	ctx context.Context,
	cache serviceCache,
	raw domain.RawReservation,
	items []domain.ReservationItem,
	actor models.Actor,
) ([]domain.ReservationItem, error) {
	if err := s.checkIdempotency(ctx, raw.IdempotencyKey); err != nil {
		return nil, s.reject(opCreate, stageIdempotency, err)
	}

	items, err := s.resolveDurations(ctx, cache, items)
	if err != nil {
		return nil, s.reject(opCreate, stageDuration, err)
	}

	if s.opts.Machine.IsBlocking(raw.Status) {
		if err := s.checkConflicts(ctx, items, ""); err != nil {
			return nil, s.reject(opCreate, stageConflicts, err)
		}
	}

	if err := s.checkCreateStatus(raw.Status, actor.Privileged); err != nil {
		return nil, s.reject(opCreate, stageStatus, err)
	}

	return items, nil
}

// Update частично обновляет бронирование
// Изменения накладываются на сохранённую запись, затем результат проходит конвейер целиком
func (s *Service) Update(ctx context.Context, req *models.UpdateRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Update: reservation id=%s, actor=%s", req.ID, req.Actor.UserID)

	skip, err := s.allowSkip("Update", req.SkipValidation, req.Actor)
	if err != nil {
		return nil, err
	}

	// Сохранённые значения уже проверены, достаточно проверить изменения
	if err := checkGuestCounts(req.Patch.Apply(domain.RawReservation{})); err != nil {
		s.logger.Warn("Update: %v", err)
		return nil, err
	}

	var (
		updated        *domain.Reservation
		previousStatus string
	)
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Получаем текущую версию
		existing, err := s.getReservation(txCtx, "Update", req.ID)
		if err != nil {
			return err
		}
		previousStatus = existing.Status

		// 2. Накладываем изменения и нормализуем позиции
		raw := req.Patch.Apply(existing.Raw())
		if raw.Status == "" {
			raw.Status = existing.Status
		}
		items := domain.ResolveReservationItems(raw)
		if len(items) == 0 {
			return fmt.Errorf("%w: resource and startTime are required", ErrInvalidInput)
		}

		// 3. Блокируем и старые, и новые ресурсы
		previousItems := domain.ResolveReservationItems(existing.Raw())
		if err := s.locker.LockResources(txCtx, lockIDs(previousItems, items)); err != nil {
			return fmt.Errorf("%w: Update - lock resources: %v", ErrInternal, err)
		}

		cache := serviceCache{}
		if skip {
			items = s.fillEndTimes(txCtx, cache, items)
		} else {
			items, err = s.validateUpdate(txCtx, cache, existing, raw, items)
			if err != nil {
				return err
			}
		}

		// 4. Записываем
		res := s.buildReservation(raw, items)
		res.ID = existing.ID
		res.IdempotencyKey = existing.IdempotencyKey
		res.CreatedAt = existing.CreatedAt

		if err := s.reservations.Update(txCtx, res, items); err != nil {
			if errors.Is(err, storage.ErrReservationNotFound) {
				return fmt.Errorf("%w: %s", ErrReservationNotFound, req.ID)
			}
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, s.finish("Update", err)
	}

	s.logger.Info("Update: reservation id=%s updated, status %s -> %s", updated.ID, previousStatus, updated.Status)

	s.afterStatusChange(ctx, updated, previousStatus)

	return models.FromDomainReservation(updated), nil
}

// validateUpdate этапы 3-6 для обновления
func (s *Service) validateUpdate(
	ctx context.Context,
	cache serviceCache,
	existing *domain.Reservation,
	raw domain.RawReservation,
	items []domain.ReservationItem,
) ([]domain.ReservationItem, error) {
	items, err := s.resolveDurations(ctx, cache, items)
	if err != nil {
		return nil, s.reject(opUpdate, stageDuration, err)
	}

	// Бронирование не конфликтует со своей прошлой версией
	if s.opts.Machine.IsBlocking(raw.Status) {
		if err := s.checkConflicts(ctx, items, existing.ID); err != nil {
			return nil, s.reject(opUpdate, stageConflicts, err)
		}
	}

	if err := s.checkTransition(existing.Status, raw.Status); err != nil {
		return nil, s.reject(opUpdate, stageStatus, err)
	}

	candidate := s.buildReservation(raw, items)
	if err := s.checkCancellationNotice(existing.Status, raw.Status, candidate); err != nil {
		return nil, s.reject(opUpdate, stageCancellation, err)
	}

	return items, nil
}

// Cancel переводит бронирование в статус отмены с указанием причины
func (s *Service) Cancel(ctx context.Context, req *models.CancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: reservation id=%s, actor=%s", req.ID, req.Actor.UserID)

	existing, err := s.getReservation(ctx, "Cancel", req.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsCancelled(s.opts.CancelledStatus) {
		s.logger.Warn("Cancel: reservation id=%s is already cancelled", req.ID)
		return nil, ErrAlreadyCancelled
	}

	status := s.opts.CancelledStatus
	reason := req.CancellationReason
	return s.Update(ctx, &models.UpdateRequest{
		Actor: req.Actor,
		ID:    req.ID,
		Patch: models.Patch{
			Status:             &status,
			CancellationReason: &reason,
		},
	})
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.ReservationResponse, error) {
	res, err := s.getReservation(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainReservation(res), nil
}

// List получает бронирования по фильтру
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("List: resource=%v, customer=%v, statuses=%v", req.ResourceID, req.CustomerID, req.Statuses)

	for _, status := range req.Statuses {
		if !s.opts.Machine.HasStatus(status) {
			s.logger.Warn("List: unknown status=%s", status)
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, fmt.Errorf("%w: period end is before start", ErrInvalidInput)
	}

	list, err := s.reservations.List(ctx, req.ToDomainFilter())
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d reservations", len(list))
	return models.FromDomainReservationList(list), nil
}

func (s *Service) getReservation(ctx context.Context, op, id string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%s not found", op, id)
			return nil, fmt.Errorf("%w: %s", ErrReservationNotFound, id)
		}
		s.logger.Error("%s: repository error for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return res, nil
}

func (s *Service) allowSkip(op string, requested bool, actor models.Actor) (bool, error) {
	if !requested {
		return false, nil
	}
	if !actor.Privileged {
		s.logger.Warn("%s: actor=%s is not allowed to skip validation", op, actor.UserID)
		return false, ErrAccessDenied
	}
	s.logger.Warn("%s: validation skipped by actor=%s", op, actor.UserID)
	return true, nil
}

// finish приводит ошибку транзакции к ошибкам пакета
func (s *Service) finish(op string, err error) error {
	if _, ok := domain.AsValidationError(err); ok {
		return err
	}
	for _, known := range []error{ErrReservationNotFound, ErrResourceNotFound, ErrServiceNotFound, ErrInvalidInput, ErrInternal} {
		if errors.Is(err, known) {
			if errors.Is(err, ErrInternal) {
				s.logger.Error("%s: %v", op, err)
			}
			return err
		}
	}
	s.logger.Error("%s: transaction failed: %v", op, err)
	return fmt.Errorf("%w: %s - transaction: %v", ErrInternal, op, err)
}
