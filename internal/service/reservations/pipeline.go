package reservations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
)

// Этапы конвейера, используются в метриках
const (
	stageIdempotency  = "idempotency"
	stageDuration     = "duration"
	stageConflicts    = "conflicts"
	stageStatus       = "status"
	stageCancellation = "cancellation_notice"
)

const (
	opCreate = "create"
	opUpdate = "update"
)

// serviceCache услуги позиций в пределах одного запроса
type serviceCache map[string]*domain.Service

// reject учитывает отказ этапа. Внутренние ошибки отказом не считаются
func (s *Service) reject(operation, stage string, err error) error {
	if vErr, ok := domain.AsValidationError(err); ok {
		s.logger.Warn("%s: rejected at stage=%s: %v", operation, stage, vErr)
		if s.metrics != nil {
			s.metrics.ObserveLifecycleRejection(operation, stage)
		}
	}
	return err
}

func (s *Service) lookupService(ctx context.Context, cache serviceCache, id string) (*domain.Service, error) {
	if id == "" {
		return nil, nil
	}
	if svc, ok := cache[id]; ok {
		return svc, nil
	}

	svc, err := s.catalog.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
		}
		s.logger.Error("lookupService: failed to get service id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: lookupService - repository error: %v", ErrInternal, err)
	}
	cache[id] = svc
	return svc, nil
}

// checkIdempotency отклоняет повторное создание с тем же ключом
func (s *Service) checkIdempotency(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	exists, err := s.reservations.ExistsByIdempotencyKey(ctx, key)
	if err != nil {
		s.logger.Error("checkIdempotency: repository error for key=%s: %v", key, err)
		return fmt.Errorf("%w: checkIdempotency - repository error: %v", ErrInternal, err)
	}
	if exists {
		return duplicateError()
	}
	return nil
}

// checkGuestCounts число гостей, если указано, не меньше одного: на бронировании и на каждой позиции
func checkGuestCounts(raw domain.RawReservation) error {
	if raw.GuestCount != nil && *raw.GuestCount < 1 {
		return fmt.Errorf("%w: guestCount must be at least 1, got %d", ErrInvalidInput, *raw.GuestCount)
	}
	for i, it := range raw.Items {
		if it.GuestCount != nil && *it.GuestCount < 1 {
			return fmt.Errorf("%w: item %d: guestCount must be at least 1, got %d", ErrInvalidInput, i, *it.GuestCount)
		}
	}
	return nil
}

func duplicateError() error {
	return domain.NewValidationError(domain.ErrDuplicateIdempotencyKey, domain.PathIdempotencyKey, "duplicate reservation")
}

// resolveEndTime вычисляет конец позиции по политике длительности её услуги
// Позиция без услуги считается flexible и обязана нести время окончания
func (s *Service) resolveEndTime(ctx context.Context, cache serviceCache, item domain.ReservationItem) (domain.ReservationItem, error) {
	svc, err := s.lookupService(ctx, cache, item.ServiceID)
	if err != nil {
		return item, err
	}

	start := item.StartTime
	if s.opts.Location != nil {
		start = start.In(s.opts.Location)
	}

	params := domain.EndTimeParams{
		DurationType: domain.DurationFlexible,
		StartTime:    start,
	}
	if item.HasEndTime() {
		end := item.EndTime
		params.EndTime = &end
	}
	if svc != nil {
		params.DurationType = svc.EffectiveDurationType()
		params.ServiceDuration = svc.EffectiveDuration()
	}

	result, err := domain.ComputeEndTime(params)
	if err != nil {
		return item, err
	}

	item.StartTime = start
	item.EndTime = result.EndTime
	return item, nil
}

// resolveDurations этап 3: время окончания для каждой позиции
func (s *Service) resolveDurations(ctx context.Context, cache serviceCache, items []domain.ReservationItem) ([]domain.ReservationItem, error) {
	out := make([]domain.ReservationItem, 0, len(items))
	for i, item := range items {
		resolved, err := s.resolveEndTime(ctx, cache, item)
		if err != nil {
			return nil, err
		}
		if !resolved.EndTime.After(resolved.StartTime) {
			return nil, fmt.Errorf("%w: item %d: end time must be after start time", ErrInvalidInput, i)
		}
		out = append(out, resolved)
	}
	return out, nil
}

// fillEndTimes при обходе проверок: конец считается, где это возможно,
// иначе позиция сохраняется с нулевой длительностью и ни с чем не пересекается
func (s *Service) fillEndTimes(ctx context.Context, cache serviceCache, items []domain.ReservationItem) []domain.ReservationItem {
	out := make([]domain.ReservationItem, 0, len(items))
	for _, item := range items {
		resolved, err := s.resolveEndTime(ctx, cache, item)
		if err != nil {
			s.logger.Warn("fillEndTimes: end time not resolved for resource=%s: %v", item.ResourceID, err)
			resolved = item
		}
		if !resolved.HasEndTime() {
			resolved.EndTime = resolved.StartTime
		}
		out = append(out, resolved)
	}
	return out
}

// bufferCache буферы услуг (до, после) в пределах одного запроса
type bufferCache map[string][2]int

// buffersFor буферы берутся из услуги позиции отдельным чтением справочника
// Позиция без услуги или ошибка чтения - значение по умолчанию, бронирование не падает
func (s *Service) buffersFor(ctx context.Context, cache bufferCache, serviceID string) (before, after int) {
	def := s.opts.DefaultBufferMinutes
	if serviceID == "" {
		return def, def
	}
	if b, ok := cache[serviceID]; ok {
		return b[0], b[1]
	}

	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		s.logger.Warn("buffersFor: service id=%s lookup failed, using default buffer %d: %v",
			serviceID, def, err)
		return def, def
	}

	cache[serviceID] = [2]int{svc.BufferTimeBefore, svc.BufferTimeAfter}
	return svc.BufferTimeBefore, svc.BufferTimeAfter
}

// checkConflicts этап 4: первая позиция без свободной вместимости отменяет всё бронирование
// Уже допущенные позиции запроса занимают вместимость для следующих
func (s *Service) checkConflicts(ctx context.Context, items []domain.ReservationItem, excludeID string) error {
	buffers := bufferCache{}
	for i, item := range items {
		before, after := s.buffersFor(ctx, buffers, item.ServiceID)

		result, err := s.availability.Check(ctx, domain.AvailabilityRequest{
			ResourceID:           item.ResourceID,
			StartTime:            item.StartTime,
			EndTime:              item.EndTime,
			GuestCount:           item.GuestCount,
			BufferBefore:         before,
			BufferAfter:          after,
			BlockingStatuses:     s.blockingStatuses,
			ExcludeReservationID: excludeID,
			Pending:              items[:i],
		})
		if err != nil {
			switch {
			case errors.Is(err, availability.ErrResourceNotFound):
				return fmt.Errorf("%w: %s", ErrResourceNotFound, item.ResourceID)
			case errors.Is(err, availability.ErrInvalidWindow):
				return fmt.Errorf("%w: item %d: %v", ErrInvalidInput, i, err)
			default:
				return fmt.Errorf("%w: checkConflicts - availability: %v", ErrInternal, err)
			}
		}

		if !result.Available {
			return domain.NewValidationError(domain.ErrCapacityExceeded, domain.PathStartTime, "%s", result.Reason)
		}
	}
	return nil
}

// checkCreateStatus этап 5 при создании: политика начального статуса
func (s *Service) checkCreateStatus(status string, privileged bool) error {
	allowed := s.opts.Machine.AllowedOnCreate(privileged)
	for _, a := range allowed {
		if a == status {
			return nil
		}
	}
	return domain.NewValidationError(domain.ErrInvalidCreateStatus, domain.PathStatus,
		"new reservations must have status %s", quoteJoin(allowed))
}

// checkTransition этап 5 при обновлении: переход по графу статусов
func (s *Service) checkTransition(from, to string) error {
	if from == to {
		return nil
	}
	if !s.opts.Machine.HasStatus(to) {
		return domain.NewValidationError(domain.ErrUnknownStatus, domain.PathStatus, "unknown status %q", to)
	}

	result := s.opts.Machine.ValidateTransition(from, to)
	if !result.Valid {
		return domain.NewValidationError(domain.ErrInvalidTransition, domain.PathStatus, "%s", result.Reason)
	}
	return nil
}

// checkCancellationNotice этап 6: отмена возможна не позже чем за notice часов до начала
func (s *Service) checkCancellationNotice(from, to string, res *domain.Reservation) error {
	cancelled := s.opts.CancelledStatus
	if to != cancelled || from == cancelled || res.StartTime.IsZero() {
		return nil
	}

	hours := domain.HoursUntil(res.StartTime, s.timeProvider.Now())
	if hours < s.opts.CancellationNoticeHours {
		return domain.NewValidationError(domain.ErrCancellationNoticeViolation, domain.PathStatus,
			"cancellation requires at least %s hours notice, %d hours left",
			strconv.FormatFloat(s.opts.CancellationNoticeHours, 'f', -1, 64), int(math.Round(hours)))
	}
	return nil
}

// buildReservation собирает запись из запроса и нормализованных позиций
// Составное бронирование занимает интервал от самого раннего начала до самого позднего конца
func (s *Service) buildReservation(raw domain.RawReservation, items []domain.ReservationItem) *domain.Reservation {
	res := &domain.Reservation{
		ResourceID: string(raw.Resource),
		ServiceID:  string(raw.Service),
		CustomerID: string(raw.Customer),
		Status:     raw.Status,
		GuestCount: domain.DefaultGuestCount,
	}
	if raw.GuestCount != nil {
		res.GuestCount = *raw.GuestCount
	}

	if len(raw.Items) > 0 {
		res.Items = items
		if res.ResourceID == "" {
			res.ResourceID = items[0].ResourceID
		}
	} else {
		res.GuestCount = items[0].GuestCount
	}

	res.StartTime, res.EndTime = items[0].StartTime, items[0].EndTime
	for _, it := range items[1:] {
		if it.StartTime.Before(res.StartTime) {
			res.StartTime = it.StartTime
		}
		if it.EndTime.After(res.EndTime) {
			res.EndTime = it.EndTime
		}
	}

	res.IdempotencyKey = optional(raw.IdempotencyKey)
	res.Notes = optional(raw.Notes)
	if raw.Status == s.opts.CancelledStatus {
		res.CancellationReason = optional(raw.CancellationReason)
	}
	return res
}

func lockIDs(groups ...[]domain.ReservationItem) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, items := range groups {
		for _, it := range items {
			if _, ok := seen[it.ResourceID]; ok {
				continue
			}
			seen[it.ResourceID] = struct{}{}
			ids = append(ids, it.ResourceID)
		}
	}
	sort.Strings(ids)
	return ids
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func quoteJoin(list []string) string {
	quoted := make([]string, 0, len(list))
	for _, s := range list {
		quoted = append(quoted, strconv.Quote(s))
	}
	return strings.Join(quoted, " or ")
}
