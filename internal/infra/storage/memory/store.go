package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage"
)

type record struct {
	reservation domain.Reservation
	items       []domain.ReservationItem
}

// Store хранилище в памяти процесса
// Реализует те же контракты, что и postgres-репозитории, плюс менеджер транзакций.
// Пишущие транзакции выполняются строго по одной, поэтому проверка вместимости
// и запись бронирования не пересекаются с другими запросами.
type Store struct {
	mu sync.RWMutex
	tx sync.Mutex

	resources    map[string]domain.Resource
	services     map[string]domain.Service
	schedules    map[string][]domain.Schedule
	reservations map[string]*record
	keys         map[string]string // idempotency key -> reservation id

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		resources:    make(map[string]domain.Resource),
		services:     make(map[string]domain.Service),
		schedules:    make(map[string][]domain.Schedule),
		reservations: make(map[string]*record),
		keys:         make(map[string]string),
		now:          time.Now,
	}
}

// PutResource добавляет или заменяет ресурс
func (s *Store) PutResource(r domain.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
}

// PutService добавляет или заменяет услугу
func (s *Store) PutService(svc domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

// PutSchedule добавляет расписание ресурсу
func (s *Store) PutSchedule(sch domain.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	s.schedules[sch.ResourceID] = append(s.schedules[sch.ResourceID], sch)
}

func (s *Store) GetResource(_ context.Context, id string) (*domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	if !ok {
		return nil, storage.ErrResourceNotFound
	}
	return &r, nil
}

func (s *Store) GetService(_ context.Context, id string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, storage.ErrServiceNotFound
	}
	return &svc, nil
}

func (s *Store) ListActiveSchedules(_ context.Context, resourceID string) ([]*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Schedule, 0)
	for i := range s.schedules[resourceID] {
		sch := s.schedules[resourceID][i]
		if sch.Active {
			out = append(out, &sch)
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, res *domain.Reservation, items []domain.ReservationItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.IdempotencyKey != nil && *res.IdempotencyKey != "" {
		if _, ok := s.keys[*res.IdempotencyKey]; ok {
			return storage.ErrDuplicateIdempotencyKey
		}
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	now := s.now()
	res.CreatedAt = now
	res.UpdatedAt = now

	s.reservations[res.ID] = &record{reservation: copyReservation(res), items: copyItems(items)}
	if res.IdempotencyKey != nil && *res.IdempotencyKey != "" {
		s.keys[*res.IdempotencyKey] = res.ID
	}
	return nil
}

func (s *Store) Update(_ context.Context, res *domain.Reservation, items []domain.ReservationItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.reservations[res.ID]
	if !ok {
		return storage.ErrReservationNotFound
	}

	res.CreatedAt = rec.reservation.CreatedAt
	res.UpdatedAt = s.now()
	// idempotency_key не меняется после создания
	res.IdempotencyKey = rec.reservation.IdempotencyKey

	rec.reservation = copyReservation(res)
	rec.items = copyItems(items)
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.reservations[id]
	if !ok {
		return nil, storage.ErrReservationNotFound
	}
	res := copyReservation(&rec.reservation)
	return &res, nil
}

func (s *Store) ExistsByIdempotencyKey(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.keys[key]
	return ok, nil
}

func (s *Store) List(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Reservation, 0)
	for _, rec := range s.reservations {
		if !matchesFilter(rec, filter) {
			continue
		}
		res := copyReservation(&rec.reservation)
		out = append(out, &res)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) CountOverlapping(_ context.Context, filter domain.OverlapFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	s.eachOverlapping(filter, func(domain.ReservationItem) { count++ })
	return count, nil
}

func (s *Store) ListOverlappingGuestCounts(_ context.Context, filter domain.OverlapFilter) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make([]int, 0)
	s.eachOverlapping(filter, func(item domain.ReservationItem) { counts = append(counts, item.GuestCount) })
	return counts, nil
}

func (s *Store) eachOverlapping(filter domain.OverlapFilter, fn func(domain.ReservationItem)) {
	for id, rec := range s.reservations {
		for _, item := range rec.items {
			if filter.Matches(id, rec.reservation.Status, item) {
				fn(item)
			}
		}
	}
}

// LockResources ничего не делает: пишущие транзакции и так сериализованы
func (s *Store) LockResources(_ context.Context, _ []string) error {
	return nil
}

func matchesFilter(rec *record, filter domain.ReservationFilter) bool {
	res := &rec.reservation
	if filter.ResourceID != nil && !touchesResource(rec, *filter.ResourceID) {
		return false
	}
	if filter.CustomerID != nil && res.CustomerID != *filter.CustomerID {
		return false
	}
	if filter.From != nil && !res.EndTime.After(*filter.From) {
		return false
	}
	if filter.To != nil && !res.StartTime.Before(*filter.To) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, st := range filter.Statuses {
			if st == res.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func touchesResource(rec *record, resourceID string) bool {
	if rec.reservation.ResourceID == resourceID {
		return true
	}
	for _, item := range rec.items {
		if item.ResourceID == resourceID {
			return true
		}
	}
	return false
}

func copyReservation(res *domain.Reservation) domain.Reservation {
	out := *res
	out.Items = copyItems(res.Items)
	out.CancellationReason = copyString(res.CancellationReason)
	out.IdempotencyKey = copyString(res.IdempotencyKey)
	out.Notes = copyString(res.Notes)
	return out
}

func copyItems(items []domain.ReservationItem) []domain.ReservationItem {
	if items == nil {
		return nil
	}
	return append([]domain.ReservationItem(nil), items...)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
