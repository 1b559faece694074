package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Seed справочники для режима без БД
type Seed struct {
	Resources []SeedResource `json:"resources"`
	Services  []SeedService  `json:"services"`
	Schedules []SeedSchedule `json:"schedules"`
}

type SeedResource struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	CapacityMode string `json:"capacityMode"`
	Timezone     string `json:"timezone"`
	Active       *bool  `json:"active"`
}

type SeedService struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Duration         int    `json:"duration"`
	DurationType     string `json:"durationType"`
	BufferTimeBefore int    `json:"bufferTimeBefore"`
	BufferTimeAfter  int    `json:"bufferTimeAfter"`
	Active           *bool  `json:"active"`
}

type SeedSchedule struct {
	ID             string                     `json:"id"`
	Resource       domain.Ref                 `json:"resource"`
	Name           string                     `json:"name"`
	ScheduleType   string                     `json:"scheduleType"`
	RecurringSlots []domain.RecurringSlot     `json:"recurringSlots"`
	ManualSlots    []domain.ManualSlot        `json:"manualSlots"`
	Exceptions     []domain.ScheduleException `json:"exceptions"`
	Active         *bool                      `json:"active"`
}

// LoadSeedFile читает JSON-файл со справочниками и загружает его в хранилище
func (s *Store) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("memory: read seed file %s: %w", path, err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("memory: decode seed file %s: %w", path, err)
	}

	s.LoadSeed(seed)
	return nil
}

// LoadSeed загружает справочники; active по умолчанию true
func (s *Store) LoadSeed(seed Seed) {
	for _, r := range seed.Resources {
		s.PutResource(domain.Resource{
			ID:           r.ID,
			Name:         r.Name,
			Quantity:     r.Quantity,
			CapacityMode: domain.CapacityMode(r.CapacityMode),
			Timezone:     r.Timezone,
			Active:       isActive(r.Active),
		})
	}
	for _, svc := range seed.Services {
		s.PutService(domain.Service{
			ID:               svc.ID,
			Name:             svc.Name,
			Duration:         svc.Duration,
			DurationType:     domain.DurationType(svc.DurationType),
			BufferTimeBefore: svc.BufferTimeBefore,
			BufferTimeAfter:  svc.BufferTimeAfter,
			Active:           isActive(svc.Active),
		})
	}
	for _, sch := range seed.Schedules {
		s.PutSchedule(domain.Schedule{
			ID:             sch.ID,
			ResourceID:     sch.Resource.String(),
			Name:           sch.Name,
			ScheduleType:   domain.ScheduleType(sch.ScheduleType),
			RecurringSlots: sch.RecurringSlots,
			ManualSlots:    sch.ManualSlots,
			Exceptions:     sch.Exceptions,
			Active:         isActive(sch.Active),
		})
	}
}

func isActive(v *bool) bool {
	return v == nil || *v
}
