package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

// Repository репозиторий справочников: ресурсы, услуги и расписания
// Справочники ведутся внешней системой, сервис их только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetResource получает ресурс по ID
func (r *Repository) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"quantity",
		"capacity_mode",
		"timezone",
		"active",
		"created_at",
		"updated_at",
	).
		From("resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - build select query: %v", ErrBuildQuery, err)
	}

	var resource domain.Resource
	var capacityMode string
	var timezone sql.NullString
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&resource.ID,
		&resource.Name,
		&resource.Quantity,
		&capacityMode,
		&timezone,
		&resource.Active,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetResource - scan resource: %v", ErrScanRow, err)
	}

	resource.CapacityMode = domain.CapacityMode(capacityMode)
	resource.Timezone = timezone.String
	resource.CreatedAt = createdAt.Time
	resource.UpdatedAt = updatedAt.Time

	return &resource, nil
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"duration",
		"duration_type",
		"buffer_time_before",
		"buffer_time_after",
		"active",
		"created_at",
		"updated_at",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	var durationType string
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.Name,
		&service.Duration,
		&durationType,
		&service.BufferTimeBefore,
		&service.BufferTimeAfter,
		&service.Active,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	service.DurationType = domain.DurationType(durationType)
	service.CreatedAt = createdAt.Time
	service.UpdatedAt = updatedAt.Time

	return &service, nil
}

// ListActiveSchedules получает все активные расписания ресурса
func (r *Repository) ListActiveSchedules(ctx context.Context, resourceID string) ([]*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"resource_id",
		"name",
		"schedule_type",
		"recurring_slots",
		"manual_slots",
		"exceptions",
		"active",
		"created_at",
		"updated_at",
	).
		From("schedules").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveSchedules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveSchedules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)

	for rows.Next() {
		var schedule domain.Schedule
		var scheduleType string
		var name sql.NullString
		var recurring, manual, exceptions []byte
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&schedule.ID,
			&schedule.ResourceID,
			&name,
			&scheduleType,
			&recurring,
			&manual,
			&exceptions,
			&schedule.Active,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveSchedules - scan row: %v", ErrScanRow, err)
		}

		if err := decodeJSONB(recurring, &schedule.RecurringSlots); err != nil {
			return nil, fmt.Errorf("%w: schedule %s recurring_slots: %v", ErrDecodeSlots, schedule.ID, err)
		}
		if err := decodeJSONB(manual, &schedule.ManualSlots); err != nil {
			return nil, fmt.Errorf("%w: schedule %s manual_slots: %v", ErrDecodeSlots, schedule.ID, err)
		}
		if err := decodeJSONB(exceptions, &schedule.Exceptions); err != nil {
			return nil, fmt.Errorf("%w: schedule %s exceptions: %v", ErrDecodeSlots, schedule.ID, err)
		}

		schedule.Name = name.String
		schedule.ScheduleType = domain.ScheduleType(scheduleType)
		schedule.CreatedAt = createdAt.Time
		schedule.UpdatedAt = updatedAt.Time

		schedules = append(schedules, &schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveSchedules - rows error: %v", ErrScanRow, err)
	}

	return schedules, nil
}

func decodeJSONB(data []byte, dest interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
