package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

// SQLSTATE 23505 unique_violation
const codeUniqueViolation = "23505"

var reservationColumns = []string{
	"id",
	"resource_id",
	"service_id",
	"customer_id",
	"start_time",
	"end_time",
	"status",
	"guest_count",
	"cancellation_reason",
	"idempotency_key",
	"notes",
	"composite",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование вместе с нормализованными позициями
// Должен вызываться внутри транзакции: запись бронирования и позиций атомарна
func (r *Repository) Create(ctx context.Context, res *domain.Reservation, items []domain.ReservationItem) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"id",
			"resource_id",
			"service_id",
			"customer_id",
			"start_time",
			"end_time",
			"status",
			"guest_count",
			"cancellation_reason",
			"idempotency_key",
			"notes",
			"composite",
		).
		Values(
			res.ID,
			res.ResourceID,
			nullString(res.ServiceID),
			nullString(res.CustomerID),
			res.StartTime,
			res.EndTime,
			res.Status,
			res.GuestCount,
			res.CancellationReason,
			res.IdempotencyKey,
			res.Notes,
			res.IsComposite(),
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return r.insertItems(ctx, executor, res.ID, items)
}

// Update перезаписывает бронирование и заменяет его позиции
func (r *Repository) Update(ctx context.Context, res *domain.Reservation, items []domain.ReservationItem) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("resource_id", res.ResourceID).
		Set("service_id", nullString(res.ServiceID)).
		Set("customer_id", nullString(res.CustomerID)).
		Set("start_time", res.StartTime).
		Set("end_time", res.EndTime).
		Set("status", res.Status).
		Set("guest_count", res.GuestCount).
		Set("cancellation_reason", res.CancellationReason).
		Set("notes", res.Notes).
		Set("composite", res.IsComposite()).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrReservationNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("reservation_items").
		Where(squirrel.Eq{"reservation_id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build delete items query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: Update - delete items: %v", ErrExecQuery, err)
	}

	return r.insertItems(ctx, executor, res.ID, items)
}

func (r *Repository) insertItems(ctx context.Context, executor DBExecutor, reservationID string, items []domain.ReservationItem) error {
	if len(items) == 0 {
		return nil
	}

	builder := psqlbuilder.Insert("reservation_items").
		Columns("reservation_id", "position", "resource_id", "service_id", "start_time", "end_time", "guest_count")
	for i, item := range items {
		builder = builder.Values(
			reservationID,
			i,
			item.ResourceID,
			nullString(item.ServiceID),
			item.StartTime,
			item.EndTime,
			item.GuestCount,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertItems - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertItems - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrReservationNotFound
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, composite, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	if composite {
		items, err := r.getItems(ctx, executor, res.ID)
		if err != nil {
			return nil, err
		}
		res.Items = items
	}

	return res, nil
}

func (r *Repository) getItems(ctx context.Context, executor DBExecutor, reservationID string) ([]domain.ReservationItem, error) {
	query, args, err := psqlbuilder.Select("resource_id", "service_id", "start_time", "end_time", "guest_count").
		From("reservation_items").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	items := make([]domain.ReservationItem, 0)
	for rows.Next() {
		var item domain.ReservationItem
		var serviceID sql.NullString
		if err := rows.Scan(&item.ResourceID, &serviceID, &item.StartTime, &item.EndTime, &item.GuestCount); err != nil {
			return nil, fmt.Errorf("%w: getItems - scan row: %v", ErrScanRow, err)
		}
		item.ServiceID = serviceID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getItems - rows error: %v", ErrScanRow, err)
	}

	return items, nil
}

// ExistsByIdempotencyKey проверяет, есть ли бронирование с таким ключом
func (r *Repository) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From("reservations").
		Where(squirrel.Eq{"idempotency_key": key}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsByIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: ExistsByIdempotencyKey - scan: %v", ErrScanRow, err)
	}
	return exists, nil
}

// List получает бронирования по фильтру, отсортированные по времени начала
// Период фильтра сравнивается с интервалом бронирования (пересечение)
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		OrderBy("start_time ASC")

	if filter.ResourceID != nil {
		// Составные бронирования ищем по позициям
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Eq{"resource_id": *filter.ResourceID},
			squirrel.Expr("id IN (SELECT reservation_id FROM reservation_items WHERE resource_id = ?)", *filter.ResourceID),
		})
	}
	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if len(filter.Statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": filter.Statuses})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	composites := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, composite, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, res)
		if composite {
			composites = append(composites, res)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	for _, res := range composites {
		items, err := r.getItems(ctx, executor, res.ID)
		if err != nil {
			return nil, err
		}
		res.Items = items
	}

	return reservations, nil
}

// CountOverlapping считает блокирующие позиции, пересекающие окно фильтра
func (r *Repository) CountOverlapping(ctx context.Context, filter domain.OverlapFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overlapQuery(psqlbuilder.Select("COUNT(*)"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - scan: %v", ErrScanRow, err)
	}
	return count, nil
}

// ListOverlappingGuestCounts возвращает guest_count каждой блокирующей позиции в окне фильтра
func (r *Repository) ListOverlappingGuestCounts(ctx context.Context, filter domain.OverlapFilter) ([]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overlapQuery(psqlbuilder.Select("ri.guest_count"), filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlappingGuestCounts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverlappingGuestCounts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make([]int, 0)
	for rows.Next() {
		var guests sql.NullInt64
		if err := rows.Scan(&guests); err != nil {
			return nil, fmt.Errorf("%w: ListOverlappingGuestCounts - scan row: %v", ErrScanRow, err)
		}
		counts = append(counts, int(guests.Int64))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOverlappingGuestCounts - rows error: %v", ErrScanRow, err)
	}
	return counts, nil
}

// LockResources берёт транзакционные advisory-блокировки на ресурсы
// Блокировки берутся в отсортированном порядке, чтобы исключить взаимные блокировки
// Снимаются автоматически при завершении транзакции
func (r *Repository) LockResources(ctx context.Context, resourceIDs []string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockResources - called outside of transaction", ErrLock)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := uniqueSorted(resourceIDs)
	for _, id := range ids {
		if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", id); err != nil {
			return fmt.Errorf("%w: LockResources - resource %s: %v", ErrLock, id, err)
		}
	}
	return nil
}

func overlapQuery(builder squirrel.SelectBuilder, filter domain.OverlapFilter) squirrel.SelectBuilder {
	builder = builder.
		From("reservation_items ri").
		Join("reservations r ON r.id = ri.reservation_id").
		Where(squirrel.Eq{"ri.resource_id": filter.ResourceID}).
		Where(squirrel.Eq{"r.status": filter.Statuses}).
		Where(squirrel.Lt{"ri.start_time": filter.EffectiveEnd}).
		Where(squirrel.Gt{"ri.end_time": filter.EffectiveStart})

	if filter.ExcludeReservationID != "" {
		builder = builder.Where(squirrel.NotEq{"r.id": filter.ExcludeReservationID})
	}
	return builder
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, bool, error) {
	var (
		res                   domain.Reservation
		serviceID, customerID sql.NullString
		composite             bool
		createdAt, updatedAt  sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.ResourceID,
		&serviceID,
		&customerID,
		&res.StartTime,
		&res.EndTime,
		&res.Status,
		&res.GuestCount,
		&res.CancellationReason,
		&res.IdempotencyKey,
		&res.Notes,
		&composite,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, false, err
	}

	res.ServiceID = serviceID.String
	res.CustomerID = customerID.String
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time
	return &res, composite, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
